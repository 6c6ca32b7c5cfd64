package dedup

import (
	"sort"
	"strings"
	"unicode"
)

// tokenSortRatio scores two strings 0-100, insensitive to token order.
// Both inputs are lowercased and stripped of punctuation, their tokens
// sorted and rejoined, and the results compared with a normalized Indel
// similarity (2*LCS / total length). Listing titles differ across sites
// mostly in abbreviation and punctuation ("2-к" vs "2-комн.", "м²" vs
// "кв.м"), and the Indel ratio stays high under those local edits where a
// greedy matching ratio collapses.
func tokenSortRatio(s1, s2 string) float64 {
	return indelSimilarity(sortedTokens(s1), sortedTokens(s2))
}

// sortedTokens normalizes a string for comparison: lowercase, every
// non-alphanumeric rune becomes a separator, tokens sorted.
func sortedTokens(s string) []rune {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	tokens := strings.Fields(b.String())
	sort.Strings(tokens)
	return []rune(strings.Join(tokens, " "))
}

// indelSimilarity is the normalized insert/delete similarity of two rune
// sequences: 200*LCS(a,b) / (len(a)+len(b)), in 0-100.
func indelSimilarity(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		cur[0] = 0
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(b)]
	return 200 * float64(lcs) / float64(len(a)+len(b))
}
