package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Explicit district markers, tried in priority order; first match wins.
var districtPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)р-н\s+([А-Яа-яЁё][А-Яа-яЁё\s-]*)`),
	regexp.MustCompile(`(?i)район\s+([А-Яа-яЁё][А-Яа-яЁё\s-]*)`),
	regexp.MustCompile(`(?i)р\.\s*н\.\s*([А-Яа-яЁё][А-Яа-яЁё\s-]*)`),
	regexp.MustCompile(`(?i)район\s*:\s*([А-Яа-яЁё][А-Яа-яЁё\s-]*)`),
}

// trailingSegmentPattern is the fallback: a comma-separated alphabetic final
// segment is treated as an implicit district. This heuristic can misfire on
// addresses that simply end in a proper-noun street name; the behavior is
// kept as-is and documented in the tests.
var trailingSegmentPattern = regexp.MustCompile(`,\s*(?:р-н\s+)?([А-Яа-яЁё][А-Яа-яЁё\s-]+?)(?:\s*$|\s*,\s*[А-Яа-яЁё])`)

var (
	doubleCommas  = regexp.MustCompile(`\s*,\s*,`)
	trailingComma = regexp.MustCompile(`,\s*$`)
	commaRuns     = regexp.MustCompile(`,\s*,+`)
)

// ExtractDistrict splits a free-form address into the cleaned address and
// the district name, if one can be found. It is deterministic and has no
// error path: a malformed address comes back unchanged with an empty district.
func ExtractDistrict(address string) (string, string) {
	if address == "" {
		return "", ""
	}

	for _, pattern := range districtPatterns {
		match := pattern.FindStringSubmatch(address)
		if match == nil {
			continue
		}
		district := strings.TrimSpace(match[1])

		cleaned := strings.TrimSpace(pattern.ReplaceAllString(address, ""))
		cleaned = doubleCommas.ReplaceAllString(cleaned, ",")
		cleaned = trailingComma.ReplaceAllString(cleaned, "")
		cleaned = strings.Join(strings.Fields(cleaned), " ")
		return cleaned, district
	}

	if match := trailingSegmentPattern.FindStringSubmatch(address); match != nil {
		candidate := strings.TrimSpace(match[1])
		if utf8.RuneCountInString(candidate) >= 3 {
			strip := regexp.MustCompile(`,\s*` + regexp.QuoteMeta(candidate))
			cleaned := strings.TrimSpace(strip.ReplaceAllString(address, ""))
			return cleaned, candidate
		}
	}

	return address, ""
}

// NormalizeAddress collapses whitespace and stray punctuation so that
// addresses from different sources line up for comparison.
func NormalizeAddress(address string) string {
	if address == "" {
		return ""
	}
	address = strings.Join(strings.Fields(address), " ")
	address = commaRuns.ReplaceAllString(address, ",")
	return strings.Trim(address, ", ")
}
