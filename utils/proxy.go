package utils

import (
	"math/rand"
	"sync"
)

const maxBadScore = 5

// ProxyManager rotates proxies, preferring ones that have not failed
// recently. Each scraper owns its own instance; the state is never shared
// between sources.
type ProxyManager struct {
	mu        sync.Mutex
	proxies   []string
	rotation  bool
	badScores map[string]int
}

// NewProxyManager builds a manager over the given proxy list, dropping
// empty entries and duplicates while keeping order.
func NewProxyManager(proxies []string, rotation bool) *ProxyManager {
	seen := make(map[string]struct{}, len(proxies))
	kept := make([]string, 0, len(proxies))
	for _, p := range proxies {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		kept = append(kept, p)
	}

	scores := make(map[string]int, len(kept))
	for _, p := range kept {
		scores[p] = 0
	}
	return &ProxyManager{proxies: kept, rotation: rotation, badScores: scores}
}

// Get returns the next proxy to use, or "" when none are configured.
// Rotation is weighted: a proxy with a higher bad-score is picked less often.
func (m *ProxyManager) Get() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.proxies) == 0 {
		return ""
	}
	if !m.rotation {
		return m.proxies[0]
	}

	var weighted []string
	for _, p := range m.proxies {
		weight := maxBadScore - m.badScores[p]
		if weight < 1 {
			weight = 1
		}
		for i := 0; i < weight; i++ {
			weighted = append(weighted, p)
		}
	}
	return weighted[rand.Intn(len(weighted))]
}

// MarkBad records a failure against the proxy.
func (m *ProxyManager) MarkBad(proxy string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.badScores[proxy]; ok && m.badScores[proxy] < maxBadScore {
		m.badScores[proxy]++
	}
}

// MarkGood rewards the proxy after a successful request.
func (m *ProxyManager) MarkGood(proxy string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if score, ok := m.badScores[proxy]; ok && score > 0 {
		m.badScores[proxy]--
	}
}
