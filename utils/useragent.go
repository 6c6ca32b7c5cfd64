package utils

import (
	"math/rand"
	"sync"
)

const fallbackUserAgent = "Mozilla/5.0"

// UserAgentManager hands out user-agent strings, optionally rotating
// through the configured list. Owned per scraper instance.
type UserAgentManager struct {
	mu         sync.Mutex
	userAgents []string
	rotation   bool
}

// NewUserAgentManager builds a manager over the given list, dropping empty entries.
func NewUserAgentManager(userAgents []string, rotation bool) *UserAgentManager {
	kept := make([]string, 0, len(userAgents))
	for _, ua := range userAgents {
		if ua != "" {
			kept = append(kept, ua)
		}
	}
	return &UserAgentManager{userAgents: kept, rotation: rotation}
}

// Get returns the user agent to use for the next request.
func (m *UserAgentManager) Get() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.userAgents) == 0 {
		return fallbackUserAgent
	}
	if !m.rotation {
		return m.userAgents[0]
	}
	return m.userAgents[rand.Intn(len(m.userAgents))]
}
