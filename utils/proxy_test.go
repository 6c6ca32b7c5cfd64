package utils

import "testing"

func TestProxyManagerEmptyList(t *testing.T) {
	m := NewProxyManager(nil, true)
	if proxy := m.Get(); proxy != "" {
		t.Errorf("Expected empty proxy, got %q", proxy)
	}
}

func TestProxyManagerDropsEmptyAndDuplicates(t *testing.T) {
	m := NewProxyManager([]string{"1.1.1.1:8080", "", "1.1.1.1:8080", "2.2.2.2:8080"}, false)
	if len(m.proxies) != 2 {
		t.Errorf("Expected 2 proxies after cleanup, got %d", len(m.proxies))
	}
	if proxy := m.Get(); proxy != "1.1.1.1:8080" {
		t.Errorf("Expected first proxy without rotation, got %q", proxy)
	}
}

func TestProxyManagerRotationStaysInList(t *testing.T) {
	proxies := []string{"1.1.1.1:8080", "2.2.2.2:8080", "3.3.3.3:8080"}
	m := NewProxyManager(proxies, true)

	valid := make(map[string]bool)
	for _, p := range proxies {
		valid[p] = true
	}
	for i := 0; i < 50; i++ {
		if proxy := m.Get(); !valid[proxy] {
			t.Fatalf("Get returned proxy outside the configured list: %q", proxy)
		}
	}
}

func TestProxyManagerBadScoreBounds(t *testing.T) {
	m := NewProxyManager([]string{"1.1.1.1:8080"}, true)

	for i := 0; i < 20; i++ {
		m.MarkBad("1.1.1.1:8080")
	}
	if score := m.badScores["1.1.1.1:8080"]; score != maxBadScore {
		t.Errorf("Expected bad score capped at %d, got %d", maxBadScore, score)
	}

	// A bad proxy is deprioritized but still usable when it is the only one.
	if proxy := m.Get(); proxy != "1.1.1.1:8080" {
		t.Errorf("Expected the only proxy back, got %q", proxy)
	}

	m.MarkGood("1.1.1.1:8080")
	if score := m.badScores["1.1.1.1:8080"]; score != maxBadScore-1 {
		t.Errorf("Expected MarkGood to lower the score, got %d", score)
	}

	// Unknown proxies are ignored.
	m.MarkBad("9.9.9.9:8080")
	m.MarkGood("9.9.9.9:8080")
	if _, ok := m.badScores["9.9.9.9:8080"]; ok {
		t.Error("Expected unknown proxy to stay untracked")
	}
}

func TestUserAgentManagerFallback(t *testing.T) {
	m := NewUserAgentManager(nil, true)
	if ua := m.Get(); ua != fallbackUserAgent {
		t.Errorf("Expected fallback user agent, got %q", ua)
	}
}

func TestUserAgentManagerNoRotation(t *testing.T) {
	agents := []string{"agent-a", "agent-b"}
	m := NewUserAgentManager(agents, false)

	for i := 0; i < 5; i++ {
		if ua := m.Get(); ua != "agent-a" {
			t.Errorf("Expected first agent without rotation, got %q", ua)
		}
	}
}

func TestUserAgentManagerRotationStaysInList(t *testing.T) {
	agents := []string{"agent-a", "agent-b", "agent-c"}
	m := NewUserAgentManager(agents, true)

	valid := map[string]bool{"agent-a": true, "agent-b": true, "agent-c": true}
	for i := 0; i < 50; i++ {
		if ua := m.Get(); !valid[ua] {
			t.Fatalf("Get returned agent outside the configured list: %q", ua)
		}
	}
}
