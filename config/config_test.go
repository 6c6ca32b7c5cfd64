package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.MinPrice != 5000 || cfg.MaxPrice != 100000000 {
		t.Errorf("Unexpected price bounds: %d–%d", cfg.MinPrice, cfg.MaxPrice)
	}
	if cfg.MinArea != 10 || cfg.MaxArea != 500 {
		t.Errorf("Unexpected area bounds: %.0f–%.0f", cfg.MinArea, cfg.MaxArea)
	}
	if cfg.TitleThreshold != 85 {
		t.Errorf("Expected title threshold 85, got %.0f", cfg.TitleThreshold)
	}
	if len(cfg.UserAgents) == 0 {
		t.Error("Expected default user agents")
	}
	if len(cfg.ExcludeKeywords) == 0 {
		t.Error("Expected default exclude keywords")
	}
	if cfg.ServerPort != "8000" {
		t.Errorf("Expected default server port 8000, got %q", cfg.ServerPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MIN_PRICE", "10000")
	t.Setenv("DEDUP_TITLE_THRESHOLD", "90.5")
	t.Setenv("ENABLED_SOURCES", "avito, cian ,farpost")
	t.Setenv("EXCLUDE_KEYWORDS", "спам,обман")

	cfg := Load()

	if cfg.MinPrice != 10000 {
		t.Errorf("Expected MIN_PRICE override, got %d", cfg.MinPrice)
	}
	if cfg.TitleThreshold != 90.5 {
		t.Errorf("Expected threshold override, got %.1f", cfg.TitleThreshold)
	}
	if len(cfg.EnabledSources) != 3 || cfg.EnabledSources[1] != "cian" {
		t.Errorf("Expected trimmed source list, got %v", cfg.EnabledSources)
	}
	if len(cfg.ExcludeKeywords) != 2 || cfg.ExcludeKeywords[0] != "спам" {
		t.Errorf("Expected keyword override, got %v", cfg.ExcludeKeywords)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MIN_PRICE", "not-a-number")
	t.Setenv("MIN_AREA", "also-bad")

	cfg := Load()

	if cfg.MinPrice != 5000 {
		t.Errorf("Expected fallback for malformed int, got %d", cfg.MinPrice)
	}
	if cfg.MinArea != 10 {
		t.Errorf("Expected fallback for malformed float, got %.0f", cfg.MinArea)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost:     "db",
		PostgresPort:     "5433",
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresDB:       "realty",
		PostgresSSLMode:  "disable",
	}

	want := "host=db port=5433 user=u password=p dbname=realty sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("Expected DSN %q, got %q", want, got)
	}
}
