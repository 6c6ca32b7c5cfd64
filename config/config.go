package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Business bounds applied by the listing validator.
	MinPrice int
	MaxPrice int
	MinArea  float64
	MaxArea  float64
	MinRooms int
	MaxRooms int

	// Listings whose title or description contains any of these are rejected.
	ExcludeKeywords []string

	// Deduplication tuning.
	TitleThreshold   float64
	PriceDiffPercent float64
	AreaDiffPercent  float64
	DedupBatchSize   int

	// Scraping.
	EnabledSources []string
	PagesToScrape  int
	MaxConcurrency int
	RequestDelayMs int
	MaxRetries     int
	Proxies        []string
	UserAgents     []string

	OutputDir  string
	ServerPort string
	LogLevel   string
	ChromeBin  string
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

var defaultExcludeKeywords = []string{
	"реклама", "акция", "скидка", "бесплатно", "тестовое",
	"test", "advertisement", "spam",
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "realty"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "realty123"),
		PostgresDB:       getEnv("POSTGRES_DB", "realty_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MinPrice: getEnvInt("MIN_PRICE", 5000),
		MaxPrice: getEnvInt("MAX_PRICE", 100000000),
		MinArea:  getEnvFloat("MIN_AREA", 10.0),
		MaxArea:  getEnvFloat("MAX_AREA", 500.0),
		MinRooms: getEnvInt("MIN_ROOMS", 1),
		MaxRooms: getEnvInt("MAX_ROOMS", 10),

		ExcludeKeywords: getEnvList("EXCLUDE_KEYWORDS", defaultExcludeKeywords),

		TitleThreshold:   getEnvFloat("DEDUP_TITLE_THRESHOLD", 85.0),
		PriceDiffPercent: getEnvFloat("DEDUP_PRICE_DIFF_PERCENT", 15.0),
		AreaDiffPercent:  getEnvFloat("DEDUP_AREA_DIFF_PERCENT", 10.0),
		DedupBatchSize:   getEnvInt("DEDUP_BATCH_SIZE", 100),

		EnabledSources: getEnvList("ENABLED_SOURCES", []string{"avito", "farpost"}),
		PagesToScrape:  getEnvInt("PAGES_TO_SCRAPE", 3),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 5),
		RequestDelayMs: getEnvInt("REQUEST_DELAY_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		Proxies:        getEnvList("PROXIES", nil),
		UserAgents:     getEnvList("USER_AGENTS", defaultUserAgents),

		OutputDir:  getEnv("OUTPUT_DIR", "./output"),
		ServerPort: getEnv("SERVER_PORT", "8000"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		ChromeBin:  getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

// getEnvList parses a comma-separated env var, dropping empty items.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
