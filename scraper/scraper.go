package scraper

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/chromedp/chromedp"

	"realty-aggregator/config"
	"realty-aggregator/models"
	"realty-aggregator/utils"
)

// Source is a site adapter: it produces normalized listings and nothing
// else. One implementation per website.
type Source interface {
	Name() string
	Scrape(ctx context.Context, maxPages int) ([]*models.Listing, error)
}

// Card is the raw data extracted from one listing card on a search page,
// before any parsing or validation.
type Card struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	Price      string `json:"price"`
	Address    string `json:"address"`
	URL        string `json:"url"`
	Image      string `json:"image"`
}

// Browser owns the chromedp allocator configuration shared by one scraper
// instance. Proxy and user-agent rotation state belongs to the instance,
// never to the process: concurrent scrapers do not share it.
type Browser struct {
	cfg        *config.Config
	logger     *utils.Logger
	Proxies    *utils.ProxyManager
	UserAgents *utils.UserAgentManager
}

// NewBrowser builds a Browser with its own rotation managers.
func NewBrowser(cfg *config.Config, logger *utils.Logger) *Browser {
	return &Browser{
		cfg:        cfg,
		logger:     logger,
		Proxies:    utils.NewProxyManager(cfg.Proxies, true),
		UserAgents: utils.NewUserAgentManager(cfg.UserAgents, true),
	}
}

// NewContext creates a fresh chromedp context with a rotated user agent and
// proxy. The returned cancel func tears down both the tab and the allocator.
func (b *Browser) NewContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(b.UserAgents.Get()),
	)
	if proxy := b.Proxies.Get(); proxy != "" {
		opts = append(opts, chromedp.ProxyServer("http://"+proxy))
	}
	if bin := findChromeBinary(b.cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	return tabCtx, func() {
		cancelTab()
		cancelAlloc()
	}
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

var (
	digitsPattern = regexp.MustCompile(`\d+`)
	areaPattern   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:м²|кв\.?\s*м)`)
	roomsPattern  = regexp.MustCompile(`(\d+)-(?:к|комн)`)
	floorPattern  = regexp.MustCompile(`(\d+)/(\d+)\s*эт`)
)

// ParsePrice extracts an integer price from raw text like "30 000 ₽/мес.".
func ParsePrice(raw string) int {
	joined := strings.Join(digitsPattern.FindAllString(raw, -1), "")
	if joined == "" {
		return 0
	}
	price, err := strconv.Atoi(joined)
	if err != nil {
		return 0
	}
	return price
}

// ParseArea extracts the living area in m² from a title like
// "2-к квартира, 45 м²".
func ParseArea(raw string) float64 {
	match := areaPattern.FindStringSubmatch(raw)
	if match == nil {
		return 0
	}
	area, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	return area
}

// ParseFloor extracts "floor/total floors" from a title like
// "2-к квартира, 45 м², 5/9 эт.". Both values are zero when absent.
func ParseFloor(raw string) (int, int) {
	match := floorPattern.FindStringSubmatch(raw)
	if match == nil {
		return 0, 0
	}
	floor, err1 := strconv.Atoi(match[1])
	total, err2 := strconv.Atoi(match[2])
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return floor, total
}

// ParseRooms extracts the room count and property type from a title.
// "Студия" counts as one room of type studio.
func ParseRooms(raw string) (int, string) {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "студия") || strings.Contains(lower, "studio") {
		return 1, models.PropertyStudio
	}
	match := roomsPattern.FindStringSubmatch(lower)
	if match == nil {
		return 0, models.PropertyApartment
	}
	rooms, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, models.PropertyApartment
	}
	return rooms, models.PropertyApartment
}
