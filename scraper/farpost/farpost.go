package farpost

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/chromedp/chromedp"

	"realty-aggregator/config"
	"realty-aggregator/models"
	"realty-aggregator/scraper"
	"realty-aggregator/services"
	"realty-aggregator/utils"
)

const (
	sourceName = "farpost"
	baseURL    = "https://www.farpost.ru/vladivostok/realty/rent_flats/"
	pageLoad   = 20 * time.Second
)

// Bulletin ids sit at the end of the URL slug: .../kvartira-12345678.html.
var idFromURL = regexp.MustCompile(`-(\d+)\.html`)

const extractCards = `
(() => {
	const cards = [];
	document.querySelectorAll('tr[data-doc-id], div.bull-item').forEach(item => {
		const link = item.querySelector('a.bulletinLink, a.bull-item__self-link');
		if (!link) return;
		const price = item.querySelector('.price-block__price, .bull-item__price');
		const addr = item.querySelector('.bull-item__annotation-row, .address');
		const img = item.querySelector('img');
		cards.push({
			external_id: item.getAttribute('data-doc-id') || '',
			title: link.textContent.trim(),
			price: price ? price.textContent.trim() : '',
			address: addr ? addr.textContent.trim() : '',
			url: link.href,
			image: img ? (img.src || img.getAttribute('data-src') || '') : '',
		});
	});
	return JSON.stringify(cards);
})()
`

// Scraper collects rental listings from Farpost bulletin pages.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	browser *scraper.Browser
	retry   *utils.RetryConfig
	seen    *utils.URLSet
}

func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		browser: scraper.NewBrowser(cfg, logger),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries + 1,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		seen: utils.NewURLSet(),
	}
}

func (s *Scraper) Name() string { return sourceName }

func (s *Scraper) Scrape(ctx context.Context, maxPages int) ([]*models.Listing, error) {
	var listings []*models.Listing

	for page := 1; page <= maxPages; page++ {
		select {
		case <-ctx.Done():
			return listings, ctx.Err()
		default:
		}

		pageURL := baseURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s?page=%d", baseURL, page)
		}

		cards, err := s.scrapePage(ctx, pageURL)
		if err != nil {
			s.logger.Warn("farpost: page %d failed: %v", page, err)
			continue
		}
		if len(cards) == 0 {
			s.logger.Info("farpost: page %d empty, stopping", page)
			break
		}

		for _, card := range cards {
			if card.URL == "" || !s.seen.Add(card.URL) {
				continue
			}
			listings = append(listings, s.toListing(card))
		}

		s.logger.Info("farpost: page %d done, %d listings so far", page, len(listings))
		time.Sleep(time.Duration(s.cfg.RequestDelayMs) * time.Millisecond)
	}

	return listings, nil
}

func (s *Scraper) scrapePage(ctx context.Context, pageURL string) ([]scraper.Card, error) {
	var cards []scraper.Card

	err := s.retry.Do(ctx, "farpost page", func() error {
		tabCtx, cancel := s.browser.NewContext(ctx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, pageLoad)
		defer cancelTimeout()

		var raw string
		if err := chromedp.Run(tabCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(extractCards, &raw),
		); err != nil {
			return fmt.Errorf("load %s: %w", pageURL, err)
		}
		if err := json.Unmarshal([]byte(raw), &cards); err != nil {
			return fmt.Errorf("decode cards: %w", err)
		}
		return nil
	})
	return cards, err
}

func (s *Scraper) toListing(card scraper.Card) *models.Listing {
	externalID := card.ExternalID
	if externalID == "" {
		if match := idFromURL.FindStringSubmatch(card.URL); match != nil {
			externalID = match[1]
		}
	}

	rooms, propertyType := scraper.ParseRooms(card.Title)
	floor, totalFloors := scraper.ParseFloor(card.Title)
	address, district := services.ExtractDistrict(card.Address)

	l := &models.Listing{
		ExternalID:   externalID,
		Title:        card.Title,
		Price:        scraper.ParsePrice(card.Price),
		URL:          card.URL,
		Address:      address,
		District:     district,
		Area:         scraper.ParseArea(card.Title),
		Rooms:        rooms,
		PropertyType: propertyType,
		Floor:        floor,
		TotalFloors:  totalFloors,
		Source:       sourceName,
		ParsedAt:     time.Now(),
	}
	if card.Image != "" {
		l.Images = []string{card.Image}
	}
	return l
}
