package avito

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"realty-aggregator/config"
	"realty-aggregator/models"
	"realty-aggregator/scraper"
	"realty-aggregator/services"
	"realty-aggregator/utils"
)

const (
	sourceName = "avito"
	baseURL    = "https://www.avito.ru/vladivostok/kvartiry/sdam/na_dlitelnyy_srok"
	pageLoad   = 20 * time.Second
)

// extractCards pulls listing cards out of an Avito search page. The item id
// lives in a data attribute, so no detail-page visit is needed.
const extractCards = `
(() => {
	const cards = [];
	document.querySelectorAll('div[data-marker="item"]').forEach(item => {
		const link = item.querySelector('a[data-marker="item-title"]');
		if (!link) return;
		const price = item.querySelector('[data-marker="item-price"]');
		const addr = item.querySelector('[data-marker="item-address"], [class*="geo-root"]');
		const img = item.querySelector('img');
		cards.push({
			external_id: item.getAttribute('data-item-id') || '',
			title: link.textContent.trim(),
			price: price ? price.textContent.trim() : '',
			address: addr ? addr.textContent.trim() : '',
			url: link.href,
			image: img ? (img.src || '') : '',
		});
	});
	return JSON.stringify(cards);
})()
`

// Scraper collects rental listings from Avito search pages.
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
			pageURL = fmt.Sprintf("%s?p=%d", baseURL, page)
		}

		cards, err := s.scrapePage(ctx, pageURL)
		if err != nil {
			s.logger.Warn("avito: page %d failed: %v", page, err)
			continue
		}
		if len(cards) == 0 {
			s.logger.Info("avito: page %d empty, stopping", page)
			break
		}

		for _, card := range cards {
			if card.URL == "" || !s.seen.Add(card.URL) {
				continue
			}
			listings = append(listings, s.toListing(card))
		}

		s.logger.Info("avito: page %d done, %d listings so far", page, len(listings))
		time.Sleep(time.Duration(s.cfg.RequestDelayMs) * time.Millisecond)
	}

	return listings, nil
}

func (s *Scraper) scrapePage(ctx context.Context, pageURL string) ([]scraper.Card, error) {
	var cards []scraper.Card

	err := s.retry.Do(ctx, "avito page", func() error {
		tabCtx, cancel := s.browser.NewContext(ctx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, pageLoad)
		defer cancelTimeout()

		var raw string
		if err := chromedp.Run(tabCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitVisible(`div[data-marker="item"]`, chromedp.ByQuery),
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
	rooms, propertyType := scraper.ParseRooms(card.Title)
	floor, totalFloors := scraper.ParseFloor(card.Title)
	address, district := services.ExtractDistrict(card.Address)

	l := &models.Listing{
		ExternalID:   card.ExternalID,
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
