package cian

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
	sourceName = "cian"
	baseURL    = "https://vladivostok.cian.ru/snyat-kvartiru/"
	pageLoad   = 25 * time.Second
)

// Cian does not expose the offer id as a data attribute, so it is cut out
// of the URL path (.../rent/flat/123456789/).
var idFromURL = regexp.MustCompile(`/(\d+)/?$`)

const extractCards = `
(() => {
	const cards = [];
	document.querySelectorAll('article[data-name="CardComponent"]').forEach(item => {
		const link = item.querySelector('a[href*="/rent/flat/"]');
		if (!link) return;
		const title = item.querySelector('[data-mark="OfferTitle"]');
		const price = item.querySelector('[data-mark="MainPrice"]');
		const addr = Array.from(item.querySelectorAll('a[data-name="GeoLabel"]'))
			.map(a => a.textContent.trim()).join(', ');
		const img = item.querySelector('img');
		cards.push({
			external_id: '',
			title: title ? title.textContent.trim() : '',
			price: price ? price.textContent.trim() : '',
			address: addr,
			url: link.href,
			image: img ? (img.src || '') : '',
		});
	});
	return JSON.stringify(cards);
})()
`

// Scraper collects rental listings from Cian search pages.
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
			BaseDelay:   3 * time.Second,
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

		pageURL := fmt.Sprintf("%s?deal_type=rent&offer_type=flat&p=%d", baseURL, page)

		cards, err := s.scrapePage(ctx, pageURL)
		if err != nil {
			s.logger.Warn("cian: page %d failed: %v", page, err)
			continue
		}
		if len(cards) == 0 {
			s.logger.Info("cian: page %d empty, stopping", page)
			break
		}

		for _, card := range cards {
			if card.URL == "" || !s.seen.Add(card.URL) {
				continue
			}
			listings = append(listings, s.toListing(card))
		}

		s.logger.Info("cian: page %d done, %d listings so far", page, len(listings))
		time.Sleep(time.Duration(s.cfg.RequestDelayMs) * time.Millisecond)
	}

	return listings, nil
}

func (s *Scraper) scrapePage(ctx context.Context, pageURL string) ([]scraper.Card, error) {
	var cards []scraper.Card

	err := s.retry.Do(ctx, "cian page", func() error {
		tabCtx, cancel := s.browser.NewContext(ctx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, pageLoad)
		defer cancelTimeout()

		var raw string
		if err := chromedp.Run(tabCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitVisible(`article[data-name="CardComponent"]`, chromedp.ByQuery),
			chromedp.Sleep(3*time.Second),
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
