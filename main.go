package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"realty-aggregator/api"
	"realty-aggregator/config"
	"realty-aggregator/dedup"
	"realty-aggregator/export"
	"realty-aggregator/models"
	"realty-aggregator/scraper"
	"realty-aggregator/scraper/avito"
	"realty-aggregator/scraper/cian"
	"realty-aggregator/scraper/farpost"
	"realty-aggregator/services"
	"realty-aggregator/store"
	"realty-aggregator/utils"
)

func main() {
	mode := flag.String("mode", "all", "run mode: scrape, dedup, api or all")
	flag.Parse()

	cfg := config.Load()
	logger := utils.NewLoggerWithLevel(cfg.LogLevel)

	st, err := store.New(cfg.DSN())
	if err != nil {
		logger.Error("database connection failed: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	dd := dedup.New(st, logger, dedup.Thresholds{
		TitleThreshold:   cfg.TitleThreshold,
		PriceDiffPercent: cfg.PriceDiffPercent,
		AreaDiffPercent:  cfg.AreaDiffPercent,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "scrape":
		runScrape(ctx, cfg, logger, st)
	case "dedup":
		runDedup(ctx, cfg, logger, st, dd)
	case "api":
		runAPI(cfg, logger, st, dd)
	case "all":
		runScrape(ctx, cfg, logger, st)
		runDedup(ctx, cfg, logger, st, dd)
		runAPI(cfg, logger, st, dd)
	default:
		logger.Error("unknown mode %q", *mode)
		os.Exit(1)
	}
}

func buildSources(cfg *config.Config, logger *utils.Logger) []scraper.Source {
	var sources []scraper.Source
	for _, name := range cfg.EnabledSources {
		switch name {
		case "avito":
			sources = append(sources, avito.New(cfg, logger))
		case "cian":
			sources = append(sources, cian.New(cfg, logger))
		case "farpost":
			sources = append(sources, farpost.New(cfg, logger))
		default:
			logger.Warn("unknown source %q, skipping", name)
		}
	}
	return sources
}

func runScrape(ctx context.Context, cfg *config.Config, logger *utils.Logger, st *store.Store) {
	sources := buildSources(cfg, logger)
	if len(sources) == 0 {
		logger.Warn("no sources enabled, nothing to scrape")
		return
	}

	var (
		mu       sync.Mutex
		listings []*models.Listing
	)
	pool := utils.NewWorkerPool(cfg.MaxConcurrency, 0)
	for _, src := range sources {
		src := src
		pool.Submit(func() {
			found, err := src.Scrape(ctx, cfg.PagesToScrape)
			if err != nil {
				logger.Error("%s: scrape failed: %v", src.Name(), err)
			}
			mu.Lock()
			listings = append(listings, found...)
			mu.Unlock()
			logger.Info("%s: collected %d listings", src.Name(), len(found))
		})
	}
	pool.Wait()

	validator := services.NewValidator(cfg)
	rejections := make(map[services.RejectReason]int)
	valid := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		reason := validator.Check(l)
		if reason != services.Accepted {
			rejections[reason]++
			logger.Debug("rejected %s: %s", l.URL, reason)
			continue
		}
		valid = append(valid, l)
	}
	for reason, n := range rejections {
		logger.Info("rejected %d listings: %s", n, reason)
	}
	logger.Info("validated %d of %d listings", len(valid), len(listings))

	if len(valid) == 0 {
		return
	}

	storage, err := export.NewStorage(cfg.OutputDir)
	if err != nil {
		logger.Error("export setup failed: %v", err)
	} else {
		if path, err := storage.SaveJSON(valid, export.TimestampedName("listings", "json")); err != nil {
			logger.Error("JSON export failed: %v", err)
		} else {
			logger.Info("saved JSON export to %s", path)
		}
		if path, err := storage.SaveCSV(valid, export.TimestampedName("listings", "csv")); err != nil {
			logger.Error("CSV export failed: %v", err)
		} else {
			logger.Info("saved CSV export to %s", path)
		}
	}

	saved, skipped := 0, 0
	for _, l := range valid {
		existing, err := st.OfferByURL(ctx, l.URL)
		if err != nil {
			logger.Error("offer lookup failed for %s: %v", l.URL, err)
			continue
		}
		if existing != nil {
			skipped++
			continue
		}
		if _, err := st.CreateOffer(ctx, l); err != nil {
			logger.Error("offer save failed for %s: %v", l.URL, err)
			continue
		}
		saved++
	}
	logger.Info("persisted %d new offers, %d already known", saved, skipped)
}

func runDedup(ctx context.Context, cfg *config.Config, logger *utils.Logger, st *store.Store, dd *dedup.Deduplicator) {
	stats, err := dd.DeduplicateAll(ctx, cfg.DedupBatchSize)
	if err != nil {
		logger.Error("deduplication failed: %v", err)
		return
	}
	logger.Info("deduplication done: %d processed, %d new products, %d merged, %d errors",
		stats.Processed, stats.NewProducts, stats.Merged, stats.Errors)

	products, err := st.Products(ctx, 0, 0)
	if err != nil {
		logger.Error("stats fetch failed: %v", err)
		return
	}
	bySource, err := st.CountOffersBySource(ctx)
	if err != nil {
		logger.Error("stats fetch failed: %v", err)
		return
	}
	statsSvc := services.NewStatsService(logger)
	statsSvc.Print(statsSvc.Generate(products, bySource))
}

func runAPI(cfg *config.Config, logger *utils.Logger, st *store.Store, dd *dedup.Deduplicator) {
	server := api.New(cfg, st, dd, logger)
	if err := server.Run(); err != nil {
		logger.Error("API server stopped: %v", err)
		os.Exit(1)
	}
}
