package services

import (
	"testing"

	"realty-aggregator/store"
	"realty-aggregator/utils"
)

func TestStatsGenerate(t *testing.T) {
	products := []*store.Product{
		{
			ID:       1,
			District: "Фрунзенский",
			MinPrice: 30000,
			Offers: []store.Offer{
				{WebsiteName: "avito", Price: 30000},
				{WebsiteName: "cian", Price: 32000},
			},
		},
		{
			ID:       2,
			District: "Фрунзенский",
			MinPrice: 50000,
			Offers:   []store.Offer{{WebsiteName: "farpost", Price: 50000}},
		},
		{
			ID:       3,
			MinPrice: 0, // no priced offers yet
			Offers:   []store.Offer{{WebsiteName: "avito", Price: 0}},
		},
	}
	bySource := map[string]int{"avito": 2, "cian": 1, "farpost": 1}

	report := NewStatsService(utils.NewLogger()).Generate(products, bySource)

	if report.TotalProducts != 3 {
		t.Errorf("Expected 3 products, got %d", report.TotalProducts)
	}
	if report.TotalOffers != 4 {
		t.Errorf("Expected 4 offers, got %d", report.TotalOffers)
	}
	if report.MultiSourceProducts != 1 {
		t.Errorf("Expected 1 multi-source product, got %d", report.MultiSourceProducts)
	}
	if report.MinPrice != 30000 {
		t.Errorf("Expected min price 30000, got %d", report.MinPrice)
	}
	if report.MaxPrice != 50000 {
		t.Errorf("Expected max price 50000, got %d", report.MaxPrice)
	}
	if report.AveragePrice != 40000 {
		t.Errorf("Expected average price 40000, got %.2f", report.AveragePrice)
	}
	if report.ProductsByDistrict["Фрунзенский"] != 2 {
		t.Errorf("Expected 2 products in district, got %d", report.ProductsByDistrict["Фрунзенский"])
	}
}

func TestStatsGenerateEmpty(t *testing.T) {
	report := NewStatsService(utils.NewLogger()).Generate(nil, nil)

	if report.TotalProducts != 0 || report.TotalOffers != 0 {
		t.Errorf("Expected empty report, got %d products / %d offers",
			report.TotalProducts, report.TotalOffers)
	}
	if report.AveragePrice != 0 {
		t.Errorf("Expected zero average price, got %.2f", report.AveragePrice)
	}
}
