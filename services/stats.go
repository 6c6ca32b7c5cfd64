package services

import (
	"fmt"
	"sort"
	"strings"

	"realty-aggregator/store"
	"realty-aggregator/utils"
)

// StatsReport holds the computed analytics over the merged catalog.
type StatsReport struct {
	TotalProducts       int
	TotalOffers         int
	OffersBySource      map[string]int
	MultiSourceProducts int
	MinPrice            int
	MaxPrice            int
	AveragePrice        float64
	ProductsByDistrict  map[string]int
}

// StatsService aggregates catalog-level statistics after a reconciliation run.
type StatsService struct {
	logger *utils.Logger
}

func NewStatsService(logger *utils.Logger) *StatsService {
	return &StatsService{logger: logger}
}

// Generate computes the report. Products with a zero min_price are excluded
// from the price statistics.
func (s *StatsService) Generate(products []*store.Product, offersBySource map[string]int) *StatsReport {
	report := &StatsReport{
		OffersBySource:     offersBySource,
		ProductsByDistrict: make(map[string]int),
	}

	for _, n := range offersBySource {
		report.TotalOffers += n
	}

	if len(products) == 0 {
		return report
	}
	report.TotalProducts = len(products)

	var priced []*store.Product
	for _, p := range products {
		if len(p.Offers) > 1 {
			report.MultiSourceProducts++
		}
		if p.District != "" {
			report.ProductsByDistrict[p.District]++
		}
		if p.MinPrice > 0 {
			priced = append(priced, p)
		}
	}

	if len(priced) > 0 {
		report.MinPrice = priced[0].MinPrice
		report.MaxPrice = priced[0].MinPrice
		var total int
		for _, p := range priced {
			total += p.MinPrice
			if p.MinPrice < report.MinPrice {
				report.MinPrice = p.MinPrice
			}
			if p.MinPrice > report.MaxPrice {
				report.MaxPrice = p.MinPrice
			}
		}
		report.AveragePrice = round2(float64(total) / float64(len(priced)))
	}

	return report
}

// Print renders the report to stdout.
func (s *StatsService) Print(r *StatsReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  CATALOG SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Products (deduplicated) : \033[1m%d\033[0m\n", r.TotalProducts)
	fmt.Printf("  Offers (all sources)    : \033[1m%d\033[0m\n", r.TotalOffers)
	fmt.Printf("  Cross-source matches    : \033[1m%d\033[0m\n", r.MultiSourceProducts)
	fmt.Println()

	fmt.Printf("\033[1;33m  Offers by Source\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.OffersBySource) == 0 {
		fmt.Printf("  No offers stored\n")
	} else {
		sources := make([]string, 0, len(r.OffersBySource))
		for src := range r.OffersBySource {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		for _, src := range sources {
			fmt.Printf("  %-20s %d\n", src, r.OffersBySource[src])
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Price Statistics (min price per product)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average : \033[1;32m%.2f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum : \033[1;32m%d\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum : \033[1;32m%d\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}

	if len(r.ProductsByDistrict) > 0 {
		fmt.Println()
		fmt.Printf("\033[1;33m  Products by District\033[0m\n")
		fmt.Printf("  %s\n", thin)

		type districtCount struct {
			district string
			count    int
		}
		var districts []districtCount
		for d, n := range r.ProductsByDistrict {
			districts = append(districts, districtCount{d, n})
		}
		sort.Slice(districts, func(i, j int) bool {
			if districts[i].count != districts[j].count {
				return districts[i].count > districts[j].count
			}
			return districts[i].district < districts[j].district
		})
		for _, dc := range districts {
			fmt.Printf("  %-30s %s (%d)\n", truncate(dc.district, 28), strings.Repeat("█", dc.count), dc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
