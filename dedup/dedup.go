package dedup

import (
	"context"
	"strings"
	"unicode/utf8"

	"realty-aggregator/store"
	"realty-aggregator/utils"
)

// ProductStore is the slice of the entity store the deduplicator needs.
// Transactionality (assignment + min-price recompute as one unit, rollback
// on failure) is the implementation's responsibility.
type ProductStore interface {
	SearchProducts(ctx context.Context, q store.SearchQuery) ([]*store.Product, error)
	CreateProductFromOffer(ctx context.Context, offer *store.Offer) (*store.Product, error)
	AssignOffer(ctx context.Context, offer *store.Offer, productID uint) error
	UnassignedOffers(ctx context.Context, limit int, excludeIDs []uint) ([]*store.Offer, error)
}

// Similarity weights. Title dominates because addresses are the noisiest
// field across sources.
const (
	weightTitle   = 0.4
	weightAddress = 0.3
	weightRooms   = 0.1
	weightArea    = 0.1
	weightPrice   = 0.1

	// A candidate at or above this score is returned immediately without
	// scanning the remaining probes.
	strongMatchScore = 90.0

	candidateLimit = 100
	minProbeRunes  = 3
)

// Thresholds tunes the matching decisions.
type Thresholds struct {
	TitleThreshold   float64
	PriceDiffPercent float64
	AreaDiffPercent  float64
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TitleThreshold:   85.0,
		PriceDiffPercent: 15.0,
		AreaDiffPercent:  10.0,
	}
}

// Deduplicator decides whether two offers from different sources describe
// the same physical property, and maintains the canonical product registry.
// It is a single logical worker: running several DeduplicateAll loops
// concurrently against the same unassigned pool is not safe, because the
// read-then-decide-then-write candidate search would let two workers create
// separate products for near-duplicate offers.
type Deduplicator struct {
	store  ProductStore
	logger *utils.Logger
	th     Thresholds
}

// New creates a Deduplicator over the given store.
func New(st ProductStore, logger *utils.Logger, th Thresholds) *Deduplicator {
	if th.TitleThreshold == 0 {
		th = DefaultThresholds()
	}
	return &Deduplicator{store: st, logger: logger, th: th}
}

// Stats aggregates the outcome of one reconciliation run.
type Stats struct {
	Processed   int
	NewProducts int
	Merged      int
	Errors      int
}

// isPriceSimilar treats prices within PriceDiffPercent of the smaller one
// as the same. A zero price means "unknown" and never vetoes a match.
func (d *Deduplicator) isPriceSimilar(price1, price2 int) bool {
	if price1 == 0 || price2 == 0 {
		return true
	}
	lo, hi := price1, price2
	if lo > hi {
		lo, hi = hi, lo
	}
	diffPercent := float64(hi-lo) / float64(lo) * 100
	return diffPercent <= d.th.PriceDiffPercent
}

// isAreaSimilar applies the same rule to areas with AreaDiffPercent.
func (d *Deduplicator) isAreaSimilar(area1, area2 float64) bool {
	if area1 == 0 || area2 == 0 {
		return true
	}
	lo, hi := area1, area2
	if lo > hi {
		lo, hi = hi, lo
	}
	diffPercent := (hi - lo) / lo * 100
	return diffPercent <= d.th.AreaDiffPercent
}

// CalculateSimilarity scores how likely two offers describe the same
// property, 0–100. Token-sort ratio makes the text comparison insensitive
// to word order, which varies wildly between sites.
func (d *Deduplicator) CalculateSimilarity(offer1, offer2 *store.Offer) float64 {
	titleSimilarity := tokenSortRatio(offer1.Title, offer2.Title)
	addressSimilarity := tokenSortRatio(offer1.Address, offer2.Address)

	roomsMatch := 0.0
	if offer1.Rooms == offer2.Rooms {
		roomsMatch = 100.0
	}
	areaMatch := 0.0
	if d.isAreaSimilar(offer1.Area, offer2.Area) {
		areaMatch = 100.0
	}
	priceMatch := 0.0
	if d.isPriceSimilar(offer1.Price, offer2.Price) {
		priceMatch = 100.0
	}

	return titleSimilarity*weightTitle +
		addressSimilarity*weightAddress +
		roomsMatch*weightRooms +
		areaMatch*weightArea +
		priceMatch*weightPrice
}

// IsDuplicate reports whether the two offers describe the same property.
// Offers from the same website are never duplicates of each other: each
// source already has a unique listing per property.
func (d *Deduplicator) IsDuplicate(offer1, offer2 *store.Offer) bool {
	if offer1.WebsiteName == offer2.WebsiteName {
		return false
	}
	return d.CalculateSimilarity(offer1, offer2) >= d.th.TitleThreshold
}

// searchProbes builds the candidate-search queries for the offer: title
// prefix, address prefix, and title keywords, in that order. The probe
// order is fixed; on equally-scored candidates the first one seen wins.
func searchProbes(offer *store.Offer) []string {
	var probes []string
	if offer.Title != "" {
		probes = append(probes, truncateRunes(offer.Title, 50))
	}
	if offer.Address != "" {
		probes = append(probes, firstFields(offer.Address, 5))
	}
	if offer.Title != "" {
		probes = append(probes, firstFields(offer.Title, 4))
	}
	return probes
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func firstFields(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// FindMatchingProduct searches candidate products for one that already
// holds an offer sufficiently similar to the given offer. It returns nil
// when no candidate qualifies.
func (d *Deduplicator) FindMatchingProduct(ctx context.Context, offer *store.Offer) (*store.Product, error) {
	var (
		bestMatch      *store.Product
		bestSimilarity float64
	)

	for _, probe := range searchProbes(offer) {
		if probe == "" || utf8.RuneCountInString(probe) < minProbeRunes {
			continue
		}

		query := store.SearchQuery{
			Text:  probe,
			Rooms: &offer.Rooms,
			Limit: candidateLimit,
		}
		if offer.Area > 0 {
			minArea := offer.Area * 0.85
			maxArea := offer.Area * 1.15
			query.MinArea = &minArea
			query.MaxArea = &maxArea
		}

		products, err := d.store.SearchProducts(ctx, query)
		if err != nil {
			return nil, err
		}

		for _, product := range products {
			if len(product.Offers) == 0 {
				continue
			}

			// At most one offer per source per product.
			sameWebsite := false
			for i := range product.Offers {
				if product.Offers[i].WebsiteName == offer.WebsiteName {
					sameWebsite = true
					break
				}
			}
			if sameWebsite {
				continue
			}

			maxProductSimilarity := 0.0
			for i := range product.Offers {
				similarity := d.CalculateSimilarity(offer, &product.Offers[i])
				if similarity > maxProductSimilarity {
					maxProductSimilarity = similarity
				}
			}

			if maxProductSimilarity >= d.th.TitleThreshold && maxProductSimilarity > bestSimilarity {
				bestSimilarity = maxProductSimilarity
				bestMatch = product

				if bestSimilarity >= strongMatchScore {
					return bestMatch, nil
				}
			}
		}
	}

	return bestMatch, nil
}

// DeduplicateOffer assigns the offer to a matching product, or creates a
// new product seeded from the offer when none matches. Either way the
// returned product owns the offer afterwards.
func (d *Deduplicator) DeduplicateOffer(ctx context.Context, offer *store.Offer) (*store.Product, error) {
	product, err := d.FindMatchingProduct(ctx, offer)
	if err != nil {
		return nil, err
	}

	if product != nil {
		if err := d.store.AssignOffer(ctx, offer, product.ID); err != nil {
			return nil, err
		}
		return product, nil
	}

	return d.store.CreateProductFromOffer(ctx, offer)
}

// DeduplicateAll drives reconciliation to convergence: it repeatedly
// fetches unassigned offers in batches and assigns each one. A per-offer
// failure is rolled back by the store, counted, and skipped for the rest
// of the run; it never aborts the batch. Failed offers are excluded from
// subsequent fetches, so every unassigned offer gets exactly one attempt
// per run and the loop terminates when a fetch comes back empty.
func (d *Deduplicator) DeduplicateAll(ctx context.Context, batchSize int) (Stats, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	var stats Stats
	failed := make(map[uint]struct{})
	var failedIDs []uint
	batchNum := 0

	for {
		offers, err := d.store.UnassignedOffers(ctx, batchSize, failedIDs)
		if err != nil {
			return stats, err
		}
		if len(offers) == 0 {
			break
		}

		markFailed := func(id uint) {
			stats.Errors++
			failed[id] = struct{}{}
			failedIDs = append(failedIDs, id)
		}

		fresh := 0
		for _, offer := range offers {
			if _, seen := failed[offer.ID]; seen {
				continue
			}
			fresh++

			product, err := d.FindMatchingProduct(ctx, offer)
			if err != nil {
				markFailed(offer.ID)
				d.logger.Warn("[dedup] match failed for offer %d (%s): %v", offer.ID, offer.WebsiteName, err)
				continue
			}

			if product != nil {
				if err := d.store.AssignOffer(ctx, offer, product.ID); err != nil {
					markFailed(offer.ID)
					d.logger.Warn("[dedup] assign failed for offer %d: %v", offer.ID, err)
					continue
				}
				stats.Merged++
				d.logger.Debug("[dedup] merged %s offer %d into product %d", offer.WebsiteName, offer.ID, product.ID)
			} else {
				created, err := d.store.CreateProductFromOffer(ctx, offer)
				if err != nil {
					markFailed(offer.ID)
					d.logger.Warn("[dedup] create failed for offer %d: %v", offer.ID, err)
					continue
				}
				stats.NewProducts++
				d.logger.Debug("[dedup] new product %d from %s offer %d", created.ID, offer.WebsiteName, offer.ID)
			}
			stats.Processed++
		}

		if fresh == 0 {
			// Guard against a store that does not honor the exclusion list.
			break
		}

		batchNum++
		d.logger.Info("[dedup] batch %d done | processed: %d | new: %d | merged: %d | errors: %d",
			batchNum, stats.Processed, stats.NewProducts, stats.Merged, stats.Errors)
	}

	return stats, nil
}
