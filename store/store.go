package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"realty-aggregator/models"
)

// Store persists products, offers and attributes in PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New opens a connection to PostgreSQL, runs schema migrations, and returns
// a ready-to-use Store. The database is pinged with retries so the service
// survives a database that is still starting up.
func New(dsn string) (*Store, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = sqlDB.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("store: ping failed after retries: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: gorm open: %w", err)
	}

	if err := db.AutoMigrate(&Product{}, &Offer{}, &Attribute{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return sqlDB.Close()
}

// SearchQuery describes a product search. Nil pointer fields are not filtered on.
type SearchQuery struct {
	Text         string
	MinPrice     *int
	MaxPrice     *int
	MinArea      *float64
	MaxArea      *float64
	Rooms        *int
	PropertyType string
	District     string
	Limit        int
	Offset       int
}

// SearchProducts runs a substring search over title/address/description with
// optional exact-room and inclusive range filters. Offers are preloaded so
// callers can compare against every offer already on a candidate. Results
// are ordered by min_price ascending; iteration order is therefore stable
// for a given dataset.
func (s *Store) SearchProducts(ctx context.Context, q SearchQuery) ([]*Product, error) {
	tx := s.db.WithContext(ctx).Model(&Product{}).Preload("Offers")

	if q.Text != "" {
		pattern := "%" + strings.ToLower(q.Text) + "%"
		tx = tx.Where(
			"lower(canonical_title) LIKE ? OR lower(canonical_address) LIKE ? OR lower(description) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if q.MinPrice != nil {
		tx = tx.Where("min_price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("min_price <= ?", *q.MaxPrice)
	}
	if q.MinArea != nil {
		tx = tx.Where("area >= ?", *q.MinArea)
	}
	if q.MaxArea != nil {
		tx = tx.Where("area <= ?", *q.MaxArea)
	}
	if q.Rooms != nil {
		tx = tx.Where("rooms = ?", *q.Rooms)
	}
	if q.PropertyType != "" {
		tx = tx.Where("property_type = ?", q.PropertyType)
	}
	if q.District != "" {
		tx = tx.Where("district ILIKE ?", "%"+q.District+"%")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	var products []*Product
	if err := tx.Order("min_price asc").Limit(limit).Offset(q.Offset).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("store: search products: %w", err)
	}
	return products, nil
}

// CreateOffer persists a validated listing as an unassigned offer.
func (s *Store) CreateOffer(ctx context.Context, l *models.Listing) (*Offer, error) {
	offer := &Offer{
		ExternalID:   l.ExternalID,
		WebsiteName:  l.Source,
		Title:        l.Title,
		Price:        l.Price,
		URL:          l.URL,
		Address:      l.Address,
		District:     l.District,
		Area:         l.Area,
		Rooms:        l.Rooms,
		PropertyType: l.PropertyType,
		Description:  l.Description,
		ImageURL:     l.ImageURL(),
		Floor:        l.Floor,
		TotalFloors:  l.TotalFloors,
		DateParsed:   l.ParsedAt,
	}
	if err := s.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, fmt.Errorf("store: create offer: %w", err)
	}
	return offer, nil
}

// OfferByURL returns the offer with the given URL, or nil when absent.
func (s *Store) OfferByURL(ctx context.Context, url string) (*Offer, error) {
	var offer Offer
	err := s.db.WithContext(ctx).Where("url = ?", url).First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: offer by url: %w", err)
	}
	return &offer, nil
}

// OfferByExternalID returns the offer with the given per-source id, or nil.
func (s *Store) OfferByExternalID(ctx context.Context, externalID, websiteName string) (*Offer, error) {
	var offer Offer
	err := s.db.WithContext(ctx).
		Where("external_id = ? AND website_name = ?", externalID, websiteName).
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: offer by external id: %w", err)
	}
	return &offer, nil
}

// UnassignedOffers fetches up to limit offers that have no product yet, in
// insertion order. Offers whose ids are in excludeIDs are skipped, so a
// reconciliation run can page past offers that already failed in it.
func (s *Store) UnassignedOffers(ctx context.Context, limit int, excludeIDs []uint) ([]*Offer, error) {
	tx := s.db.WithContext(ctx).Where("product_id IS NULL")
	if len(excludeIDs) > 0 {
		tx = tx.Where("id NOT IN ?", excludeIDs)
	}

	var offers []*Offer
	err := tx.Order("id asc").
		Limit(limit).
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("store: unassigned offers: %w", err)
	}
	return offers, nil
}

// CreateProductFromOffer seeds a new product from the offer's fields and
// links the offer to it, as one transaction.
func (s *Store) CreateProductFromOffer(ctx context.Context, offer *Offer) (*Product, error) {
	product := &Product{
		CanonicalTitle:   offer.Title,
		CanonicalAddress: offer.Address,
		District:         offer.District,
		Description:      offer.Description,
		Rooms:            offer.Rooms,
		Area:             offer.Area,
		PropertyType:     offer.PropertyType,
		ImageURL:         offer.ImageURL,
		MinPrice:         offer.Price,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		if err := tx.Model(&Offer{}).Where("id = ?", offer.ID).
			Update("product_id", product.ID).Error; err != nil {
			return err
		}
		return createAttributes(tx, product.ID, offerAttributes(offer))
	})
	if err != nil {
		return nil, fmt.Errorf("store: create product from offer: %w", err)
	}

	offer.ProductID = &product.ID
	product.Offers = []Offer{*offer}
	return product, nil
}

// AssignOffer links the offer to the product and recomputes the product's
// min_price from its current offers, as one transaction. The recompute reads
// the offers table rather than comparing against the cached value so that
// concurrent external edits are tolerated.
func (s *Store) AssignOffer(ctx context.Context, offer *Offer, productID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Offer{}).Where("id = ?", offer.ID).
			Update("product_id", productID).Error; err != nil {
			return err
		}
		return recomputeMinPrice(tx, productID)
	})
	if err != nil {
		return fmt.Errorf("store: assign offer: %w", err)
	}

	offer.ProductID = &productID
	return nil
}

// UpdateMinPrice recomputes min_price for the product from its offers.
func (s *Store) UpdateMinPrice(ctx context.Context, productID uint) error {
	if err := recomputeMinPrice(s.db.WithContext(ctx), productID); err != nil {
		return fmt.Errorf("store: update min price: %w", err)
	}
	return nil
}

func recomputeMinPrice(tx *gorm.DB, productID uint) error {
	var minPrice sql.NullInt64
	if err := tx.Model(&Offer{}).
		Where("product_id = ?", productID).
		Select("MIN(price)").
		Scan(&minPrice).Error; err != nil {
		return err
	}
	if !minPrice.Valid {
		// No offers yet; leave the seeded value alone.
		return nil
	}
	return tx.Model(&Product{}).Where("id = ?", productID).
		Update("min_price", minPrice.Int64).Error
}

// ProductByID returns the product with offers and attributes preloaded,
// or nil when absent.
func (s *Store) ProductByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).
		Preload("Offers").
		Preload("Attributes").
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: product by id: %w", err)
	}
	return &product, nil
}

// Products pages through all products, newest first, offers preloaded.
// A non-positive limit returns everything.
func (s *Store) Products(ctx context.Context, limit, offset int) ([]*Product, error) {
	if limit <= 0 {
		limit = -1
	}
	var products []*Product
	err := s.db.WithContext(ctx).
		Preload("Offers").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("store: products: %w", err)
	}
	return products, nil
}

// CountProducts returns the total number of products.
func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("store: count products: %w", err)
	}
	return count, nil
}

// CountOffersBySource returns the number of offers per website.
func (s *Store) CountOffersBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.WithContext(ctx).Model(&Offer{}).
		Select("website_name, count(id)").
		Group("website_name").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("store: count offers by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("store: scan source count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// BulkCreateAttributes inserts the key/value pairs for the product.
func (s *Store) BulkCreateAttributes(ctx context.Context, productID uint, attributes map[string]string) error {
	if err := createAttributes(s.db.WithContext(ctx), productID, attributes); err != nil {
		return fmt.Errorf("store: bulk create attributes: %w", err)
	}
	return nil
}

func createAttributes(tx *gorm.DB, productID uint, attributes map[string]string) error {
	if len(attributes) == 0 {
		return nil
	}
	attrs := make([]Attribute, 0, len(attributes))
	for name, value := range attributes {
		attrs = append(attrs, Attribute{
			ProductID:      productID,
			AttributeName:  name,
			AttributeValue: value,
		})
	}
	return tx.Create(&attrs).Error
}

// offerAttributes collects the offer fields that live in the attributes
// table rather than on the product row.
func offerAttributes(offer *Offer) map[string]string {
	attrs := make(map[string]string, 2)
	if offer.Floor > 0 {
		attrs["floor"] = strconv.Itoa(offer.Floor)
	}
	if offer.TotalFloors > 0 {
		attrs["total_floors"] = strconv.Itoa(offer.TotalFloors)
	}
	return attrs
}
