package store

import (
	"time"
)

// Product is the canonical deduplicated property. It aggregates one Offer
// per source site; MinPrice is always the minimum price across its offers.
type Product struct {
	ID               uint   `gorm:"primaryKey"`
	CanonicalTitle   string `gorm:"size:500;not null;index"`
	CanonicalAddress string `gorm:"size:500;index"`
	District         string `gorm:"size:100;index"`
	Description      string `gorm:"type:text"`
	Rooms            int    `gorm:"index"`
	Area             float64
	PropertyType     string `gorm:"size:100;index"`
	ImageURL         string `gorm:"size:1000"`
	MinPrice         int    `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Offers     []Offer     `gorm:"constraint:OnDelete:CASCADE"`
	Attributes []Attribute `gorm:"constraint:OnDelete:CASCADE"`
}

// Offer is one listing as seen on one source. ProductID stays NULL until
// the deduplicator assigns the offer to a product.
type Offer struct {
	ID           uint    `gorm:"primaryKey"`
	ProductID    *uint   `gorm:"index;index:ix_offers_product_website"`
	ExternalID   string  `gorm:"size:100;not null;index:ix_offers_website_external"`
	WebsiteName  string  `gorm:"size:50;not null;index:ix_offers_website_external;index:ix_offers_product_website"`
	Title        string  `gorm:"size:500;not null"`
	Price        int     `gorm:"not null;index"`
	URL          string  `gorm:"size:1000;not null;uniqueIndex"`
	Address      string  `gorm:"size:500"`
	District     string  `gorm:"size:100;index"`
	Area         float64
	Rooms        int
	PropertyType string `gorm:"size:100"`
	Description  string `gorm:"type:text"`
	ImageURL     string `gorm:"size:1000"`
	Floor        int
	TotalFloors  int
	DateParsed   time.Time `gorm:"index"`
}

// Attribute is a free-form key/value extension owned by a product.
// Attributes are bulk-inserted and never individually mutated.
type Attribute struct {
	ID             uint   `gorm:"primaryKey"`
	ProductID      uint   `gorm:"not null;index:ix_attributes_product_name"`
	AttributeName  string `gorm:"size:200;not null;index:ix_attributes_product_name"`
	AttributeValue string `gorm:"size:500;not null"`
}
