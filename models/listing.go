package models

import (
	"strconv"
	"strings"
	"time"
)

// Property type values as they appear on the source sites.
const (
	PropertyApartment = "apartment"
	PropertyStudio    = "studio"
)

// Listing is a single normalized scrape result from one source, pre-validation.
// Site scrapers produce it, the validator filters it, and the store converts
// it into a persisted Offer.
type Listing struct {
	ExternalID   string
	Title        string
	Price        int // rubles per month
	URL          string
	Address      string
	District     string
	Area         float64 // m²
	Rooms        int
	PropertyType string
	Description  string
	Floor        int
	TotalFloors  int
	Images       []string
	Source       string
	ParsedAt     time.Time
}

// CSVHeader is the column order used by the file exporter.
var CSVHeader = []string{
	"external_id", "title", "price", "url", "address", "district",
	"area", "rooms", "property_type", "description",
	"floor", "total_floors", "images", "source", "parsed_at",
}

// CSVRecord renders the listing as one row matching CSVHeader.
func (l *Listing) CSVRecord() []string {
	return []string{
		l.ExternalID,
		l.Title,
		strconv.Itoa(l.Price),
		l.URL,
		l.Address,
		l.District,
		strconv.FormatFloat(l.Area, 'f', -1, 64),
		strconv.Itoa(l.Rooms),
		l.PropertyType,
		l.Description,
		strconv.Itoa(l.Floor),
		strconv.Itoa(l.TotalFloors),
		strings.Join(l.Images, ","),
		l.Source,
		l.ParsedAt.Format(time.RFC3339),
	}
}

// ImageURL returns the first image, the one a Product seeded from this
// listing will carry.
func (l *Listing) ImageURL() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}
