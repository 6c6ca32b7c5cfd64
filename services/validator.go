package services

import (
	"strings"

	"realty-aggregator/config"
	"realty-aggregator/models"
)

// RejectReason classifies why a listing was turned away. The order of the
// checks (and therefore which reason wins when several apply) matches the
// declaration order below.
type RejectReason int

const (
	Accepted RejectReason = iota
	RejectEmptyFields
	RejectKeywords
	RejectPrice
	RejectArea
	RejectRooms
)

func (r RejectReason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectEmptyFields:
		return "empty_fields"
	case RejectKeywords:
		return "excluded_keywords"
	case RejectPrice:
		return "price_out_of_bounds"
	case RejectArea:
		return "area_out_of_bounds"
	case RejectRooms:
		return "rooms_out_of_bounds"
	default:
		return "unknown"
	}
}

// Validator rejects listings outside the configured business bounds before
// they ever reach the deduplicator.
type Validator struct {
	cfg *config.Config
}

// NewValidator creates a Validator over the given config.
func NewValidator(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// Check classifies the listing; Accepted means it may be persisted.
func (v *Validator) Check(l *models.Listing) RejectReason {
	if l.ExternalID == "" || l.Title == "" || l.URL == "" {
		return RejectEmptyFields
	}
	if v.hasExcludedKeywords(l.Title) || v.hasExcludedKeywords(l.Description) {
		return RejectKeywords
	}
	if l.Price < v.cfg.MinPrice || l.Price > v.cfg.MaxPrice {
		return RejectPrice
	}
	if l.Area < v.cfg.MinArea || l.Area > v.cfg.MaxArea {
		return RejectArea
	}
	if l.Rooms < v.cfg.MinRooms || l.Rooms > v.cfg.MaxRooms {
		return RejectRooms
	}
	return Accepted
}

// Validate reports whether the listing passes all business bounds.
func (v *Validator) Validate(l *models.Listing) bool {
	return v.Check(l) == Accepted
}

func (v *Validator) hasExcludedKeywords(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, word := range v.cfg.ExcludeKeywords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
