package services

import (
	"testing"

	"realty-aggregator/config"
	"realty-aggregator/models"
)

func testConfig() *config.Config {
	return &config.Config{
		MinPrice:        5000,
		MaxPrice:        100000000,
		MinArea:         10,
		MaxArea:         500,
		MinRooms:        1,
		MaxRooms:        10,
		ExcludeKeywords: []string{"реклама", "акция", "test"},
	}
}

func validListing() *models.Listing {
	return &models.Listing{
		ExternalID: "12345",
		Title:      "2-к квартира, 45 м²",
		Price:      30000,
		URL:        "https://example.com/12345",
		Address:    "Тигровая ул., 16А",
		Area:       45,
		Rooms:      2,
		Source:     "avito",
	}
}

func TestValidatorAcceptsValidListing(t *testing.T) {
	v := NewValidator(testConfig())
	l := validListing()

	if reason := v.Check(l); reason != Accepted {
		t.Errorf("Expected valid listing to be accepted, got %s", reason)
	}
	if !v.Validate(l) {
		t.Error("Expected Validate to return true for valid listing")
	}
}

func TestValidatorRejectsEmptyFields(t *testing.T) {
	v := NewValidator(testConfig())

	cases := []struct {
		name   string
		mutate func(*models.Listing)
	}{
		{"missing external id", func(l *models.Listing) { l.ExternalID = "" }},
		{"missing title", func(l *models.Listing) { l.Title = "" }},
		{"missing url", func(l *models.Listing) { l.URL = "" }},
	}

	for _, tc := range cases {
		l := validListing()
		tc.mutate(l)
		if reason := v.Check(l); reason != RejectEmptyFields {
			t.Errorf("%s: expected empty_fields rejection, got %s", tc.name, reason)
		}
	}
}

func TestValidatorRejectsExcludedKeywords(t *testing.T) {
	v := NewValidator(testConfig())

	l := validListing()
	l.Title = "Квартира РЕКЛАМА выгодно"
	if reason := v.Check(l); reason != RejectKeywords {
		t.Errorf("Expected keyword rejection for title, got %s", reason)
	}

	l = validListing()
	l.Description = "Это акция недели"
	if reason := v.Check(l); reason != RejectKeywords {
		t.Errorf("Expected keyword rejection for description, got %s", reason)
	}
}

func TestValidatorPriceBounds(t *testing.T) {
	v := NewValidator(testConfig())

	cases := []struct {
		price int
		want  RejectReason
	}{
		{4999, RejectPrice},
		{5000, Accepted},
		{100000000, Accepted},
		{100000001, RejectPrice},
		{0, RejectPrice},
	}

	for _, tc := range cases {
		l := validListing()
		l.Price = tc.price
		if got := v.Check(l); got != tc.want {
			t.Errorf("Price %d: expected %s, got %s", tc.price, tc.want, got)
		}
	}
}

func TestValidatorAreaBounds(t *testing.T) {
	v := NewValidator(testConfig())

	cases := []struct {
		area float64
		want RejectReason
	}{
		{9.9, RejectArea},
		{10, Accepted},
		{500, Accepted},
		{500.1, RejectArea},
		{0, RejectArea},
	}

	for _, tc := range cases {
		l := validListing()
		l.Area = tc.area
		if got := v.Check(l); got != tc.want {
			t.Errorf("Area %.1f: expected %s, got %s", tc.area, tc.want, got)
		}
	}
}

func TestValidatorRoomsBounds(t *testing.T) {
	v := NewValidator(testConfig())

	cases := []struct {
		rooms int
		want  RejectReason
	}{
		{0, RejectRooms},
		{1, Accepted},
		{10, Accepted},
		{11, RejectRooms},
	}

	for _, tc := range cases {
		l := validListing()
		l.Rooms = tc.rooms
		if got := v.Check(l); got != tc.want {
			t.Errorf("Rooms %d: expected %s, got %s", tc.rooms, tc.want, got)
		}
	}
}

func TestValidatorChecksOrder(t *testing.T) {
	v := NewValidator(testConfig())

	// Several violations at once: the empty-field check wins.
	l := validListing()
	l.Title = ""
	l.Price = 1
	l.Rooms = 99
	if reason := v.Check(l); reason != RejectEmptyFields {
		t.Errorf("Expected empty_fields to take precedence, got %s", reason)
	}

	// Keywords beat price.
	l = validListing()
	l.Title = "Срочно, акция!"
	l.Price = 1
	if reason := v.Check(l); reason != RejectKeywords {
		t.Errorf("Expected excluded_keywords to take precedence over price, got %s", reason)
	}
}
