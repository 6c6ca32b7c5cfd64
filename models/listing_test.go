package models

import (
	"testing"
	"time"
)

func TestCSVRecordMatchesHeader(t *testing.T) {
	l := &Listing{
		ExternalID:   "111",
		Title:        "2-к квартира, 45 м²",
		Price:        30000,
		URL:          "https://avito.example/111",
		Area:         45.5,
		Rooms:        2,
		PropertyType: PropertyApartment,
		Images:       []string{"a.jpg", "b.jpg"},
		Source:       "avito",
		ParsedAt:     time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}

	record := l.CSVRecord()
	if len(record) != len(CSVHeader) {
		t.Fatalf("Expected %d columns, got %d", len(CSVHeader), len(record))
	}
	if record[2] != "30000" {
		t.Errorf("Expected price column 30000, got %q", record[2])
	}
	if record[6] != "45.5" {
		t.Errorf("Expected area column 45.5, got %q", record[6])
	}
	if record[12] != "a.jpg,b.jpg" {
		t.Errorf("Expected joined images, got %q", record[12])
	}
}

func TestImageURL(t *testing.T) {
	l := &Listing{}
	if url := l.ImageURL(); url != "" {
		t.Errorf("Expected empty image URL, got %q", url)
	}

	l.Images = []string{"first.jpg", "second.jpg"}
	if url := l.ImageURL(); url != "first.jpg" {
		t.Errorf("Expected first image, got %q", url)
	}
}
