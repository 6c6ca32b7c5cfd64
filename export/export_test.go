package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"realty-aggregator/models"
)

func testListings() []*models.Listing {
	return []*models.Listing{
		{
			ExternalID:   "111",
			Title:        "2-к квартира, 45 м²",
			Price:        30000,
			URL:          "https://avito.example/111",
			Address:      "Тигровая ул., 16А",
			District:     "Фрунзенский",
			Area:         45,
			Rooms:        2,
			PropertyType: models.PropertyApartment,
			Images:       []string{"https://img.example/1.jpg"},
			Source:       "avito",
			ParsedAt:     time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		},
		{
			ExternalID:   "222",
			Title:        "Студия, 28 м²",
			Price:        22000,
			URL:          "https://farpost.example/222",
			Address:      "Океанский проспект, 90",
			Area:         28,
			Rooms:        1,
			PropertyType: models.PropertyStudio,
			Source:       "farpost",
			ParsedAt:     time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestSaveJSON(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	path, err := storage.SaveJSON(testListings(), "listings.json")
	if err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(decoded))
	}
	if decoded[0]["external_id"] != "111" {
		t.Errorf("Expected external_id 111, got %v", decoded[0]["external_id"])
	}
	// Listings without images serialize with an empty array, not null.
	if images, ok := decoded[1]["images"].([]any); !ok || images == nil {
		t.Errorf("Expected empty images array, got %v", decoded[1]["images"])
	}
}

func TestSaveCSV(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	path, err := storage.SaveCSV(testListings(), "listings.csv")
	if err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "external_id" {
		t.Errorf("Expected header row, got %v", rows[0])
	}
	if rows[1][2] != "30000" {
		t.Errorf("Expected price column 30000, got %q", rows[1][2])
	}
}

func TestSaveCSVEmptyStillWritesHeader(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	path, err := storage.SaveCSV(nil, "empty.csv")
	if err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.HasPrefix(string(data), "external_id,") {
		t.Errorf("Expected header-only file, got %q", string(data))
	}
}

func TestTimestampedName(t *testing.T) {
	name := TimestampedName("listings", "json")
	if !strings.HasPrefix(name, "listings_") || !strings.HasSuffix(name, ".json") {
		t.Errorf("Unexpected file name %q", name)
	}
}
