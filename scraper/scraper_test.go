package scraper

import (
	"testing"

	"realty-aggregator/models"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"30 000 ₽/мес.", 30000},
		{"30000", 30000},
		{"1 250 000 ₽", 1250000},
		{"договорная", 0},
		{"", 0},
	}

	for _, tc := range cases {
		if got := ParsePrice(tc.in); got != tc.want {
			t.Errorf("ParsePrice(%q): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestParseArea(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"2-к квартира, 45 м²", 45},
		{"Студия, 28,5 м²", 28.5},
		{"1-к квартира, 33.2 кв. м", 33.2},
		{"квартира без площади", 0},
	}

	for _, tc := range cases {
		if got := ParseArea(tc.in); got != tc.want {
			t.Errorf("ParseArea(%q): expected %.1f, got %.1f", tc.in, tc.want, got)
		}
	}
}

func TestParseRooms(t *testing.T) {
	cases := []struct {
		in       string
		rooms    int
		propType string
	}{
		{"2-к квартира, 45 м²", 2, models.PropertyApartment},
		{"3-комн. квартира", 3, models.PropertyApartment},
		{"Студия, 28 м²", 1, models.PropertyStudio},
		{"Аренда жилья", 0, models.PropertyApartment},
	}

	for _, tc := range cases {
		rooms, propType := ParseRooms(tc.in)
		if rooms != tc.rooms || propType != tc.propType {
			t.Errorf("ParseRooms(%q): expected (%d, %s), got (%d, %s)",
				tc.in, tc.rooms, tc.propType, rooms, propType)
		}
	}
}

func TestParseFloor(t *testing.T) {
	cases := []struct {
		in           string
		floor, total int
	}{
		{"2-к квартира, 45 м², 5/9 эт.", 5, 9},
		{"Студия, 28 м², 12/25 эт.", 12, 25},
		{"1-к квартира без этажа", 0, 0},
	}

	for _, tc := range cases {
		floor, total := ParseFloor(tc.in)
		if floor != tc.floor || total != tc.total {
			t.Errorf("ParseFloor(%q): expected (%d, %d), got (%d, %d)",
				tc.in, tc.floor, tc.total, floor, total)
		}
	}
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	if got := findChromeBinary("/custom/chrome"); got != "/custom/chrome" {
		t.Errorf("Expected configured path, got %q", got)
	}
}
