package services

import "testing"

func TestExtractDistrictExplicitMarkers(t *testing.T) {
	cases := []struct {
		name         string
		address      string
		wantAddress  string
		wantDistrict string
	}{
		{
			"r-n marker",
			"Тигровая ул., 16А р-н Фрунзенский",
			"Тигровая ул., 16А",
			"Фрунзенский",
		},
		{
			"raion word",
			"ул. Ленина, 10, район Центральный",
			"ул. Ленина, 10",
			"Центральный",
		},
		{
			"dotted r.n. marker",
			"Некрасовская 50, р.н. Некрасовский",
			"Некрасовская 50",
			"Некрасовский",
		},
		{
			"raion with colon",
			"Адрес, район: Первомайский",
			"Адрес",
			"Первомайский",
		},
		{
			"marker is case insensitive",
			"ул. Мира, 5 Р-Н Ленинский",
			"ул. Мира, 5",
			"Ленинский",
		},
	}

	for _, tc := range cases {
		gotAddress, gotDistrict := ExtractDistrict(tc.address)
		if gotDistrict != tc.wantDistrict {
			t.Errorf("%s: expected district %q, got %q", tc.name, tc.wantDistrict, gotDistrict)
		}
		if gotAddress != tc.wantAddress {
			t.Errorf("%s: expected address %q, got %q", tc.name, tc.wantAddress, gotAddress)
		}
	}
}

func TestExtractDistrictNoMarker(t *testing.T) {
	// Numeric house number blocks the trailing-segment fallback, so the
	// address comes back untouched.
	address, district := ExtractDistrict("Москва, ул. Пушкина, 5")
	if district != "" {
		t.Errorf("Expected no district, got %q", district)
	}
	if address != "Москва, ул. Пушкина, 5" {
		t.Errorf("Expected address unchanged, got %q", address)
	}
}

func TestExtractDistrictTrailingSegmentFallback(t *testing.T) {
	// The fallback treats a purely alphabetic final segment as a district.
	// A trailing street name like this one is picked up too; that misfire
	// is accepted behavior.
	address, district := ExtractDistrict("Владивосток, Светланская")
	if district != "Светланская" {
		t.Errorf("Expected fallback district %q, got %q", "Светланская", district)
	}
	if address != "Владивосток" {
		t.Errorf("Expected cleaned address %q, got %q", "Владивосток", address)
	}
}

func TestExtractDistrictEmptyAddress(t *testing.T) {
	address, district := ExtractDistrict("")
	if address != "" || district != "" {
		t.Errorf("Expected empty results, got %q / %q", address, district)
	}
}

func TestNormalizeAddress(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Владивосток,, Тигровая 16", "Владивосток, Тигровая 16"},
		{"  , Москва ,  ", "Москва"},
		{"ул.   Ленина    10", "ул. Ленина 10"},
	}

	for _, tc := range cases {
		if got := NormalizeAddress(tc.in); got != tc.want {
			t.Errorf("NormalizeAddress(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
