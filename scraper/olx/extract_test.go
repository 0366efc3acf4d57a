package olx

import (
	"strings"
	"testing"
)

const testBase = "https://www.olx.kz"

func TestNormalizeOfferStructuredPrice(t *testing.T) {
	offer := map[string]any{
		"title": "iPhone 11 64gb",
		"price": map[string]any{
			"value": map[string]any{"amount": 50000.0, "currency": "KZT"},
		},
		"locations_resolved": map[string]any{"name": "Алматы"},
		"created_time":       "2024-05-01T10:32:00+06:00",
		"url":                "https://www.olx.kz/obyavlenie/iphone-11",
		"description":        "<p>Состояние <b>отличное</b></p>",
	}

	l := normalizeOffer(offer, testBase)

	if l.Title != "iPhone 11 64gb" {
		t.Errorf("Title: got %q", l.Title)
	}
	if l.Price != "50 000 ₸" {
		t.Errorf("Price: got %q, want %q", l.Price, "50 000 ₸")
	}
	if l.PriceValue != 50000 {
		t.Errorf("PriceValue: got %.2f, want 50000", l.PriceValue)
	}
	if l.City != "Алматы" {
		t.Errorf("City: got %q", l.City)
	}
	if l.Date != "2024-05-01" {
		t.Errorf("Date: got %q, want 2024-05-01", l.Date)
	}
	if l.Description != "Состояние отличное" {
		t.Errorf("Description: got %q", l.Description)
	}
}

func TestNormalizeOfferSentinels(t *testing.T) {
	l := normalizeOffer(map[string]any{}, testBase)

	if l.Title != unknownTitle {
		t.Errorf("Title sentinel: got %q", l.Title)
	}
	if l.Price != "" || l.PriceValue != 0 {
		t.Errorf("expected absent price, got %q / %.2f", l.Price, l.PriceValue)
	}
	if l.City != unknownCity {
		t.Errorf("City sentinel: got %q", l.City)
	}
	if l.Date != unknownDate {
		t.Errorf("Date sentinel: got %q", l.Date)
	}
	if l.URL != "" {
		t.Errorf("URL: got %q, want empty", l.URL)
	}
}

func TestNormalizeOfferMalformedFields(t *testing.T) {
	// Wrong types everywhere must degrade to sentinels, never panic.
	offer := map[string]any{
		"title":              42.0,
		"price":              "80000",
		"locations_resolved": []any{"Алматы"},
		"created_time":       17.5,
		"url":                map[string]any{},
	}

	l := normalizeOffer(offer, testBase)
	if l.Title != unknownTitle || l.City != unknownCity || l.Date != unknownDate {
		t.Errorf("malformed offer: got %+v", l)
	}
}

func TestExtractCityFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		offer map[string]any
		want  string
	}{
		{"resolved name", map[string]any{
			"locations_resolved": map[string]any{"name": "Астана"},
		}, "Астана"},
		{"location name", map[string]any{
			"location": map[string]any{"name": "Шымкент"},
		}, "Шымкент"},
		{"nested city", map[string]any{
			"location": map[string]any{"city": map[string]any{"name": "Караганда"}},
		}, "Караганда"},
		{"missing", map[string]any{}, unknownCity},
	}

	for _, tt := range tests {
		if got := extractCity(tt.offer); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtractDateAliases(t *testing.T) {
	tests := []struct {
		name  string
		offer map[string]any
		want  string
	}{
		{"created_time iso", map[string]any{"created_time": "2024-05-01T10:00:00Z"}, "2024-05-01"},
		{"created_at", map[string]any{"created_at": "2024-04-30"}, "2024-04-30"},
		{"publication_time", map[string]any{"publication_time": "2024-04-29T08:00:00Z"}, "2024-04-29"},
		{"date", map[string]any{"date": "вчера"}, "вчера"},
		{"alias order", map[string]any{"date": "2024-01-01", "created_time": "2024-02-02"}, "2024-02-02"},
		{"missing", map[string]any{}, unknownDate},
	}

	for _, tt := range tests {
		if got := extractDate(tt.offer); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtractURLJoins(t *testing.T) {
	tests := []struct {
		name  string
		offer map[string]any
		want  string
	}{
		{"absolute", map[string]any{"url": "https://www.olx.kz/obyavlenie/x"}, "https://www.olx.kz/obyavlenie/x"},
		{"leading slash", map[string]any{"path": "/obyavlenie/x"}, "https://www.olx.kz/obyavlenie/x"},
		{"bare path", map[string]any{"path": "obyavlenie/x"}, "https://www.olx.kz/obyavlenie/x"},
		{"missing", map[string]any{}, ""},
	}

	for _, tt := range tests {
		if got := extractURL(tt.offer, testBase); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtractDescriptionTruncation(t *testing.T) {
	long := strings.Repeat("ы", 250)
	got := extractDescription(map[string]any{"description": long})
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got[len(got)-10:])
	}
	if runes := []rune(got); len(runes) != 203 {
		t.Errorf("truncated length: got %d runes, want 203", len(runes))
	}

	short := extractDescription(map[string]any{"content": "short"})
	if short != "short" {
		t.Errorf("content alias: got %q", short)
	}
}

func TestParsePriceValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"55 000 ₸", 55000},
		{"1 250 000 ₸", 1250000},
		{"", 0},
		{"Договорная", 0},
	}

	for _, tt := range tests {
		if got := parsePriceValue(tt.in); got != tt.want {
			t.Errorf("parsePriceValue(%q) = %.2f; want %.2f", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePriceText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  55 000   тг.", "55 000 ₸"},
		{"12 000 тенге", "12 000 ₸"},
		{"90 000 ₸", "90 000 ₸"},
	}

	for _, tt := range tests {
		if got := normalizePriceText(tt.in); got != tt.want {
			t.Errorf("normalizePriceText(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
