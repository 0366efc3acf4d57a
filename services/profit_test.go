package services

import (
	"testing"

	"olx-profit-bot/models"
	"olx-profit-bot/utils"
)

func sampleListings() []models.Listing {
	return []models.Listing{
		{Title: "iPhone 11 64gb", Price: "50 000 ₸", PriceValue: 50000},
		{Title: "iPhone 11 128gb", Price: "80 000 ₸", PriceValue: 80000},
		{Title: "iPhone 11 на запчасти", Price: "", PriceValue: 0},
	}
}

func TestAnalyzeStats(t *testing.T) {
	svc := NewProfitService(utils.NewLogger())
	stats := svc.Analyze(sampleListings())

	if stats.Mean != 65000 {
		t.Errorf("Mean: got %.2f, want 65000", stats.Mean)
	}
	if stats.Min != 50000 {
		t.Errorf("Min: got %.2f, want 50000", stats.Min)
	}
	if stats.Max != 80000 {
		t.Errorf("Max: got %.2f, want 80000", stats.Max)
	}
	if stats.Min > stats.Mean || stats.Mean > stats.Max {
		t.Errorf("expected min <= mean <= max, got %+v", stats)
	}
}

func TestAnalyzeInsufficientData(t *testing.T) {
	svc := NewProfitService(utils.NewLogger())

	tests := []struct {
		name     string
		listings []models.Listing
	}{
		{"empty", nil},
		{"single priced", []models.Listing{{PriceValue: 50000}}},
		{"all unknown", []models.Listing{{PriceValue: 0}, {PriceValue: 0}}},
	}

	for _, tt := range tests {
		stats := svc.Analyze(tt.listings)
		if !stats.Insufficient() {
			t.Errorf("%s: expected all-zero sentinel, got %+v", tt.name, stats)
		}
	}
}

func TestScoreAgainstMean(t *testing.T) {
	svc := NewProfitService(utils.NewLogger())
	stats := svc.Analyze(sampleListings())

	amount, percent := svc.Score(stats, 50000)
	if amount != 15000 {
		t.Errorf("profit for 50000: got %.2f, want 15000", amount)
	}
	if ClassifyProfit(amount) != TierFavorable {
		t.Errorf("profit 15000 should classify as favorable")
	}
	wantPercent := 15000.0 / 65000.0 * 100
	if percent != wantPercent {
		t.Errorf("percent: got %.4f, want %.4f", percent, wantPercent)
	}

	amount, _ = svc.Score(stats, 80000)
	if amount != -15000 {
		t.Errorf("profit for 80000: got %.2f, want -15000", amount)
	}
	if ClassifyProfit(amount) != TierExpensive {
		t.Errorf("profit -15000 should classify as expensive")
	}
}

func TestScoreAtMeanIsNearAverage(t *testing.T) {
	svc := NewProfitService(utils.NewLogger())
	stats := svc.Analyze(sampleListings())

	amount, percent := svc.Score(stats, stats.Mean)
	if amount != 0 || percent != 0 {
		t.Errorf("item priced at mean: got amount=%.2f percent=%.2f, want 0/0", amount, percent)
	}
	if ClassifyProfit(amount) != TierNearAverage {
		t.Errorf("zero profit should classify as near average")
	}
}

func TestClassifyProfitThreshold(t *testing.T) {
	tests := []struct {
		amount float64
		want   ProfitTier
	}{
		{ProfitThreshold, TierNearAverage}, // strict comparison at the edge
		{ProfitThreshold + 1, TierFavorable},
		{-ProfitThreshold, TierNearAverage},
		{-ProfitThreshold - 1, TierExpensive},
		{0, TierNearAverage},
	}

	for _, tt := range tests {
		if got := ClassifyProfit(tt.amount); got != tt.want {
			t.Errorf("ClassifyProfit(%.0f) = %v; want %v", tt.amount, got, tt.want)
		}
	}
}
