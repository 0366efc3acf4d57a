package services

import (
	"olx-profit-bot/models"
	"olx-profit-bot/utils"
)

// ProfitThreshold is the absolute margin (in currency units) separating a
// "near average" price from a favorable or expensive one. A fixed policy
// constant, not derived from the data distribution.
const ProfitThreshold = 1000.0

// ProfitTier classifies a listing's price relative to the result set mean.
type ProfitTier int

const (
	TierNearAverage ProfitTier = iota
	TierFavorable
	TierExpensive
)

// ProfitService computes aggregate price statistics and per-listing
// relative-profit scores over a search result set.
type ProfitService struct {
	logger *utils.Logger
}

// NewProfitService creates a ProfitService with the given logger.
func NewProfitService(logger *utils.Logger) *ProfitService {
	return &ProfitService{logger: logger}
}

// Analyze returns mean/min/max over listings with a known positive price.
// Fewer than two priced listings yield the all-zero sentinel: a single
// price gives no basis for comparison.
func (s *ProfitService) Analyze(listings []models.Listing) models.PriceStats {
	var prices []float64
	for _, l := range listings {
		if l.PriceValue > 0 {
			prices = append(prices, l.PriceValue)
		}
	}

	if len(prices) < 2 {
		return models.PriceStats{}
	}

	stats := models.PriceStats{Min: prices[0], Max: prices[0]}
	var total float64
	for _, p := range prices {
		total += p
		if p < stats.Min {
			stats.Min = p
		}
		if p > stats.Max {
			stats.Max = p
		}
	}
	stats.Mean = total / float64(len(prices))

	s.logger.Debug("[profit] analyzed %d priced of %d listings: mean=%.2f min=%.2f max=%.2f",
		len(prices), len(listings), stats.Mean, stats.Min, stats.Max)
	return stats
}

// Score returns the profit amount and percentage for one listing price.
// Positive profit means the listing is cheaper than the set's mean.
func (s *ProfitService) Score(stats models.PriceStats, price float64) (amount, percent float64) {
	amount = stats.Mean - price
	percent = amount / stats.Mean * 100
	return amount, percent
}

// ClassifyProfit maps a profit amount onto its presentation tier.
func ClassifyProfit(amount float64) ProfitTier {
	switch {
	case amount > ProfitThreshold:
		return TierFavorable
	case amount < -ProfitThreshold:
		return TierExpensive
	default:
		return TierNearAverage
	}
}
