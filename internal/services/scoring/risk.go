package scoring

import (
	"RecoPulse/internal/domain/models"

	"github.com/shopspring/decimal"
)

// AssessRisk places a ticker in a risk tier. The low-risk rule is evaluated first.
func AssessRisk(total, sentiment, macro float64) models.RiskLevel {
	if total >= 70 && sentiment >= 60 && macro >= 60 {
		return models.RiskLow
	}
	if total < 40 || sentiment < 30 || macro < 30 {
		return models.RiskHigh
	}
	return models.RiskMedium
}

// priceLadder is ordered by descending minimum score.
var priceLadder = []struct {
	min  float64
	mult string
}{
	{80, "1.15"},
	{70, "1.10"},
	{60, "1.05"},
	{40, "1.00"},
	{30, "0.95"},
}

const floorMultiplier = "0.90"

// PriceMultiplier returns the target multiplier for a total score.
func PriceMultiplier(total float64) decimal.Decimal {
	for _, step := range priceLadder {
		if total >= step.min {
			return decimal.RequireFromString(step.mult)
		}
	}
	return decimal.RequireFromString(floorMultiplier)
}

// TargetPrice scales price by the score multiplier, rounded to 2 decimals.
// It returns nil when no price is available.
func TargetPrice(price *float64, total float64) *float64 {
	if price == nil {
		return nil
	}
	v := decimal.NewFromFloat(*price).Mul(PriceMultiplier(total)).Round(2).InexactFloat64()
	return &v
}
