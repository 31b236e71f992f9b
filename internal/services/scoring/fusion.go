// Package scoring holds the pure functions that turn four sub-scores into a
// recommendation: fusion, classification, confidence, risk and target price.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"RecoPulse/internal/domain/models"

	"github.com/shopspring/decimal"
)

var ErrInvalidSubScore = errors.New("sub-score is not a finite number")

// Fuse returns the weighted sum of the four sub-scores. The result is not re-clamped.
func Fuse(w models.Weights, s models.SubScores) float64 {
	return s.Technical*w.Technical +
		s.Fundamental*w.Fundamental +
		s.Macro*w.Macro +
		s.Sentiment*w.Sentiment
}

// ClampScore bounds v to [0,100]. NaN is rejected.
func ClampScore(v float64) (float64, error) {
	if math.IsNaN(v) {
		return 0, ErrInvalidSubScore
	}
	return math.Max(0, math.Min(100, v)), nil
}

// CheckSubScores rejects NaN or out-of-range inputs.
func CheckSubScores(s models.SubScores) error {
	for name, v := range map[string]float64{
		"technical":   s.Technical,
		"fundamental": s.Fundamental,
		"macro":       s.Macro,
		"sentiment":   s.Sentiment,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: %w", name, ErrInvalidSubScore)
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("%s sub-score %v outside [0,100]", name, v)
		}
	}
	return nil
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
