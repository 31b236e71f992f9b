package scoring

import "math"

const (
	MinConfidence = 20.0
	MaxConfidence = 95.0

	technicalShare   = 0.4
	fundamentalShare = 0.3
	sentimentShare   = 0.1
	macroShare       = 0.1

	coveredFundamental   = 80.0
	uncoveredFundamental = 50.0
	macroBaseline        = 75.0

	errorPenalty = 0.8

	// DefaultSentimentConfidence is used when the classifier reported nothing.
	DefaultSentimentConfidence = 0.5
)

// ConfidenceInputs are the data-completeness signals of one ticker.
type ConfidenceInputs struct {
	// IndicatorCompleteness is the fraction of non-null technical indicators, 0..1.
	IndicatorCompleteness float64
	FundamentalCovered    bool
	// SentimentConfidence is the classifier's mean confidence, 0..1.
	SentimentConfidence float64
	// HadError is set when any of the four analyses reported an error.
	HadError bool
}

// EstimateConfidence returns a confidence in [MinConfidence, MaxConfidence].
func EstimateConfidence(in ConfidenceInputs) float64 {
	total := unit(in.IndicatorCompleteness) * 100 * technicalShare

	if in.FundamentalCovered {
		total += coveredFundamental * fundamentalShare
	} else {
		total += uncoveredFundamental * fundamentalShare
	}

	total += unit(in.SentimentConfidence) * 100 * sentimentShare
	total += macroBaseline * macroShare

	if in.HadError {
		total *= errorPenalty
	}

	return math.Max(MinConfidence, math.Min(MaxConfidence, total))
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
