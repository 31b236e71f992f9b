package repository

import (
	"context"

	"RecoPulse/internal/domain/models"
)

// RecommendationPublisher ships completed runs to downstream consumers.
type RecommendationPublisher interface {
	Publish(ctx context.Context, run *models.RecommendationRun) error
	Close() error
}

type Metrics interface {
	RecordSourceError(source string)
	RecordRecommendation(action string)
	RecordTickerScore(ticker string, score float64)
	RecordLatency(op string, seconds float64)
}
