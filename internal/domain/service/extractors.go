package service

import (
	"context"

	"RecoPulse/internal/domain/models"
)

// TechnicalAnalyzer scores a ticker from its price history.
type TechnicalAnalyzer interface {
	Analyze(ctx context.Context, ticker string) (models.TechnicalResult, error)
}

// FundamentalAnalyzer scores a ticker from its financial ratios.
type FundamentalAnalyzer interface {
	Analyze(ctx context.Context, ticker string) (models.FundamentalResult, error)
	// Covers reports whether the fundamental data source tracks ticker.
	Covers(ticker string) bool
}

// SentimentAnalyzer scores a ticker from recent news.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, ticker string) (models.SentimentResult, error)
}

// MacroAnalyzer builds the country-level context shared by a run.
type MacroAnalyzer interface {
	Context(ctx context.Context) (models.MacroContext, error)
}

// SentimentClassifier labels a piece of text.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (models.Classification, error)
}

// HealthChecker is implemented by analyzers that can probe their upstream.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) error
}
