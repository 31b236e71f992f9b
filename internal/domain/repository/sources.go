package repository

import (
	"context"
	"time"

	"RecoPulse/internal/domain/models"
)

// CandleSource provides read-only access to daily bars for technical analysis.
type CandleSource interface {
	// DailyCandles returns up to lookback bars ending today, oldest first.
	DailyCandles(ctx context.Context, symbol string, lookback time.Duration) ([]models.Candle, error)
}

// FundamentalsSource provides reported ratios and company profile data.
type FundamentalsSource interface {
	Ratios(ctx context.Context, ticker string) (*models.FundamentalRatios, error)
	Profile(ctx context.Context, ticker string) (*models.CompanyProfile, error)
}

// NewsSource searches recent news articles.
type NewsSource interface {
	Search(ctx context.Context, query string, max int, since time.Time) ([]models.NewsArticle, error)
}

// MacroSource returns the latest country-level indicators.
type MacroSource interface {
	Indicators(ctx context.Context) (models.MacroIndicators, error)
}

// CandleWriter persists daily bars fetched from an upstream provider.
type CandleWriter interface {
	SaveCandles(ctx context.Context, candles []models.Candle) error
}
