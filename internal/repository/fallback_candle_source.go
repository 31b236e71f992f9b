package repository

import (
	"context"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	applogger "RecoPulse/pkg/logger"
)

// FallbackCandleSource reads from a primary store and falls back to an
// upstream provider when the store has too little history.
type FallbackCandleSource struct {
	primary   domrepo.CandleSource
	secondary domrepo.CandleSource
	minBars   int
	l         *applogger.Logger
}

var _ domrepo.CandleSource = (*FallbackCandleSource)(nil)

func NewFallbackCandleSource(primary, secondary domrepo.CandleSource, minBars int, l *applogger.Logger) *FallbackCandleSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &FallbackCandleSource{primary: primary, secondary: secondary, minBars: minBars, l: l}
}

func (s *FallbackCandleSource) DailyCandles(ctx context.Context, symbol string, lookback time.Duration) ([]models.Candle, error) {
	bars, err := s.primary.DailyCandles(ctx, symbol, lookback)
	if err == nil && len(bars) >= s.minBars {
		return bars, nil
	}
	if err != nil {
		s.l.Warn("primary candle source failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	return s.secondary.DailyCandles(ctx, symbol, lookback)
}
