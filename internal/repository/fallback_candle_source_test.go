package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"RecoPulse/internal/domain/models"
)

type staticSource struct {
	bars  []models.Candle
	err   error
	calls int
}

func (s *staticSource) DailyCandles(context.Context, string, time.Duration) ([]models.Candle, error) {
	s.calls++
	return s.bars, s.err
}

func TestFallbackCandleSource(t *testing.T) {
	ctx := context.Background()

	primary := &staticSource{bars: bars(30)}
	secondary := &staticSource{bars: bars(40)}
	got, _ := NewFallbackCandleSource(primary, secondary, 21, nil).DailyCandles(ctx, "YPF", time.Hour)
	if len(got) != 30 || secondary.calls != 0 {
		t.Fatalf("primary with enough history should be used")
	}

	primary = &staticSource{bars: bars(3)}
	got, _ = NewFallbackCandleSource(primary, secondary, 21, nil).DailyCandles(ctx, "YPF", time.Hour)
	if len(got) != 40 {
		t.Fatalf("short primary should fall back, got %d", len(got))
	}

	primary = &staticSource{err: errors.New("clickhouse down")}
	got, _ = NewFallbackCandleSource(primary, secondary, 21, nil).DailyCandles(ctx, "YPF", time.Hour)
	if len(got) != 40 {
		t.Fatalf("failing primary should fall back, got %d", len(got))
	}
}
