package technical

import (
	"context"
	"errors"
	"testing"
	"time"

	"RecoPulse/internal/domain/models"
	"RecoPulse/pkg/cache"
)

type fakeSource struct {
	candles []models.Candle
	err     error
	calls   int
}

func (f *fakeSource) DailyCandles(_ context.Context, symbol string, _ time.Duration) ([]models.Candle, error) {
	f.calls++
	return f.candles, f.err
}

func series(closes ...float64) []models.Candle {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Bucket: start.AddDate(0, 0, i), Symbol: "YPF", Close: c, Volume: 100}
	}
	return out
}

func rising(n int) []models.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
		if i%4 == 3 {
			closes[i] -= 0.5
		}
	}
	return series(closes...)
}

func f(v float64) *float64 { return &v }

func TestScoreRules(t *testing.T) {
	cases := []struct {
		name  string
		ind   *models.TechnicalIndicators
		price float64
		want  float64
	}{
		{"nothing", &models.TechnicalIndicators{}, 10, 50},
		{"nil", nil, 10, 50},
		{"oversold only", &models.TechnicalIndicators{RSI: f(25)}, 10, 25},
		{"overbought only", &models.TechnicalIndicators{RSI: f(75)}, 10, 10},
		{
			"all bullish",
			&models.TechnicalIndicators{
				RSI: f(55), MACD: f(1), MACDSignal: f(0.5), MACDHistogram: f(0.5),
				SMA20: f(9), SMA50: f(8), SMA200: f(7),
				BollingerUpper: f(12), BollingerLower: f(8),
			},
			11, 20 + 25 + 25 + 15,
		},
		{
			"bearish mixed",
			&models.TechnicalIndicators{
				RSI: f(45), MACD: f(-1), MACDSignal: f(0), MACDHistogram: f(-1),
				SMA20: f(9), SMA50: f(11),
				BollingerUpper: f(12), BollingerLower: f(10.5),
			},
			10, 15 + 5 + 12.5 + 20,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.ind, tc.price); got != tc.want {
				t.Fatalf("score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSignals(t *testing.T) {
	s := Signals(&models.TechnicalIndicators{RSI: f(20), MACD: f(1), MACDSignal: f(2), SMA20: f(10), SMA50: f(9)}, 11)
	if s.RSI != models.SignalOversold || s.MACD != models.SignalBearish || s.Trend != models.TrendUp {
		t.Fatalf("unexpected signals %+v", s)
	}
	s = Signals(&models.TechnicalIndicators{RSI: f(80), SMA20: f(10), SMA50: f(11)}, 9)
	if s.RSI != models.SignalOverbought || s.Trend != models.TrendDown || s.MACD != "" {
		t.Fatalf("unexpected signals %+v", s)
	}
	s = Signals(&models.TechnicalIndicators{RSI: f(50), SMA20: f(10), SMA50: f(11)}, 12)
	if s.RSI != models.SignalNeutral || s.Trend != models.TrendSideways {
		t.Fatalf("unexpected signals %+v", s)
	}
}

func TestAnalyzeProducesResult(t *testing.T) {
	src := &fakeSource{candles: rising(60)}
	a := NewAnalyzer(src)

	res, err := a.Analyze(context.Background(), "ypf")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Score < 0 || res.Score > 100 {
		t.Fatalf("score out of range: %v", res.Score)
	}
	if res.CurrentPrice == nil || *res.CurrentPrice != 158.5 {
		t.Fatalf("unexpected current price %v", res.CurrentPrice)
	}
	if res.PriceChange == nil {
		t.Fatalf("expected price change")
	}
	if res.Signals == nil || res.Signals.MACD != models.SignalBullish {
		t.Fatalf("rising series should be MACD bullish: %+v", res.Signals)
	}
	if res.Indicators.SMA50 == nil || res.Indicators.SMA200 != nil {
		t.Fatalf("unexpected SMA availability %+v", res.Indicators)
	}
}

func TestAnalyzeInsufficientData(t *testing.T) {
	a := NewAnalyzer(&fakeSource{candles: rising(MinBars - 1)})
	if _, err := a.Analyze(context.Background(), "YPF"); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestAnalyzeSourceError(t *testing.T) {
	boom := errors.New("yahoo down")
	a := NewAnalyzer(&fakeSource{err: boom})
	if _, err := a.Analyze(context.Background(), "YPF"); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	src := &fakeSource{candles: rising(40)}
	a := NewAnalyzer(src, WithCache(mc, time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := a.Analyze(context.Background(), "GGAL"); err != nil {
			t.Fatalf("analyze: %v", err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected one download, got %d", src.calls)
	}
}
