package features

import (
	"math"
	"testing"
	"time"

	"RecoPulse/internal/domain/models"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSMAAndStdDev(t *testing.T) {
	v := []float64{1, 2, 3, 4, 5}
	if m, ok := SMA(v, 3); !ok || !almost(m, 4) {
		t.Fatalf("sma: got %v %v", m, ok)
	}
	if _, ok := SMA(v, 6); ok {
		t.Fatalf("sma should need a full window")
	}
	if sd, ok := StdDev(v, 5); !ok || !almost(sd, math.Sqrt(2.5)) {
		t.Fatalf("stddev: got %v", sd)
	}
}

func TestEMASeriesAdjusted(t *testing.T) {
	// span 3 => alpha 0.5; second point = (2 + 0.5*1) / 1.5
	got := EMASeries([]float64{1, 2}, 3)
	if !almost(got[0], 1) || !almost(got[1], 2.5/1.5) {
		t.Fatalf("unexpected ema %v", got)
	}
	flat := EMASeries([]float64{7, 7, 7, 7}, 5)
	for _, v := range flat {
		if !almost(v, 7) {
			t.Fatalf("flat series ema must stay flat, got %v", flat)
		}
	}
}

func TestRSI(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(i + 1)
	}
	if v, ok := RSI(up, 14); !ok || v != 100 {
		t.Fatalf("monotonic rise should give RSI 100, got %v %v", v, ok)
	}

	// alternating +2 / -1 over 14 changes: gains 7*2, losses 7*1 => rs 2 => 66.67
	closes := []float64{10}
	for i := 0; i < 14; i++ {
		if i%2 == 0 {
			closes = append(closes, closes[len(closes)-1]+2)
		} else {
			closes = append(closes, closes[len(closes)-1]-1)
		}
	}
	if v, ok := RSI(closes, 14); !ok || !almost(v, 100-100.0/3) {
		t.Fatalf("unexpected rsi %v", v)
	}

	if _, ok := RSI([]float64{5, 5, 5, 5}, 3); ok {
		t.Fatalf("flat series has no RSI")
	}
	if _, ok := RSI(closes[:10], 14); ok {
		t.Fatalf("short series has no RSI")
	}
}

func TestMACDDirection(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	m, ok := MACD(closes, 12, 26, 9)
	if !ok {
		t.Fatalf("expected macd")
	}
	if m.MACD <= 0 || m.MACD <= m.Signal || m.Histogram <= 0 {
		t.Fatalf("rising series should be bullish: %+v", m)
	}
}

func TestBollinger(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 10
	}
	up, lo, ok := Bollinger(closes, 20, 2)
	if !ok || up != 10 || lo != 10 {
		t.Fatalf("flat bands should collapse: %v %v", up, lo)
	}
}

func TestIndicatorsCompleteness(t *testing.T) {
	candles := make([]models.Candle, 30)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = models.Candle{
			Bucket: start.AddDate(0, 0, i),
			Close:  100 + float64(i%5),
			Volume: 1000,
		}
	}
	ind := Indicators(candles)
	if ind.RSI == nil || ind.MACD == nil || ind.SMA20 == nil || ind.BollingerUpper == nil || ind.VolumeSMA == nil {
		t.Fatalf("expected short-window indicators: %+v", ind)
	}
	if ind.SMA50 != nil || ind.SMA200 != nil {
		t.Fatalf("long SMAs must be nil with 30 bars")
	}
	if got := ind.Completeness(); !almost(got, 0.8) {
		t.Fatalf("expected completeness 0.8, got %v", got)
	}
}

func TestPercentChange(t *testing.T) {
	if v, ok := PercentChange([]float64{100, 105}); !ok || !almost(v, 5) {
		t.Fatalf("got %v", v)
	}
	if _, ok := PercentChange([]float64{1}); ok {
		t.Fatalf("single value has no change")
	}
}
