// Package features computes technical indicators over daily close series.
// Every function reads the series oldest first and reports ok=false when the
// history is too short for the requested window.
package features

import (
	"math"

	"RecoPulse/internal/domain/models"
)

// Closes extracts close prices from candles.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts volumes from candles.
func Volumes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// SMA returns the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// StdDev returns the sample standard deviation of the last period values.
func StdDev(values []float64, period int) (float64, bool) {
	if period <= 1 || len(values) < period {
		return 0, false
	}
	mean, _ := SMA(values, period)
	ss := 0.0
	for _, v := range values[len(values)-period:] {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(period-1)), true
}

// EMASeries returns the span-weighted exponential moving average at every point.
// Weights are normalized over the observed history (adjusted form), so early
// values are not biased toward the first observation.
func EMASeries(values []float64, span int) []float64 {
	if span <= 0 || len(values) == 0 {
		return nil
	}
	alpha := 2 / (float64(span) + 1)
	decay := 1 - alpha
	out := make([]float64, len(values))
	num, den := 0.0, 0.0
	for i, v := range values {
		num = v + decay*num
		den = 1 + decay*den
		out[i] = num / den
	}
	return out
}

// RSI returns the relative strength index using simple averages of gains and
// losses over the last period price changes. Flat series have no RSI.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	gain /= float64(period)
	loss /= float64(period)
	switch {
	case gain == 0 && loss == 0:
		return 0, false
	case loss == 0:
		return 100, true
	}
	rs := gain / loss
	return 100 - 100/(1+rs), true
}

// MACDResult holds the latest MACD line, signal line and histogram.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD computes the fast/slow EMA difference and its signal EMA.
func MACD(closes []float64, fast, slow, signal int) (MACDResult, bool) {
	if fast <= 0 || slow <= fast || signal <= 0 || len(closes) < 2 {
		return MACDResult{}, false
	}
	f := EMASeries(closes, fast)
	s := EMASeries(closes, slow)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = f[i] - s[i]
	}
	sig := EMASeries(line, signal)
	last := len(line) - 1
	return MACDResult{
		MACD:      line[last],
		Signal:    sig[last],
		Histogram: line[last] - sig[last],
	}, true
}

// Bollinger returns the upper and lower bands at k standard deviations.
func Bollinger(closes []float64, period int, k float64) (upper, lower float64, ok bool) {
	mid, ok := SMA(closes, period)
	if !ok {
		return 0, 0, false
	}
	sd, ok := StdDev(closes, period)
	if !ok {
		return 0, 0, false
	}
	return mid + k*sd, mid - k*sd, true
}

// PercentChange returns the change of the last value against the previous one, in percent.
func PercentChange(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	prev := values[len(values)-2]
	if prev == 0 {
		return 0, false
	}
	return (values[len(values)-1] - prev) / prev * 100, true
}

// Indicators computes the full indicator set used by technical scoring.
func Indicators(candles []models.Candle) *models.TechnicalIndicators {
	closes := Closes(candles)
	out := &models.TechnicalIndicators{}

	if v, ok := RSI(closes, 14); ok {
		out.RSI = ptr(v)
	}
	if m, ok := MACD(closes, 12, 26, 9); ok {
		out.MACD = ptr(m.MACD)
		out.MACDSignal = ptr(m.Signal)
		out.MACDHistogram = ptr(m.Histogram)
	}
	if v, ok := SMA(closes, 20); ok {
		out.SMA20 = ptr(v)
	}
	if v, ok := SMA(closes, 50); ok {
		out.SMA50 = ptr(v)
	}
	if v, ok := SMA(closes, 200); ok {
		out.SMA200 = ptr(v)
	}
	if up, lo, ok := Bollinger(closes, 20, 2); ok {
		out.BollingerUpper = ptr(up)
		out.BollingerLower = ptr(lo)
	}
	if v, ok := SMA(Volumes(candles), 20); ok {
		out.VolumeSMA = ptr(v)
	}
	return out
}

func ptr(v float64) *float64 { return &v }
