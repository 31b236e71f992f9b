package technical

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	domsvc "RecoPulse/internal/domain/service"
	"RecoPulse/internal/services/features"
	"RecoPulse/internal/services/scoring"
	"RecoPulse/pkg/cache"
	applogger "RecoPulse/pkg/logger"
)

// MinBars is the shortest daily history the analyzer will score.
const MinBars = 21

// ErrInsufficientData is returned when a ticker has fewer than MinBars bars.
var ErrInsufficientData = errors.New("insufficient price history")

const healthProbeTicker = "AAPL"

// Analyzer scores tickers from daily candles.
type Analyzer struct {
	source   domrepo.CandleSource
	cache    cache.Service
	ttl      time.Duration
	lookback time.Duration
	log      *applogger.Logger
}

var (
	_ domsvc.TechnicalAnalyzer = (*Analyzer)(nil)
	_ domsvc.HealthChecker     = (*Analyzer)(nil)
)

// Option configures Analyzer.
type Option func(*Analyzer)

// WithCache memoizes candle downloads for ttl.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.cache = c
		a.ttl = ttl
	}
}

// WithLookback sets how much history is requested.
func WithLookback(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.lookback = d
		}
	}
}

// WithLogger sets the analyzer logger.
func WithLogger(l *applogger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

func NewAnalyzer(source domrepo.CandleSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:   source,
		ttl:      30 * time.Minute,
		lookback: 183 * 24 * time.Hour,
		log:      applogger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Name() string { return "technical" }

// Analyze downloads history for ticker and scores its indicators.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (models.TechnicalResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	key := cache.GenerateKey("candles", ticker)
	candles, err := cache.GetOrLoad(ctx, a.cache, key, a.ttl, func(ctx context.Context) ([]models.Candle, error) {
		return a.source.DailyCandles(ctx, ticker, a.lookback)
	})
	if err != nil {
		return models.TechnicalResult{}, fmt.Errorf("technical %s: %w", ticker, err)
	}
	if len(candles) < MinBars {
		return models.TechnicalResult{}, fmt.Errorf("technical %s: %w (%d bars)", ticker, ErrInsufficientData, len(candles))
	}

	closes := features.Closes(candles)
	price := closes[len(closes)-1]
	ind := features.Indicators(candles)

	res := models.TechnicalResult{
		Score:        Score(ind, price),
		Indicators:   ind,
		Signals:      Signals(ind, price),
		CurrentPrice: ptr(scoring.Round(price, 2)),
	}
	if chg, ok := features.PercentChange(closes); ok {
		res.PriceChange = ptr(scoring.Round(chg, 2))
	}
	a.log.Debug("technical analysis done",
		applogger.String("ticker", ticker),
		applogger.Int("bars", len(candles)),
		applogger.Float("score", res.Score),
	)
	return res, nil
}

// Health probes the candle source with a liquid ticker.
func (a *Analyzer) Health(ctx context.Context) error {
	candles, err := a.source.DailyCandles(ctx, healthProbeTicker, 30*24*time.Hour)
	if err != nil {
		return err
	}
	if len(candles) == 0 {
		return fmt.Errorf("no candles for %s", healthProbeTicker)
	}
	return nil
}

// Score maps indicators to [0,100]. RSI, MACD, moving averages and Bollinger
// bands contribute at most 25, 25, 25 and 20 points.
func Score(ind *models.TechnicalIndicators, price float64) float64 {
	if ind == nil {
		return models.NeutralScore
	}
	score := 0.0
	components := 0

	if ind.RSI != nil {
		components++
		switch rsi := *ind.RSI; {
		case rsi < 30:
			score += 25
		case rsi < 50:
			score += 15
		case rsi < 70:
			score += 20
		default:
			score += 10
		}
	}

	if ind.MACD != nil && ind.MACDSignal != nil {
		components++
		diff := *ind.MACD - *ind.MACDSignal
		hist := 0.0
		if ind.MACDHistogram != nil {
			hist = *ind.MACDHistogram
		}
		switch {
		case diff > 0 && hist > 0:
			score += 25
		case diff > 0:
			score += 20
		case diff < 0 && hist < 0:
			score += 5
		default:
			score += 10
		}
	}

	above, available := 0, 0
	for _, sma := range []*float64{ind.SMA20, ind.SMA50, ind.SMA200} {
		if sma == nil {
			continue
		}
		available++
		if price > *sma {
			above++
		}
	}
	if available > 0 {
		components++
		score += float64(above) / float64(available) * 25
	}

	if ind.BollingerUpper != nil && ind.BollingerLower != nil {
		components++
		up, lo := *ind.BollingerUpper, *ind.BollingerLower
		switch mid := (up + lo) / 2; {
		case price < lo:
			score += 20
		case price > up:
			score += 5
		case price > mid:
			score += 15
		default:
			score += 10
		}
	}

	if components == 0 {
		return models.NeutralScore
	}
	if score > 100 {
		score = 100
	}
	return scoring.Round(score, 2)
}

// Signals derives discrete readings from the indicators.
func Signals(ind *models.TechnicalIndicators, price float64) *models.TechnicalSignals {
	s := &models.TechnicalSignals{}
	if ind == nil {
		return s
	}
	if ind.RSI != nil {
		switch {
		case *ind.RSI < 30:
			s.RSI = models.SignalOversold
		case *ind.RSI > 70:
			s.RSI = models.SignalOverbought
		default:
			s.RSI = models.SignalNeutral
		}
	}
	if ind.MACD != nil && ind.MACDSignal != nil {
		if *ind.MACD > *ind.MACDSignal {
			s.MACD = models.SignalBullish
		} else {
			s.MACD = models.SignalBearish
		}
	}
	if ind.SMA20 != nil && ind.SMA50 != nil {
		sma20, sma50 := *ind.SMA20, *ind.SMA50
		switch {
		case price > sma20 && sma20 > sma50:
			s.Trend = models.TrendUp
		case price < sma20 && sma20 < sma50:
			s.Trend = models.TrendDown
		default:
			s.Trend = models.TrendSideways
		}
	}
	return s
}

func ptr(v float64) *float64 { return &v }
