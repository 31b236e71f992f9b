package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	applogger "RecoPulse/pkg/logger"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// minYahooBars is the shortest history accepted from a symbol variant before
// trying the next one.
const minYahooBars = 21

// ExchangeSuffixes are tried in order after the bare ticker; Argentine
// listings live on .BA and some ADRs on .MX.
var ExchangeSuffixes = []string{"", ".BA", ".MX"}

type barFetcher func(params *chart.Params) ([]models.Candle, error)

// YahooCandleSource downloads daily bars from Yahoo Finance.
type YahooCandleSource struct {
	fetch  barFetcher
	writer domrepo.CandleWriter
	l      *applogger.Logger
}

var _ domrepo.CandleSource = (*YahooCandleSource)(nil)

func NewYahooCandleSource(l *applogger.Logger) *YahooCandleSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &YahooCandleSource{fetch: fetchChart, l: l}
}

// WithWriter persists every successful download, e.g. into ClickHouse.
func (s *YahooCandleSource) WithWriter(w domrepo.CandleWriter) *YahooCandleSource {
	s.writer = w
	return s
}

func (s *YahooCandleSource) DailyCandles(ctx context.Context, symbol string, lookback time.Duration) ([]models.Candle, error) {
	symbol = strings.ToUpper(symbol)
	end := time.Now().UTC()
	start := end.Add(-lookback)

	var lastErr error
	for _, suffix := range ExchangeSuffixes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		variant := symbol + suffix
		bars, err := s.fetch(&chart.Params{
			Symbol:   variant,
			Interval: datetime.OneDay,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
		})
		if err != nil {
			lastErr = err
			s.l.Debug("yahoo variant failed", applogger.String("symbol", variant), applogger.Error(err))
			continue
		}
		if len(bars) < minYahooBars {
			continue
		}
		for i := range bars {
			bars[i].Symbol = symbol
		}
		s.l.Debug("yahoo candles loaded",
			applogger.String("symbol", symbol),
			applogger.String("variant", variant),
			applogger.Int("bars", len(bars)),
		)
		if s.writer != nil {
			if err := s.writer.SaveCandles(ctx, bars); err != nil {
				s.l.Warn("persist candles failed", applogger.String("symbol", symbol), applogger.Error(err))
			}
		}
		return bars, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, lastErr)
	}
	return nil, fmt.Errorf("yahoo %s: no variant with %d bars", symbol, minYahooBars)
}

func fetchChart(params *chart.Params) ([]models.Candle, error) {
	iter := chart.Get(params)
	out := make([]models.Candle, 0, 128)
	for iter.Next() {
		b := iter.Bar()
		cl, _ := b.Close.Float64()
		if cl <= 0 {
			continue
		}
		op, _ := b.Open.Float64()
		hi, _ := b.High.Float64()
		lo, _ := b.Low.Float64()
		out = append(out, models.Candle{
			Bucket: time.Unix(int64(b.Timestamp), 0).UTC(),
			Symbol: params.Symbol,
			Open:   op,
			High:   hi,
			Low:    lo,
			Close:  cl,
			Volume: float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
