package macro

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	"RecoPulse/internal/services/provider"
	applogger "RecoPulse/pkg/logger"
	"RecoPulse/pkg/util"
)

// ErrNoObservations is returned when a series has no data in the window.
var ErrNoObservations = errors.New("no observations")

// Series maps each indicator to its BCRA variable id. Zero disables a series.
type Series struct {
	CER         int
	USDOfficial int
	Inflation   int
	CountryRisk int
}

type bcraResponse struct {
	Status  int `json:"status"`
	Results []struct {
		Fecha string  `json:"fecha"`
		Valor float64 `json:"valor"`
	} `json:"results"`
}

// BCRAClient reads the latest value of each configured series from the
// central bank statistics API.
type BCRAClient struct {
	base    *provider.HTTPServiceBase
	series  Series
	retries int
	window  time.Duration
	now     func() time.Time
	log     *applogger.Logger
}

var _ domrepo.MacroSource = (*BCRAClient)(nil)

func NewBCRAClient(base *provider.HTTPServiceBase, series Series, retries int, l *applogger.Logger) *BCRAClient {
	if l == nil {
		l = applogger.Nop()
	}
	return &BCRAClient{
		base:    base,
		series:  series,
		retries: retries,
		window:  60 * 24 * time.Hour,
		now:     time.Now,
		log:     l,
	}
}

// Indicators fetches every enabled series concurrently. A failing series is
// left nil; the caller decides what to do when all of them are missing.
func (c *BCRAClient) Indicators(ctx context.Context) (models.MacroIndicators, error) {
	type item struct {
		name string
		id   int
		dst  **float64
	}
	var out models.MacroIndicators
	items := []item{
		{"cer", c.series.CER, &out.CER},
		{"usd_official", c.series.USDOfficial, &out.USDOfficial},
		{"inflation", c.series.Inflation, &out.Inflation},
		{"country_risk", c.series.CountryRisk, &out.CountryRisk},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, it := range items {
		if it.id <= 0 {
			continue
		}
		wg.Add(1)
		go func(it item) {
			defer wg.Done()
			v, err := c.latest(ctx, it.id)
			if err != nil {
				c.log.Warn("bcra series unavailable",
					applogger.String("series", it.name),
					applogger.Int("id", it.id),
					applogger.Error(err),
				)
				return
			}
			mu.Lock()
			*it.dst = &v
			mu.Unlock()
		}(it)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return models.MacroIndicators{}, err
	}
	return out, nil
}

func (c *BCRAClient) latest(ctx context.Context, id int) (float64, error) {
	to := c.now()
	from := to.Add(-c.window)
	path := fmt.Sprintf("/DatosVariable/%d/%s/%s", id, from.Format("2006-01-02"), to.Format("2006-01-02"))

	var resp bcraResponse
	if err := c.base.GetJSONWithRetry(ctx, path, nil, &resp, c.retries+1); err != nil {
		return 0, err
	}

	var (
		best  time.Time
		value float64
		found bool
	)
	for _, r := range resp.Results {
		ts, ok := util.ParseTime(r.Fecha)
		if !ok {
			continue
		}
		if !found || ts.After(best) {
			best, value, found = ts, r.Valor, true
		}
	}
	if !found {
		return 0, fmt.Errorf("series %d: %w", id, ErrNoObservations)
	}
	return value, nil
}
