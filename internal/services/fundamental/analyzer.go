package fundamental

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	domsvc "RecoPulse/internal/domain/service"
	"RecoPulse/pkg/cache"
	applogger "RecoPulse/pkg/logger"
)

const healthProbeTicker = "AAPL"

// Analyzer scores covered tickers from FMP ratios.
type Analyzer struct {
	source    domrepo.FundamentalsSource
	supported map[string]struct{}
	cache     cache.Service
	ttl       time.Duration
	log       *applogger.Logger
}

var (
	_ domsvc.FundamentalAnalyzer = (*Analyzer)(nil)
	_ domsvc.HealthChecker       = (*Analyzer)(nil)
)

func NewAnalyzer(source domrepo.FundamentalsSource, supported []string, c cache.Service, ttl time.Duration, l *applogger.Logger) *Analyzer {
	if l == nil {
		l = applogger.Nop()
	}
	set := make(map[string]struct{}, len(supported))
	for _, t := range supported {
		set[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}
	return &Analyzer{source: source, supported: set, cache: c, ttl: ttl, log: l}
}

func (a *Analyzer) Name() string { return "fundamental" }

// Covers reports whether ticker is in the supported list.
func (a *Analyzer) Covers(ticker string) bool {
	_, ok := a.supported[strings.ToUpper(ticker)]
	return ok
}

// Analyze fetches ratios and profile concurrently. Uncovered tickers get the
// neutral score without touching the upstream. A missing profile is not fatal.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (models.FundamentalResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !a.Covers(ticker) {
		return models.FundamentalResult{Score: models.NeutralScore, Supported: false}, nil
	}

	var (
		wg                 sync.WaitGroup
		ratios             *models.FundamentalRatios
		profile            *models.CompanyProfile
		ratiosErr, profErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ratios, ratiosErr = cache.GetOrLoad(ctx, a.cache, cache.GenerateKey("ratios", ticker), a.ttl,
			func(ctx context.Context) (*models.FundamentalRatios, error) { return a.source.Ratios(ctx, ticker) })
	}()
	go func() {
		defer wg.Done()
		profile, profErr = cache.GetOrLoad(ctx, a.cache, cache.GenerateKey("profile", ticker), a.ttl,
			func(ctx context.Context) (*models.CompanyProfile, error) { return a.source.Profile(ctx, ticker) })
	}()
	wg.Wait()

	if profErr != nil {
		a.log.Warn("fundamental profile unavailable", applogger.String("ticker", ticker), applogger.Error(profErr))
		profile = nil
	}
	if ratiosErr != nil {
		return models.FundamentalResult{}, fmt.Errorf("fundamental %s: %w", ticker, ratiosErr)
	}

	return models.FundamentalResult{
		Score:     Score(ratios),
		Supported: true,
		Ratios:    ratios,
		Profile:   profile,
	}, nil
}

// Health probes the profile endpoint.
func (a *Analyzer) Health(ctx context.Context) error {
	_, err := a.source.Profile(ctx, healthProbeTicker)
	return err
}

// Score rates return on equity, leverage and liquidity for up to 40, 30 and 30
// points, plus small bonuses for a moderate P/E and a healthy gross margin.
func Score(r *models.FundamentalRatios) float64 {
	if r == nil {
		return models.NeutralScore
	}
	score := 0.0

	if r.ROE != nil {
		switch roe := *r.ROE; {
		case roe > 15:
			score += 40
		case roe > 10:
			score += 30
		case roe > 5:
			score += 20
		case roe > 0:
			score += 10
		}
	} else {
		score += 20
	}

	if r.DebtToEquity != nil {
		switch de := *r.DebtToEquity; {
		case de < 0.5:
			score += 30
		case de < 1.0:
			score += 25
		case de < 1.5:
			score += 15
		case de < 2.0:
			score += 5
		}
	} else {
		score += 15
	}

	if r.CurrentRatio != nil {
		switch cr := *r.CurrentRatio; {
		case cr > 2.0:
			score += 30
		case cr > 1.5:
			score += 25
		case cr > 1.2:
			score += 20
		case cr > 1.0:
			score += 10
		}
	} else {
		score += 15
	}

	if r.PERatio != nil && *r.PERatio > 5 && *r.PERatio < 20 {
		score += 5
	}
	if r.GrossMargin != nil && *r.GrossMargin > 0.3 {
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return score
}
