package macro

import (
	"context"
	"strings"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	domsvc "RecoPulse/internal/domain/service"
	"RecoPulse/pkg/cache"
	applogger "RecoPulse/pkg/logger"
)

const indicatorsKey = "macro:indicators"

// MockIndicators is served when no series could be fetched at all.
var MockIndicators = models.MacroIndicators{
	CER:         ptr(1200),
	USDOfficial: ptr(850),
	Inflation:   ptr(12.5),
	CountryRisk: ptr(1500),
}

// MockScore is the stability score paired with MockIndicators.
const MockScore = 35.0

// Analyzer turns country indicators into the shared macro context.
type Analyzer struct {
	source domrepo.MacroSource
	cache  cache.Service
	ttl    time.Duration
	now    func() time.Time
	log    *applogger.Logger
}

var (
	_ domsvc.MacroAnalyzer = (*Analyzer)(nil)
	_ domsvc.HealthChecker = (*Analyzer)(nil)
)

func NewAnalyzer(source domrepo.MacroSource, c cache.Service, ttl time.Duration, l *applogger.Logger) *Analyzer {
	if l == nil {
		l = applogger.Nop()
	}
	return &Analyzer{source: source, cache: c, ttl: ttl, now: time.Now, log: l}
}

func (a *Analyzer) Name() string { return "macro" }

// Context builds the macro context. It falls back to the mock indicators when
// the upstream has nothing, and only fails when ctx is done.
func (a *Analyzer) Context(ctx context.Context) (models.MacroContext, error) {
	ind, err := cache.GetOrLoad(ctx, a.cache, indicatorsKey, a.ttl, a.load)
	if err != nil {
		if ctx.Err() != nil {
			return models.MacroContext{}, ctx.Err()
		}
		a.log.Warn("macro indicators unavailable, using mock data", applogger.Error(err))
		ind = models.MacroIndicators{}
	}

	mc := models.MacroContext{UpdatedAt: a.now().UTC()}
	if ind.Empty() {
		mc.Indicators = MockIndicators
		mc.Score = MockScore
		mc.Mock = true
	} else {
		mc.Indicators = ind
		mc.Score = StabilityScore(ind)
	}
	mc.Interpretation = Interpretation(mc.Indicators, mc.Score)
	mc.Trends = Trends(mc.Indicators)
	mc.MarketImpact = MarketImpact(mc.Score)
	return mc, nil
}

// load never caches an empty reading so the next run retries the upstream.
func (a *Analyzer) load(ctx context.Context) (models.MacroIndicators, error) {
	ind, err := a.source.Indicators(ctx)
	if err != nil {
		return ind, err
	}
	if ind.Empty() {
		return ind, ErrNoObservations
	}
	return ind, nil
}

// Health reports whether at least one series is reachable.
func (a *Analyzer) Health(ctx context.Context) error {
	_, err := a.load(ctx)
	return err
}

// StabilityScore starts at 50 and adds points for a contained exchange rate,
// low inflation, low country risk and an available CER.
func StabilityScore(ind models.MacroIndicators) float64 {
	score := 50.0

	if ind.USDOfficial != nil {
		switch usd := *ind.USDOfficial; {
		case usd < 300:
			score += 15
		case usd < 500:
			score += 20
		case usd < 800:
			score += 10
		case usd < 1200:
			score += 5
		}
	}

	if ind.Inflation != nil {
		switch inf := *ind.Inflation; {
		case inf < 2:
			score += 35
		case inf < 5:
			score += 25
		case inf < 10:
			score += 15
		case inf < 20:
			score += 5
		}
	}

	if ind.CountryRisk != nil {
		switch risk := *ind.CountryRisk; {
		case risk < 500:
			score += 25
		case risk < 1000:
			score += 20
		case risk < 1500:
			score += 10
		case risk < 2000:
			score += 5
		}
	}

	if ind.CER != nil && *ind.CER > 0 {
		score += 10
	}

	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// Interpretation renders a short reading of the indicators and score.
func Interpretation(ind models.MacroIndicators, score float64) string {
	var parts []string

	if ind.USDOfficial != nil {
		switch usd := *ind.USDOfficial; {
		case usd > 1000:
			parts = append(parts, "Elevated exchange rate, inflationary pressure")
		case usd < 500:
			parts = append(parts, "Controlled exchange rate")
		default:
			parts = append(parts, "Exchange rate in a moderate range")
		}
	}

	if ind.Inflation != nil {
		switch inf := *ind.Inflation; {
		case inf > 15:
			parts = append(parts, "Very high inflation, negative impact on investment")
		case inf > 5:
			parts = append(parts, "Moderate to high inflation")
		default:
			parts = append(parts, "Inflation under control")
		}
	}

	if ind.CountryRisk != nil {
		switch risk := *ind.CountryRisk; {
		case risk > 1500:
			parts = append(parts, "Elevated country risk, caution advised")
		case risk < 800:
			parts = append(parts, "Moderate country risk")
		default:
			parts = append(parts, "Country risk at high levels")
		}
	}

	switch {
	case score > 70:
		parts = append(parts, "Favorable macro context for investment")
	case score < 40:
		parts = append(parts, "Challenging macro context")
	default:
		parts = append(parts, "Mixed macro context")
	}

	return strings.Join(parts, ". ")
}

// Trends classifies each indicator against its expected range.
func Trends(ind models.MacroIndicators) map[string]string {
	trends := make(map[string]string, 3)
	if ind.USDOfficial != nil {
		trends["usd"] = band(*ind.USDOfficial, 900, 600)
	}
	if ind.Inflation != nil {
		trends["inflation"] = band(*ind.Inflation, 10, 3)
	}
	if ind.CountryRisk != nil {
		trends["risk"] = band(*ind.CountryRisk, 1200, 800)
	}
	return trends
}

func band(v, rising, falling float64) string {
	switch {
	case v > rising:
		return models.TrendRising
	case v < falling:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

// MarketImpact maps the stability score to a stock market impact.
func MarketImpact(score float64) string {
	switch {
	case score > 70:
		return models.ImpactPositive
	case score < 40:
		return models.ImpactNegative
	default:
		return models.ImpactNeutral
	}
}

func ptr(v float64) *float64 { return &v }
