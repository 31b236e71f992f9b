package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	domsvc "RecoPulse/internal/domain/service"
	"RecoPulse/internal/services/scoring"
	applogger "RecoPulse/pkg/logger"

	"github.com/google/uuid"
)

const (
	DefaultBatchSize = 3

	neutralConfidence  = 30.0
	healthCheckTimeout = 10 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

var ErrEmptyTicker = errors.New("ticker is required")

// EngineConfig is the validated scoring configuration of a process.
type EngineConfig struct {
	Weights    models.Weights
	Thresholds models.Thresholds
	BatchSize  int
	Tickers    []string
}

// EngineOption configures RecommendationEngine.
type EngineOption func(*RecommendationEngine)

// WithMetrics sets the metrics sink.
func WithMetrics(m domrepo.Metrics) EngineOption {
	return func(e *RecommendationEngine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithHealthCheckers adds upstream probes reported by Health.
func WithHealthCheckers(checks ...domsvc.HealthChecker) EngineOption {
	return func(e *RecommendationEngine) {
		for _, c := range checks {
			if c != nil {
				e.checks = append(e.checks, c)
			}
		}
	}
}

// WithEngineLogger sets the logger.
func WithEngineLogger(l *applogger.Logger) EngineOption {
	return func(e *RecommendationEngine) {
		if l != nil {
			e.log = l
		}
	}
}

// RecommendationEngine fuses the four analyses into ranked recommendations.
type RecommendationEngine struct {
	technical   domsvc.TechnicalAnalyzer
	fundamental domsvc.FundamentalAnalyzer
	sentiment   domsvc.SentimentAnalyzer
	macro       domsvc.MacroAnalyzer

	cfg     EngineConfig
	metrics domrepo.Metrics
	checks  []domsvc.HealthChecker
	log     *applogger.Logger
	now     func() time.Time
}

// NewRecommendationEngine validates cfg and returns an engine. Invalid weights
// or thresholds are a startup error.
func NewRecommendationEngine(
	technical domsvc.TechnicalAnalyzer,
	fundamental domsvc.FundamentalAnalyzer,
	sentiment domsvc.SentimentAnalyzer,
	macro domsvc.MacroAnalyzer,
	cfg EngineConfig,
	opts ...EngineOption,
) (*RecommendationEngine, error) {
	if technical == nil || fundamental == nil || sentiment == nil || macro == nil {
		return nil, fmt.Errorf("all four analyzers are required")
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if len(cfg.Tickers) == 0 {
		return nil, fmt.Errorf("ticker universe is empty")
	}
	cfg.Tickers = append([]string(nil), cfg.Tickers...)

	e := &RecommendationEngine{
		technical:   technical,
		fundamental: fundamental,
		sentiment:   sentiment,
		macro:       macro,
		cfg:         cfg,
		metrics:     nopMetrics{},
		log:         applogger.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Tickers returns the configured universe.
func (e *RecommendationEngine) Tickers() []string {
	return append([]string(nil), e.cfg.Tickers...)
}

// GenerateDailyRecommendations scores the whole universe and returns it ranked
// by total score, highest first.
func (e *RecommendationEngine) GenerateDailyRecommendations(ctx context.Context) ([]models.Recommendation, error) {
	run, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}
	return run.Recommendations, nil
}

// Run is GenerateDailyRecommendations plus run metadata. Every ticker of the
// universe yields exactly one recommendation.
func (e *RecommendationEngine) Run(ctx context.Context) (*models.RecommendationRun, error) {
	start := e.now()
	runID := uuid.NewString()
	log := e.log.With(applogger.String("run_id", runID))
	log.Info("daily run started",
		applogger.Int("tickers", len(e.cfg.Tickers)),
		applogger.Int("batch_size", e.cfg.BatchSize),
	)

	mc := e.macroContext(ctx)

	tickers := e.cfg.Tickers
	recs := make([]models.Recommendation, len(tickers))
	runBatches(len(tickers), e.cfg.BatchSize, func(i int) {
		recs[i] = e.recommend(ctx, tickers[i], mc)
	})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("daily run abandoned: %w", err)
	}

	sortByScore(recs)

	elapsed := e.now().Sub(start)
	e.metrics.RecordLatency("daily_run", elapsed.Seconds())
	log.Info("daily run finished",
		applogger.Int("recommendations", len(recs)),
		applogger.Duration("elapsed", elapsed),
		applogger.Float("macro_score", mc.Score),
	)

	return &models.RecommendationRun{
		RunID:           runID,
		GeneratedAt:     start.UTC(),
		Duration:        elapsed,
		Macro:           mc,
		Recommendations: recs,
	}, nil
}

// AnalyzeTicker runs the full pipeline for one ticker and returns every
// intermediate result.
func (e *RecommendationEngine) AnalyzeTicker(ctx context.Context, ticker string) (*models.TickerAnalysis, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	start := e.now()
	defer func() { e.metrics.RecordLatency("analyze_ticker", e.now().Sub(start).Seconds()) }()

	mc := e.macroContext(ctx)
	sub := e.collect(ctx, ticker)
	rec, err := e.build(ticker, sub, mc)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", ticker, err)
	}

	a := &models.TickerAnalysis{
		Ticker:         ticker,
		CurrentPrice:   sub.technical.CurrentPrice,
		PriceChange:    sub.technical.PriceChange,
		Recommendation: rec,
		Breakdown:      e.breakdown(rec, sub, mc),
		Technical:      sub.technical,
		Fundamental:    sub.fundamental,
		Sentiment:      sub.sentiment,
		Macro:          mc,
		AnalyzedAt:     rec.GeneratedAt,
	}
	if p := sub.fundamental.Profile; p != nil {
		a.CompanyName = p.Name
		a.Sector = p.Sector
		a.MarketCap = p.MarketCap
	}
	return a, nil
}

// ScoreBreakdown returns how the total score of ticker is composed.
func (e *RecommendationEngine) ScoreBreakdown(ctx context.Context, ticker string) (*models.ScoreBreakdown, error) {
	a, err := e.AnalyzeTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &a.Breakdown, nil
}

// Health probes every registered upstream concurrently.
func (e *RecommendationEngine) Health(ctx context.Context) models.HealthReport {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	type item struct {
		idx int
		err error
	}
	ch := make(chan item, len(e.checks))
	var wg sync.WaitGroup
	for i, c := range e.checks {
		wg.Add(1)
		go func(i int, c domsvc.HealthChecker) {
			defer wg.Done()
			ch <- item{i, c.Health(ctx)}
		}(i, c)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	report := models.HealthReport{
		Status:    StatusHealthy,
		Sources:   make([]models.SourceHealth, len(e.checks)),
		CheckedAt: e.now().UTC(),
	}
	for it := range ch {
		sh := models.SourceHealth{Name: e.checks[it.idx].Name(), Status: StatusHealthy}
		if it.err != nil {
			sh.Status = StatusUnhealthy
			sh.Error = it.err.Error()
			report.Status = StatusDegraded
		}
		report.Sources[it.idx] = sh
	}
	return report
}

// macroContext computes the run-wide macro context. A failure yields a neutral
// score and marks the context with the error.
func (e *RecommendationEngine) macroContext(ctx context.Context) (mc models.MacroContext) {
	defer func() {
		if r := recover(); r != nil {
			mc = neutralMacro(e.now(), fmt.Sprintf("panic: %v", r))
			e.metrics.RecordSourceError(sourceMacro)
			e.log.Error("macro analysis panicked", applogger.Any("panic", r))
		}
	}()

	mc, err := e.macro.Context(ctx)
	if err != nil {
		e.metrics.RecordSourceError(sourceMacro)
		e.log.Warn("macro context unavailable, using neutral score", applogger.Error(err))
		return neutralMacro(e.now(), err.Error())
	}
	return mc
}

func neutralMacro(now time.Time, msg string) models.MacroContext {
	return models.MacroContext{
		Score:        models.NeutralScore,
		MarketImpact: models.ImpactNeutral,
		Error:        msg,
		UpdatedAt:    now.UTC(),
	}
}

// recommend never fails: any ticker-level error or panic yields the neutral
// recommendation.
func (e *RecommendationEngine) recommend(ctx context.Context, ticker string, mc models.MacroContext) (rec models.Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("ticker analysis panicked",
				applogger.String("ticker", ticker),
				applogger.Any("panic", r),
			)
			rec = e.neutral(ticker, mc, fmt.Sprintf("panic: %v", r))
		}
		e.metrics.RecordRecommendation(string(rec.Recommendation))
		e.metrics.RecordTickerScore(rec.Ticker, rec.TotalScore)
	}()

	sub := e.collect(ctx, ticker)
	rec, err := e.build(ticker, sub, mc)
	if err != nil {
		e.log.Error("ticker analysis failed",
			applogger.String("ticker", ticker),
			applogger.Error(err),
		)
		return e.neutral(ticker, mc, err.Error())
	}
	return rec
}

// build runs fusion, classification, confidence, risk and target price.
func (e *RecommendationEngine) build(ticker string, sub subResults, mc models.MacroContext) (models.Recommendation, error) {
	scores := models.SubScores{
		Technical:   sub.technical.Score,
		Fundamental: sub.fundamental.Score,
		Macro:       mc.Score,
		Sentiment:   sub.sentiment.Score,
	}
	if err := scoring.CheckSubScores(scores); err != nil {
		return models.Recommendation{}, err
	}

	errs := make(map[string]string, len(sub.errors)+1)
	for k, v := range sub.errors {
		errs[k] = v
	}
	if mc.Error != "" {
		errs[sourceMacro] = mc.Error
	}

	total := scoring.Fuse(e.cfg.Weights, scores)
	action := scoring.Classify(total, e.cfg.Thresholds)
	confidence := scoring.EstimateConfidence(scoring.ConfidenceInputs{
		IndicatorCompleteness: sub.technical.Indicators.Completeness(),
		FundamentalCovered:    sub.fundamental.Supported,
		SentimentConfidence:   sub.sentiment.Confidence,
		HadError:              len(errs) > 0,
	})

	rec := models.Recommendation{
		Ticker:           ticker,
		Recommendation:   action,
		TotalScore:       scoring.Round(total, 2),
		TechnicalScore:   scoring.Round(scores.Technical, 2),
		FundamentalScore: scoring.Round(scores.Fundamental, 2),
		MacroScore:       scoring.Round(scores.Macro, 2),
		SentimentScore:   scoring.Round(scores.Sentiment, 2),
		Confidence:       scoring.Round(confidence, 1),
		RiskLevel:        scoring.AssessRisk(total, scores.Sentiment, scores.Macro),
		CurrentPrice:     sub.technical.CurrentPrice,
		TargetPrice:      scoring.TargetPrice(sub.technical.CurrentPrice, total),
		Summary:          scoring.Summary(action, sub.technical.Signals, sub.fundamental.Supported, total),
		Color:            scoring.ColorFor(action),
		GeneratedAt:      e.now().UTC(),
	}
	if len(errs) > 0 {
		rec.Errors = errs
	}
	if p := sub.fundamental.Profile; p != nil {
		rec.CompanyName = p.Name
	}
	return rec, nil
}

func (e *RecommendationEngine) neutral(ticker string, mc models.MacroContext, msg string) models.Recommendation {
	return models.Recommendation{
		Ticker:           ticker,
		Recommendation:   models.ActionHold,
		TotalScore:       models.NeutralScore,
		TechnicalScore:   models.NeutralScore,
		FundamentalScore: models.NeutralScore,
		MacroScore:       scoring.Round(mc.Score, 2),
		SentimentScore:   models.NeutralScore,
		Confidence:       neutralConfidence,
		RiskLevel:        models.RiskHigh,
		Summary:          scoring.NeutralSummary(ticker),
		Color:            models.ColorYellow,
		Errors:           map[string]string{"ticker": msg},
		GeneratedAt:      e.now().UTC(),
	}
}

func (e *RecommendationEngine) breakdown(rec models.Recommendation, sub subResults, mc models.MacroContext) models.ScoreBreakdown {
	b := models.ScoreBreakdown{
		Ticker:           rec.Ticker,
		TechnicalScore:   rec.TechnicalScore,
		FundamentalScore: rec.FundamentalScore,
		MacroScore:       rec.MacroScore,
		SentimentScore:   rec.SentimentScore,
		TotalScore:       rec.TotalScore,
		Weights:          e.cfg.Weights,
		Thresholds:       e.cfg.Thresholds,
		CERStability:     scoring.Round(mc.Score, 2),
		NewsSentiment:    sub.sentiment.Overall,
		NewsCount:        sub.sentiment.NewsCount,
	}
	if ind := sub.technical.Indicators; ind != nil {
		b.RSI = ind.RSI
	}
	if sig := sub.technical.Signals; sig != nil {
		b.MACDSignal = sig.MACD
	}
	if r := sub.fundamental.Ratios; r != nil {
		b.ROE = r.ROE
		b.DebtToEquity = r.DebtToEquity
	}
	return b
}

// sortByScore orders by total score descending; ties keep universe order.
func sortByScore(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].TotalScore > recs[j].TotalScore
	})
}

type nopMetrics struct{}

func (nopMetrics) RecordSourceError(string) {}
func (nopMetrics) RecordRecommendation(string) {}
func (nopMetrics) RecordTickerScore(string, float64) {}
func (nopMetrics) RecordLatency(string, float64) {}

var _ domrepo.Metrics = nopMetrics{}
