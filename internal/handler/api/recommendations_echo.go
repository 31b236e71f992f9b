package api

import (
	"context"
	"errors"
	"time"

	"RecoPulse/internal/domain/models"
	apimetrics "RecoPulse/internal/service/metrics"
	"RecoPulse/internal/usecase"
	xhttp "RecoPulse/pkg/http"
	xlogger "RecoPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

const serviceName = "RecoPulse"

// TickerAnalyzer is the per-ticker surface of the recommendation engine.
type TickerAnalyzer interface {
	AnalyzeTicker(ctx context.Context, ticker string) (*models.TickerAnalysis, error)
	ScoreBreakdown(ctx context.Context, ticker string) (*models.ScoreBreakdown, error)
	Health(ctx context.Context) models.HealthReport
}

// DailySource serves the latest daily run and can trigger a new one.
type DailySource interface {
	Latest() *models.RecommendationRun
	RunNow(ctx context.Context) (*models.RecommendationRun, error)
}

// RecommendationsEchoHandler exposes recommendations over HTTP.
type RecommendationsEchoHandler struct {
	logger  *xlogger.Logger
	engine  TickerAnalyzer
	daily   DailySource
	version string
}

var _ xhttp.Handler = (*RecommendationsEchoHandler)(nil)

func NewRecommendationsEchoHandler(logger *xlogger.Logger, engine TickerAnalyzer, daily DailySource, version string) *RecommendationsEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	apimetrics.Register()
	return &RecommendationsEchoHandler{logger: logger, engine: engine, daily: daily, version: version}
}

func (h *RecommendationsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	g := e.Group("/api")
	g.GET("/recommendations/daily", h.Daily)
	g.GET("/analysis/:ticker", h.Analysis)
	g.GET("/scores/:ticker", h.Scores)
	g.GET("/health", h.Health)
}

type rootResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

func (h *RecommendationsEchoHandler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, rootResponse{
		Service: serviceName,
		Version: h.version,
		Status:  "running",
		Endpoints: map[string]string{
			"daily":    "/api/recommendations/daily",
			"analysis": "/api/analysis/{ticker}",
			"scores":   "/api/scores/{ticker}",
			"health":   "/api/health",
		},
	})
}

type dailyResponse struct {
	RunID           string                  `json:"run_id"`
	GeneratedAt     time.Time               `json:"generated_at"`
	MacroScore      float64                 `json:"macro_score"`
	Total           int                     `json:"total"`
	Count           int                     `json:"count"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

func (h *RecommendationsEchoHandler) Daily(c echo.Context) error {
	start := time.Now()
	defer func() { apimetrics.Observe("daily", start, c.Response().Status >= 500) }()

	req := &models.DailyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	run := h.daily.Latest()
	if run == nil || req.Refresh {
		fresh, rerr := h.daily.RunNow(c.Request().Context())
		switch {
		case rerr == nil:
			run = fresh
		case errors.Is(rerr, usecase.ErrRunInProgress) && run != nil:
			h.logger.Info("refresh skipped, serving latest run", xlogger.String("run_id", run.RunID))
		case errors.Is(rerr, usecase.ErrRunInProgress):
			return xhttp.AppErrorResponse(c, xhttp.UnavailableError("daily recommendations are being generated, retry shortly"))
		default:
			h.logger.Error("daily run failed", xlogger.Error(rerr))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("could not generate recommendations").WithError(rerr))
		}
	}

	recs := filterRecommendations(run.Recommendations, models.Action(req.Action), req.Limit)
	return xhttp.SuccessResponse(c, dailyResponse{
		RunID:           run.RunID,
		GeneratedAt:     run.GeneratedAt,
		MacroScore:      run.Macro.Score,
		Total:           len(run.Recommendations),
		Count:           len(recs),
		Recommendations: recs,
	})
}

func filterRecommendations(in []models.Recommendation, action models.Action, limit int) []models.Recommendation {
	out := make([]models.Recommendation, 0, len(in))
	for _, r := range in {
		if action != "" && r.Recommendation != action {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (h *RecommendationsEchoHandler) Analysis(c echo.Context) error {
	start := time.Now()
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.Observe("analysis", start, false)
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.engine.AnalyzeTicker(c.Request().Context(), req.Ticker)
	apimetrics.Observe("analysis", start, err != nil)
	if err != nil {
		return h.tickerError(c, "analysis", req.Ticker, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *RecommendationsEchoHandler) Scores(c echo.Context) error {
	start := time.Now()
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.Observe("scores", start, false)
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.engine.ScoreBreakdown(c.Request().Context(), req.Ticker)
	apimetrics.Observe("scores", start, err != nil)
	if err != nil {
		return h.tickerError(c, "scores", req.Ticker, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *RecommendationsEchoHandler) tickerError(c echo.Context, endpoint, ticker string, err error) error {
	if errors.Is(err, usecase.ErrEmptyTicker) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	h.logger.Error(endpoint+" usecase error", xlogger.String("ticker", ticker), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("error analyzing %s", ticker).WithError(err))
}

func (h *RecommendationsEchoHandler) Health(c echo.Context) error {
	start := time.Now()
	rep := h.engine.Health(c.Request().Context())
	down := len(rep.Sources) > 0
	for _, s := range rep.Sources {
		if s.Status != usecase.StatusUnhealthy {
			down = false
			break
		}
	}
	apimetrics.Observe("health", start, down)
	if down {
		return xhttp.ServiceUnavailableResponse(c, rep)
	}
	return xhttp.SuccessResponse(c, rep)
}
