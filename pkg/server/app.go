package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "RecoPulse/internal/domain/repository"
	"RecoPulse/internal/usecase"
	"RecoPulse/pkg/config"
	xhttp "RecoPulse/pkg/http"
	applogger "RecoPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	scheduler  *usecase.DailyScheduler
	handler    xhttp.Handler
	publisher  domrepo.RecommendationPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	scheduler *usecase.DailyScheduler,
	handler xhttp.Handler,
	publisher domrepo.RecommendationPublisher,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:       cfg,
		log:       l,
		scheduler: scheduler,
		handler:   handler,
		publisher: publisher,
	}
}

// Run starts the scheduler and the HTTP server, then blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(a.cfg.Server.CORSOrigins),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.log),
	)

	go a.scheduler.Start(ctx)
	a.log.Info("daily scheduler launched", applogger.Duration("interval", a.cfg.Scoring.RefreshInterval))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		a.scheduler.Stop()
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.scheduler.Stop()
	select {
	case <-a.scheduler.Done():
	case <-shutdownCtx.Done():
		a.log.Warn("daily scheduler did not stop in time")
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// The collector ships through the same producer the publisher closes.
	a.log.RemoveCollector()
	if err := a.publisher.Close(); err != nil {
		a.log.Warn("publisher close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
