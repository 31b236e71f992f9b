package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	"RecoPulse/pkg/cache"
	applogger "RecoPulse/pkg/logger"
)

const dailyRunLockKey = "lock:daily_run"

var ErrRunInProgress = errors.New("a daily run is already in progress")

// DailyRunner produces one complete recommendation run.
type DailyRunner interface {
	Run(ctx context.Context) (*models.RecommendationRun, error)
}

// SchedulerOption configures DailyScheduler.
type SchedulerOption func(*DailyScheduler)

// WithInterval sets the time between scheduled runs.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *DailyScheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithRunTimeout bounds a single run.
func WithRunTimeout(d time.Duration) SchedulerOption {
	return func(s *DailyScheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPublisher ships every completed run downstream.
func WithPublisher(p domrepo.RecommendationPublisher) SchedulerOption {
	return func(s *DailyScheduler) { s.publisher = p }
}

// WithLock guards runs with a cache lock so replicas do not run concurrently.
func WithLock(c cache.Service) SchedulerOption {
	return func(s *DailyScheduler) { s.lock = c }
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(l *applogger.Logger) SchedulerOption {
	return func(s *DailyScheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// DailyScheduler regenerates recommendations on an interval and keeps only the
// latest run in memory.
type DailyScheduler struct {
	runner    DailyRunner
	publisher domrepo.RecommendationPublisher
	lock      cache.Service
	interval  time.Duration
	timeout   time.Duration
	log       *applogger.Logger

	mu      sync.RWMutex
	latest  *models.RecommendationRun
	running sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func NewDailyScheduler(runner DailyRunner, opts ...SchedulerOption) *DailyScheduler {
	s := &DailyScheduler{
		runner:   runner,
		interval: 24 * time.Hour,
		timeout:  5 * time.Minute,
		log:      applogger.Nop(),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs once immediately and then on every tick until ctx is done or
// Stop is called. It blocks.
func (s *DailyScheduler) Start(ctx context.Context) {
	defer close(s.done)
	s.log.Info("daily scheduler started", applogger.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-s.stopCh:
			s.log.Info("daily scheduler stopped")
			return
		case <-ctx.Done():
			s.log.Info("daily scheduler stopping", applogger.Error(ctx.Err()))
			return
		}
	}
}

// Stop ends the loop started by Start. Wait on Done to observe its exit.
func (s *DailyScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Done is closed when Start returns.
func (s *DailyScheduler) Done() <-chan struct{} { return s.done }

func (s *DailyScheduler) tick(ctx context.Context) {
	if _, err := s.RunNow(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.log.Info("scheduled run skipped, another run is in progress")
			return
		}
		s.log.Error("scheduled run failed", applogger.Error(err))
	}
}

// Latest returns the last completed run or nil.
func (s *DailyScheduler) Latest() *models.RecommendationRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// RunNow generates a run, stores it as the latest and publishes it.
// Publishing failures are logged and do not fail the run.
func (s *DailyScheduler) RunNow(ctx context.Context) (*models.RecommendationRun, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.lock != nil {
		ok, err := s.lock.TryLock(ctx, dailyRunLockKey, s.timeout)
		if err != nil {
			s.log.Warn("run lock unavailable, running unguarded", applogger.Error(err))
		} else if !ok {
			return nil, ErrRunInProgress
		} else {
			defer func() {
				if err := s.lock.Unlock(context.Background(), dailyRunLockKey); err != nil {
					s.log.Warn("run unlock failed", applogger.Error(err))
				}
			}()
		}
	}

	run, err := s.runner.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("daily run: %w", err)
	}

	s.mu.Lock()
	s.latest = run
	s.mu.Unlock()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, run); err != nil {
			s.log.Error("publish run failed",
				applogger.String("run_id", run.RunID),
				applogger.Error(err),
			)
		}
	}
	return run, nil
}
