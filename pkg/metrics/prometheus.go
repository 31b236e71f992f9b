package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	sourceErrors    *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	tickerScore     *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		sourceErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recopulse_source_errors_total",
				Help: "Analyses replaced by their neutral default, by source",
			},
			[]string{"source"},
		),
		recommendations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recopulse_recommendations_total",
				Help: "Recommendations produced, by action",
			},
			[]string{"action"},
		),
		tickerScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "recopulse_ticker_total_score",
				Help: "Last fused total score for a ticker",
			},
			[]string{"ticker"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recopulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
	}
}

// RecordSourceError records an analysis that fell back to its neutral default.
func (r *Recorder) RecordSourceError(source string) {
	r.sourceErrors.WithLabelValues(source).Inc()
}

// RecordRecommendation counts a produced recommendation.
func (r *Recorder) RecordRecommendation(action string) {
	r.recommendations.WithLabelValues(action).Inc()
}

// RecordTickerScore records the last total score for a ticker.
func (r *Recorder) RecordTickerScore(ticker string, score float64) {
	r.tickerScore.WithLabelValues(ticker).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
