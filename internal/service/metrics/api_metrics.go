package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recopulse",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of recommendation endpoints",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recopulse",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by recommendation endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors)
	})
}

// Observe records latency for endpoint and counts it as an error when failed is set.
func Observe(endpoint string, start time.Time, failed bool) {
	EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if failed {
		EndpointErrors.WithLabelValues(endpoint).Inc()
	}
}
