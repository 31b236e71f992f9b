package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordSourceError("technical")
	r.RecordSourceError("technical")
	r.RecordRecommendation("BUY")
	r.RecordTickerScore("YPF", 71.5)
	r.RecordLatency("daily_run", 1.2)

	if got := testutil.ToFloat64(r.sourceErrors.WithLabelValues("technical")); got != 2 {
		t.Fatalf("expected 2 source errors, got %v", got)
	}
	if got := testutil.ToFloat64(r.recommendations.WithLabelValues("BUY")); got != 1 {
		t.Fatalf("expected 1 BUY, got %v", got)
	}
	if got := testutil.ToFloat64(r.tickerScore.WithLabelValues("YPF")); got != 71.5 {
		t.Fatalf("expected score 71.5, got %v", got)
	}
}
