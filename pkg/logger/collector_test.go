package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorAggregatesDuplicates(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		Service:        "recopulse",
		TimeInterval:   time.Hour,
		CountThreshold: 10,
		Topic:          "recopulse.logs",
		Publisher:      pub,
	})

	fields := map[string]interface{}{"ticker": "YPF"}
	c.AddLog("error", "technical analysis failed", fields, "x.go:1")
	c.AddLog("error", "technical analysis failed", fields, "x.go:1")
	c.AddLog("error", "macro fetch failed", nil, "y.go:2")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.topic != "recopulse.logs" {
		t.Fatalf("unexpected topic %q", pub.topic)
	}
	if len(pub.batches) != 1 {
		t.Fatalf("expected one flush on close, got %d", len(pub.batches))
	}
	counts := map[string]int{}
	for _, e := range pub.batches[0] {
		counts[e.Message] = e.Count
		if e.Service != "recopulse" {
			t.Fatalf("service not stamped: %+v", e)
		}
	}
	if counts["technical analysis failed"] != 2 || counts["macro fetch failed"] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})
	c.AddLog("error", "a", nil, "")
	c.AddLog("error", "b", nil, "")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 || len(pub.batches[0]) != 2 {
		t.Fatalf("expected a single batch of two entries, got %v", pub.batches)
	}
}

func TestLoggerWithCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Publisher: pub})
	l.With(String("ticker", "GGAL")).Error("boom", Error(errors.New("x")))
	l.Warn("not collected")
	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 || len(pub.batches[0]) != 1 {
		t.Fatalf("expected one collected error, got %v", pub.batches)
	}
	if pub.batches[0][0].Fields["error"] != "x" {
		t.Fatalf("error field missing: %+v", pub.batches[0][0])
	}
}

func TestCollectorGroupBy(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 10,
		Publisher:      pub,
		GroupBy:        []string{"source"},
	})
	c.AddLog("error", "extractor failed", map[string]interface{}{"source": "sentiment", "run_id": "a"}, "f.go:1")
	c.AddLog("error", "extractor failed", map[string]interface{}{"source": "sentiment", "run_id": "b"}, "f.go:1")
	c.AddLog("error", "extractor failed", map[string]interface{}{"source": "macro", "run_id": "a"}, "f.go:1")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 || len(pub.batches[0]) != 2 {
		t.Fatalf("expected two groups, got %v", pub.batches)
	}
	for _, e := range pub.batches[0] {
		if e.Fields["source"] == "sentiment" && (e.Count != 2 || e.Fields["run_id"] != "a") {
			t.Fatalf("sentiment entry should keep first fields and count 2: %+v", e)
		}
	}
}

func TestCollectorWarnings(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, Publisher: pub, CollectWarnings: true})
	child := l.With(String("source", "fundamental"))
	child.Warn("fmp unavailable")
	child.Info("ignored")
	l.RemoveCollector()
	child.Error("after removal")

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 || len(pub.batches[0]) != 1 {
		t.Fatalf("expected only the warning, got %v", pub.batches)
	}
	e := pub.batches[0][0]
	if e.Level != "warn" || e.Fields["source"] != "fundamental" {
		t.Fatalf("unexpected entry %+v", e)
	}
}
