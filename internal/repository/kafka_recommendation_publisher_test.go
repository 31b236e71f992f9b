package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"RecoPulse/internal/domain/models"
	pkgkafka "RecoPulse/pkg/kafka"
)

type captureProducer struct {
	topic  string
	msgs   []pkgkafka.Message
	err    error
	closed bool
}

func (c *captureProducer) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	c.topic = topic
	c.msgs = msgs
	return c.err
}

func (c *captureProducer) Close() error {
	c.closed = true
	return nil
}

func TestKafkaRecommendationPublisher(t *testing.T) {
	cp := &captureProducer{}
	p := &KafkaRecommendationPublisher{producer: cp, topic: "recopulse.recommendations"}

	run := &models.RecommendationRun{
		RunID:       "abc",
		GeneratedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Duration:    1500 * time.Millisecond,
		Macro:       models.MacroContext{Score: 55},
		Recommendations: []models.Recommendation{
			{Ticker: "YPF", Recommendation: models.ActionBuy, TotalScore: 75},
			{Ticker: "GGAL", Recommendation: models.ActionHold, TotalScore: 52},
		},
	}
	if err := p.Publish(context.Background(), run); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if cp.topic != "recopulse.recommendations" || len(cp.msgs) != 3 {
		t.Fatalf("unexpected batch: topic=%s n=%d", cp.topic, len(cp.msgs))
	}
	if string(cp.msgs[0].Key) != "YPF" || string(cp.msgs[1].Key) != "GGAL" {
		t.Fatalf("messages should be keyed by ticker in rank order")
	}
	ev := cp.msgs[1].Value.(recommendationEvent)
	if ev.Rank != 2 || ev.RunID != "abc" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	sum := cp.msgs[2].Value.(runSummaryEvent)
	if string(cp.msgs[2].Key) != "run:abc" || sum.Count != 2 || sum.DurationMs != 1500 ||
		sum.Actions[models.ActionBuy] != 1 || sum.Actions[models.ActionHold] != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	if err := p.Close(); err != nil || !cp.closed {
		t.Fatalf("close should close the producer")
	}
}

func TestKafkaRecommendationPublisherWrapsError(t *testing.T) {
	boom := errors.New("leader not available")
	p := &KafkaRecommendationPublisher{producer: &captureProducer{err: boom}, topic: "t"}
	err := p.Publish(context.Background(), &models.RecommendationRun{RunID: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped producer error, got %v", err)
	}
}
