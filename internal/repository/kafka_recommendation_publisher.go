package repository

import (
	"context"
	"fmt"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	pkgkafka "RecoPulse/pkg/kafka"
)

type batchProducer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaRecommendationPublisher writes one message per recommendation, keyed by
// ticker, followed by a run summary keyed by run id.
type KafkaRecommendationPublisher struct {
	producer batchProducer
	topic    string
}

var (
	_ domrepo.RecommendationPublisher = (*KafkaRecommendationPublisher)(nil)
	_ domrepo.RecommendationPublisher = NoopPublisher{}
)

func NewKafkaRecommendationPublisher(producer *pkgkafka.Producer, topic string) *KafkaRecommendationPublisher {
	return &KafkaRecommendationPublisher{producer: producer, topic: topic}
}

type recommendationEvent struct {
	RunID          string                `json:"run_id"`
	Rank           int                   `json:"rank"`
	Recommendation models.Recommendation `json:"recommendation"`
}

type runSummaryEvent struct {
	RunID       string                `json:"run_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	DurationMs  int64                 `json:"duration_ms"`
	MacroScore  float64               `json:"macro_score"`
	Count       int                   `json:"count"`
	Actions     map[models.Action]int `json:"actions"`
}

func (p *KafkaRecommendationPublisher) Publish(ctx context.Context, run *models.RecommendationRun) error {
	if run == nil {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(run.Recommendations)+1)
	actions := make(map[models.Action]int, 3)
	for i, r := range run.Recommendations {
		actions[r.Recommendation]++
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(r.Ticker),
			Value: recommendationEvent{RunID: run.RunID, Rank: i + 1, Recommendation: r},
		})
	}
	msgs = append(msgs, pkgkafka.Message{
		Key: []byte("run:" + run.RunID),
		Value: runSummaryEvent{
			RunID:       run.RunID,
			GeneratedAt: run.GeneratedAt,
			DurationMs:  run.Duration.Milliseconds(),
			MacroScore:  run.Macro.Score,
			Count:       len(run.Recommendations),
			Actions:     actions,
		},
	})
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish run %s: %w", run.RunID, err)
	}
	return nil
}

func (p *KafkaRecommendationPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.RecommendationRun) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
