package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]int{"score": 70})
	if err != nil || string(b) != `{"score":70}` {
		t.Fatalf("unexpected json encoding %q %v", b, err)
	}
	if b, _ := encodeValue("raw"); string(b) != "raw" {
		t.Fatalf("string passthrough failed: %q", b)
	}
	if _, err := encodeValue(make(chan int)); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestParseCompression(t *testing.T) {
	if parseCompression("zstd") != kafka.Zstd {
		t.Fatalf("zstd not mapped")
	}
	if parseCompression("unknown") != kafka.Gzip {
		t.Fatalf("unknown should default to gzip")
	}
}

func TestNewProducerValidatesConfig(t *testing.T) {
	if _, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("brotli")); err == nil {
		t.Fatalf("expected unsupported compression error")
	}
	if _, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithRequiredAcks(3)); err == nil {
		t.Fatalf("expected required acks error")
	}
	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithBatchSize(0), WithAutoCreateTopics(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()
	if p.writer.BatchSize != 100 || !p.writer.AllowAutoTopicCreation {
		t.Fatalf("defaults not applied: batch=%d auto=%v", p.writer.BatchSize, p.writer.AllowAutoTopicCreation)
	}
}
