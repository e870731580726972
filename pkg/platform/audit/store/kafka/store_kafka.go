package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "easel/pkg/platform/audit"
)

// Store produces audit events to a Kafka topic, keyed by board uid so events
// for one board stay ordered within a partition.
type Store struct {
	client *kgo.Client
	topic  string
}

// New builds a Kafka-backed audit store.
func New(brokers []string, topic string) (*Store, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("build kafka client: %w", err)
	}
	return &Store{client: client, topic: topic}, nil
}

type wireEvent struct {
	Timestamp string `json:"timestamp"`
	BoardUID  string `json:"board_uid"`
	ActorID   string `json:"actor_id,omitempty"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Append produces the event synchronously so callers know it reached the
// broker.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(wireEvent{
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		BoardUID:  event.BoardUID,
		ActorID:   event.ActorID,
		Action:    event.Action,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	record := &kgo.Record{Topic: s.topic, Key: []byte(event.BoardUID), Value: payload}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (s *Store) Close() {
	s.client.Close()
}
