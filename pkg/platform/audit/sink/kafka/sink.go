// Package kafka publishes audit events to a Kafka topic for downstream
// consumers (SIEM pipelines, long-term archival).
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "watchgate/pkg/platform/audit"
)

// DefaultTopic is where audit events land unless configured otherwise.
const DefaultTopic = "watchgate.audit.events"

// Sink publishes audit events to Kafka. Publishing is synchronous per event;
// the audit worker already decouples it from request latency.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects a producer to the given brokers. Call EnsureTopic once before
// the first publish on fresh clusters.
func New(brokers []string, topic string) (*Sink, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// EnsureTopic creates the audit topic when the cluster does not have it yet.
// An already-existing topic is not an error.
func (s *Sink) EnsureTopic(ctx context.Context, partitions int32, replicas int16) error {
	admin := kadm.NewClient(s.client)
	resp, err := admin.CreateTopics(ctx, partitions, replicas, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %q: %w", res.Topic, res.Err)
		}
	}
	return nil
}

// Publish sends one event, keyed by session so a session's trail stays
// ordered within its partition. Events without a session key on the event ID.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	key := event.SessionID.String()
	if event.SessionID.IsNil() {
		key = event.ID.String()
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
