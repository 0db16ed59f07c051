package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

// Event types carried in EventEnvelope.EventType.
const (
	EventResolveRequested = "resolve.requested"
	EventResolveCompleted = "resolve.completed"
)

const schemaVersion = "v1"

// EventEnvelope wraps every job and result payload.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope marshals payload into a fresh envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target. A missing or malformed
// payload is a client error and is never retried.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.InvalidParam("envelope has no payload").WithDetail(e.EventID)
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "malformed payload").WithDetail(e.EventID)
	}
	return nil
}

// ToMessage renders the envelope as a message on topic keyed by key.
func (e *EventEnvelope) ToMessage(topic string, key []byte) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &ProducerMessage{
		Topic: topic,
		Key:   key,
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

// MessageToEventEnvelope parses a consumed message.
func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.InvalidParam("empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to unmarshal envelope")
	}
	return &env, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Topic management
// ─────────────────────────────────────────────────────────────────────────────

// TopicSpec describes a topic to create.
type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the job topics at worker start-up.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

// NewTopicManager dials the first broker.
func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to dial kafka")
	}
	return newTopicManager(conn, logger), nil
}

func newTopicManager(conn ConnInterface, logger logging.Logger) *TopicManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: logger}
}

// EnsureTopics creates every missing topic in specs.
func (m *TopicManager) EnsureTopics(ctx context.Context, specs ...TopicSpec) error {
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if spec.Name == "" {
			return errors.New(errors.ErrCodeValidation, "topic name required")
		}
		if m.exists(spec.Name) {
			continue
		}
		cfg := kafka.TopicConfig{
			Topic:             spec.Name,
			NumPartitions:     max(spec.NumPartitions, 1),
			ReplicationFactor: max(spec.ReplicationFactor, 1),
		}
		if spec.RetentionMs > 0 {
			cfg.ConfigEntries = append(cfg.ConfigEntries, kafka.ConfigEntry{
				ConfigName:  "retention.ms",
				ConfigValue: strconv.FormatInt(spec.RetentionMs, 10),
			})
		}
		if err := m.conn.CreateTopics(cfg); err != nil && !isTopicExists(err) {
			return errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to create topic").WithDetail(spec.Name)
		}
		m.logger.Info("topic created", logging.String("topic", spec.Name))
	}
	return nil
}

func (m *TopicManager) exists(name string) bool {
	partitions, err := m.conn.ReadPartitions(name)
	return err == nil && len(partitions) > 0
}

func isTopicExists(err error) bool {
	return errors.Is(err, kafka.TopicAlreadyExists)
}

// Close closes the broker connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// JobTopics returns the specs for the jobs, results and dead-letter topics.
func JobTopics(jobs, results, dlq string) []TopicSpec {
	const week = 7 * 24 * 3600 * 1000
	return []TopicSpec{
		{Name: jobs, NumPartitions: 6, ReplicationFactor: 1, RetentionMs: week},
		{Name: results, NumPartitions: 6, ReplicationFactor: 1, RetentionMs: week},
		{Name: dlq, NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 4 * week},
	}
}

//Personal.AI order the ending
