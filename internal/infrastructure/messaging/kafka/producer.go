package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
)

// EventPublisher is the analysis-event sink.  Implementations never return
// errors to callers: event publication must not affect analysis outcomes.
type EventPublisher interface {
	ContractExtracted(ctx context.Context, payload ContractExtractedPayload)
	ConflictsDetected(ctx context.Context, payload ConflictsDetectedPayload)
	QuestionAnswered(ctx context.Context, payload QuestionAnsweredPayload)
	Close() error
}

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes events to Kafka.
type Producer struct {
	writer      writerInterface
	topicPrefix string
	logger      logging.Logger
	closed      atomic.Bool
	sent        atomic.Int64
	failed      atomic.Int64
}

// NewProducer constructs a Producer from configuration.  A disabled Kafka
// configuration yields the no-op publisher instead.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) EventPublisher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if !cfg.Enabled {
		return NopPublisher{}
	}

	maxAttempts := cfg.ProducerRetries + 1
	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  maxAttempts,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer:      writer,
		topicPrefix: cfg.TopicPrefix,
		logger:      log.Named("kafka"),
	}
}

// ContractExtracted publishes the extraction-complete event.
func (p *Producer) ContractExtracted(ctx context.Context, payload ContractExtractedPayload) {
	p.publish(ctx, TopicContractExtracted, payload.ContractID, payload)
}

// ConflictsDetected publishes the conflict-scan-complete event.
func (p *Producer) ConflictsDetected(ctx context.Context, payload ConflictsDetectedPayload) {
	p.publish(ctx, TopicConflictsDetected, payload.ContractID, payload)
}

// QuestionAnswered publishes the question-answered event.
func (p *Producer) QuestionAnswered(ctx context.Context, payload QuestionAnsweredPayload) {
	p.publish(ctx, TopicQuestionAnswered, payload.QuestionAnswerID, payload)
}

// publish wraps the payload in an envelope and writes it.  Failures are
// counted and logged, never surfaced.
func (p *Producer) publish(ctx context.Context, topic, key string, payload interface{}) {
	if p.closed.Load() {
		return
	}

	env, err := NewEventEnvelope(topic, payload)
	if err != nil {
		p.failed.Add(1)
		p.logger.Warn("event envelope failed", logging.String("topic", topic), logging.Err(err))
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.failed.Add(1)
		p.logger.Warn("event serialization failed", logging.String("topic", topic), logging.Err(err))
		return
	}

	msg := kafka.Message{
		Topic: p.topicPrefix + topic,
		Key:   []byte(key),
		Value: value,
		Time:  env.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		p.logger.Warn("event publish failed",
			logging.String("topic", msg.Topic),
			logging.String("event_id", env.EventID),
			logging.Err(err))
		return
	}

	p.sent.Add(1)
	p.logger.Debug("event published",
		logging.String("topic", msg.Topic),
		logging.String("event_id", env.EventID))
}

// Close shuts the producer down.  Close is idempotent.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed",
		logging.Int64("sent", p.sent.Load()),
		logging.Int64("failed", p.failed.Load()))
	return err
}

// NopPublisher drops all events.  It backs the disabled-Kafka mode.
type NopPublisher struct{}

func (NopPublisher) ContractExtracted(context.Context, ContractExtractedPayload) {}
func (NopPublisher) ConflictsDetected(context.Context, ConflictsDetectedPayload) {}
func (NopPublisher) QuestionAnswered(context.Context, QuestionAnsweredPayload)   {}
func (NopPublisher) Close() error                                                { return nil }
