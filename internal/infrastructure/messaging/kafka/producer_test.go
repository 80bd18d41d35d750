package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testProducer(w writerInterface, prefix string) *Producer {
	return &Producer{
		writer:      w,
		topicPrefix: prefix,
		logger:      logging.NewNopLogger(),
	}
}

func TestProducerPublishesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w, "clauselens.")

	p.ContractExtracted(context.Background(), ContractExtractedPayload{
		ContractID:  "abc",
		Name:        "MSA 2026",
		ClauseCount: 12,
		ExtractedAt: time.Now().UTC(),
	})

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "clauselens.contract.extracted", msg.Topic)
	assert.Equal(t, []byte("abc"), msg.Key)

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, TopicContractExtracted, env.EventType)
	assert.Equal(t, "clauselens", env.Source)
	assert.Equal(t, "v1", env.SchemaVersion)
	assert.NotEmpty(t, env.EventID)

	var payload ContractExtractedPayload
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, "MSA 2026", payload.Name)
	assert.Equal(t, 12, payload.ClauseCount)
}

func TestProducerFailureIsSwallowed(t *testing.T) {
	w := &fakeWriter{err: fmt.Errorf("broker unreachable")}
	p := testProducer(w, "")

	// Must not panic or surface the error.
	p.ConflictsDetected(context.Background(), ConflictsDetectedPayload{ContractID: "x", ConflictCount: 3})
	assert.Empty(t, w.messages)
	assert.Equal(t, int64(1), p.failed.Load())
}

func TestProducerAllEventTypes(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w, "")

	p.ContractExtracted(context.Background(), ContractExtractedPayload{ContractID: "a"})
	p.ConflictsDetected(context.Background(), ConflictsDetectedPayload{ContractID: "a"})
	p.QuestionAnswered(context.Background(), QuestionAnsweredPayload{QuestionAnswerID: "q"})

	require.Len(t, w.messages, 3)
	assert.Equal(t, TopicContractExtracted, w.messages[0].Topic)
	assert.Equal(t, TopicConflictsDetected, w.messages[1].Topic)
	assert.Equal(t, TopicQuestionAnswered, w.messages[2].Topic)
	assert.Equal(t, int64(3), p.sent.Load())
}

func TestProducerCloseStopsPublishing(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w, "")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	require.NoError(t, p.Close()) // idempotent

	p.QuestionAnswered(context.Background(), QuestionAnsweredPayload{QuestionAnswerID: "q"})
	assert.Empty(t, w.messages)
}

func TestNewProducerDisabled(t *testing.T) {
	p := NewProducer(config.KafkaConfig{Enabled: false}, nil)
	_, ok := p.(NopPublisher)
	assert.True(t, ok)

	// No-op publisher accepts everything quietly.
	p.ContractExtracted(context.Background(), ContractExtractedPayload{})
	assert.NoError(t, p.Close())
}
