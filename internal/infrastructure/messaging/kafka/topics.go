// Package kafka publishes analysis lifecycle events.  Publishing is
// best-effort everywhere: a broker failure is logged and never fails the
// operation that produced the event.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/clauselens/clauselens/pkg/errors"
)

// Topic names, prefixed with the configured topic prefix at publish time.
const (
	TopicContractExtracted = "contract.extracted"
	TopicConflictsDetected = "conflicts.detected"
	TopicQuestionAnswered  = "question.answered"
)

// EventEnvelope is the wire format shared by all published events.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// ContractExtractedPayload announces a completed clause extraction.
type ContractExtractedPayload struct {
	ContractID  string    `json:"contract_id"`
	Name        string    `json:"name"`
	ClauseCount int       `json:"clause_count"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// ConflictsDetectedPayload announces a completed conflict scan.
type ConflictsDetectedPayload struct {
	ContractID    string    `json:"contract_id"`
	ConflictCount int       `json:"conflict_count"`
	DetectedAt    time.Time `json:"detected_at"`
}

// QuestionAnsweredPayload announces an answered question.
type QuestionAnsweredPayload struct {
	QuestionAnswerID string    `json:"question_answer_id"`
	Confidence       float64   `json:"confidence"`
	EvidenceCount    int       `json:"evidence_count"`
	RequiresReview   bool      `json:"requires_review"`
	AnsweredAt       time.Time `json:"answered_at"`
}

// NewEventEnvelope wraps a payload in the standard envelope.
func NewEventEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        "clauselens",
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, target)
}
