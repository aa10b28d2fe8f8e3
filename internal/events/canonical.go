package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Envelope is what transports publish for each outbox entry.
type Envelope struct {
	EventID         uuid.UUID       `json:"event_id"`
	EventType       string          `json:"event_type"`
	Aggregate       string          `json:"aggregate"`
	TimestampMicros int64           `json:"timestamp"`
	Payload         json.RawMessage `json:"payload"`
}

var errMissingType = errors.New("events: event type missing")

// NewEnvelope wraps an outbox entry for publishing.
func NewEnvelope(entry OutboxEntry) (Envelope, error) {
	eventType := strings.TrimSpace(entry.Type)
	if eventType == "" {
		return Envelope{}, errMissingType
	}
	if !json.Valid(entry.Payload) {
		return Envelope{}, fmt.Errorf("events: payload for %s is not valid json", entry.ID)
	}
	return Envelope{
		EventID:         entry.ID,
		EventType:       eventType,
		Aggregate:       entry.AggregateID,
		TimestampMicros: entry.CreatedAt.UTC().UnixMicro(),
		Payload:         append([]byte(nil), entry.Payload...),
	}, nil
}

// Marshal encodes the envelope.
func (e Envelope) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("events: marshal envelope: %w", err)
	}
	return data, nil
}
