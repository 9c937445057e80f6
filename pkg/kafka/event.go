package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Aggregate names the entity an event is about. Its ID is used as the
// message key.
type Aggregate struct {
	Type string
	ID   string
}

// Event is the JSON envelope every storefront message is published in.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	SchemaVersion int             `json:"schema_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	SessionID     string          `json:"session_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// EventOption sets an optional envelope field. Empty values are ignored.
type EventOption func(*Event)

// WithCorrelationID tags the event with the request's correlation ID.
func WithCorrelationID(id string) EventOption {
	return func(e *Event) {
		if id != "" {
			e.CorrelationID = id
		}
	}
}

// WithSessionID tags the event with the shopper session that caused it.
func WithSessionID(id string) EventOption {
	return func(e *Event) {
		if id != "" {
			e.SessionID = id
		}
	}
}

// NewEvent marshals data into a schema version 1 envelope stamped with a
// fresh ID and the current UTC time.
func NewEvent(eventType, source string, agg Aggregate, data any, opts ...EventOption) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	e := &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   agg.ID,
		AggregateType: agg.Type,
		SchemaVersion: 1,
		OccurredAt:    time.Now().UTC(),
		Source:        source,
		Data:          raw,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// headers lists the envelope fields consumers route on without decoding the
// body.
func (e *Event) headers() []kafka.Header {
	hs := []kafka.Header{
		{Key: "event_type", Value: []byte(e.EventType)},
		{Key: "source", Value: []byte(e.Source)},
	}
	if e.CorrelationID != "" {
		hs = append(hs, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}
	if e.SessionID != "" {
		hs = append(hs, kafka.Header{Key: "session_id", Value: []byte(e.SessionID)})
	}
	return hs
}
