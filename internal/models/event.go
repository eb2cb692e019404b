package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of a published event.
type EventType string

const (
	EventTypeRatesUpdated   EventType = "rates.updated"
	EventTypeQuoteCreated   EventType = "quote.created"
	EventTypeInquiryCreated EventType = "inquiry.created"
)

// Event is the envelope published to Kafka.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       EventType       `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an event envelope with a marshalled payload.
func NewEvent(eventType EventType, payload interface{}) (*Event, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = b
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	}, nil
}
