package ws

import (
	"encoding/json"
	"time"
)

// Event is the wire format for document change notifications pushed to
// connected clients.
type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// DeletedPayload carries a deletion notification
type DeletedPayload struct {
	DocumentID string `json:"document_id"`
}

// NewEvent builds an event, marshaling the payload
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = bytes
	}

	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   raw,
	}, nil
}
