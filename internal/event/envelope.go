package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the wire form of an event as published on the bus. EventID
// identifies one logical occurrence across all redeliveries; an empty EventID
// means the producer did not tag the event and it cannot be deduplicated.
// Payload is a flat field map whose required keys depend on EventType.
type Envelope struct {
	EventID      string            `json:"event_id,omitempty"`
	EventType    string            `json:"event_type"`
	Payload      map[string]any    `json:"payload"`
	PublishedAt  string            `json:"published_at,omitempty"` // RFC3339
	TraceHeaders map[string]string `json:"trace_headers,omitempty"`
}

var ErrBadEnvelope = errors.New("bad event envelope")

// Decode parses a raw bus message into an Envelope. A message without an
// event_type can never be routed to a handler, so it is rejected here rather
// than deeper in the dispatch path.
func Decode(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.EventType == "" {
		return Envelope{}, fmt.Errorf("%w: missing event_type", ErrBadEnvelope)
	}
	if env.Payload == nil {
		env.Payload = map[string]any{}
	}
	return env, nil
}
