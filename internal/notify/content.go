// Package notify holds the rendered notification value, the handler contract
// that produces it, and the delivery channels that carry it out of the
// consumer. Handlers are pure: payload in, content out, no side effects.
package notify

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedPayload is wrapped by handlers when a required payload field is
// missing or has the wrong type. The dispatcher treats it as terminal for the
// event id: redelivery cannot fix a producer bug.
var ErrMalformedPayload = errors.New("malformed payload")

// Content is a rendered notification, opaque to the dedup core. RecipientHint
// tells the delivery channel who this is for ("user:alice", "admins"); the
// channel decides how to route it.
type Content struct {
	RecipientHint string `json:"recipient_hint"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
}

// HandlerFunc renders one event type's payload into notification content.
type HandlerFunc func(payload map[string]any) (Content, error)

// stringField extracts a required string field from the payload.
func stringField(payload map[string]any, key string) (string, error) {
	v, ok := payload[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrMalformedPayload, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: field %q is not a non-empty string", ErrMalformedPayload, key)
	}
	return s, nil
}

// numField extracts a required numeric field. Producers disagree on whether
// counts arrive as JSON numbers or numeric strings, so both are accepted.
func numField(payload map[string]any, key string) (string, error) {
	v, ok := payload[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrMalformedPayload, key)
	}
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(n), nil
	case string:
		if _, err := strconv.ParseFloat(n, 64); err != nil {
			return "", fmt.Errorf("%w: field %q is not numeric", ErrMalformedPayload, key)
		}
		return n, nil
	default:
		return "", fmt.Errorf("%w: field %q is not numeric", ErrMalformedPayload, key)
	}
}

// optField returns the field as a display string, or def when absent.
func optField(payload map[string]any, key, def string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
