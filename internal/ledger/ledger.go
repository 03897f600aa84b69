// Package ledger is the durable record of event IDs that have already been
// handled. Its TryReserve operation is the correctness anchor for the whole
// consumer: it must be an atomic insert-if-absent (uniqueness constraint or
// equivalent), never a check-then-insert pair.
package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is wrapped by every backend when the backing storage cannot
// be reached. Callers must never treat it as "not a duplicate": an event whose
// reservation status is unknown must go back to the bus for redelivery.
var ErrUnavailable = errors.New("ledger unavailable")

// Record is one processed-event row. Rows are append-only: created exactly
// once when an event is first reserved, never mutated, never deleted through
// this package.
type Record struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Store is the dedup ledger contract.
type Store interface {
	// Exists reports whether eventID has already been reserved.
	Exists(ctx context.Context, eventID string) (bool, error)

	// TryReserve atomically records eventID if and only if no record for it
	// exists. It returns true when this caller won the reservation and false
	// when the event was already reserved, regardless of arrival order.
	TryReserve(ctx context.Context, eventID, eventType string) (bool, error)
}

// Pinger is implemented by backends that can report reachability; the health
// endpoint uses it.
type Pinger interface {
	Ping(ctx context.Context) error
}
