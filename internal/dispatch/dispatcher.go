// Package dispatch runs inbound events through the idempotency protocol:
// identify, reserve against the ledger, render, deliver. Reservation happens
// before handling, so a handler failure after a won reservation loses that
// notification rather than risking duplicate noise on redelivery.
package dispatch

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/masonvale/notifyhub/internal/event"
	"github.com/masonvale/notifyhub/internal/ledger"
	"github.com/masonvale/notifyhub/internal/logging"
	"github.com/masonvale/notifyhub/internal/metrics"
	"github.com/masonvale/notifyhub/internal/notify"
	"github.com/masonvale/notifyhub/internal/registry"
	"github.com/masonvale/notifyhub/internal/tracing"
)

// Outcome is the terminal state of one dispatch.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

type Dispatcher struct {
	store   ledger.Store
	reg     *registry.Registry
	channel notify.Channel
	logger  *logging.Logger
}

// New constructs a Dispatcher. All collaborators are passed explicitly; the
// dispatcher holds no other state and is safe for concurrent use.
func New(store ledger.Store, reg *registry.Registry, channel notify.Channel, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{store: store, reg: reg, channel: channel, logger: logger}
}

// Dispatch runs one event through the protocol and reports its outcome.
//
// Ack contract for the bus layer: acknowledge the message unless the returned
// error wraps ledger.ErrUnavailable. Unknown types and malformed payloads are
// terminal for the event id (the reservation already stands) and must be
// acked; only an unreachable ledger earns redelivery.
//
// Events without an event_id cannot be deduplicated. They are processed
// unconditionally with a warning rather than dropped, matching the upstream
// producers' instrumentation gaps; no reservation is ever made for them.
func (d *Dispatcher) Dispatch(ctx context.Context, env event.Envelope) (Outcome, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "dispatch.event",
		attribute.String("event_id", env.EventID),
		attribute.String("event_type", env.EventType),
	)
	defer span.End()

	outcome, err := d.run(ctx, env)

	span.SetAttributes(attribute.String("outcome", string(outcome)))
	if err != nil {
		tracing.SetSpanError(ctx, err)
	}
	metrics.RecordOutcome(env.EventType, string(outcome), time.Since(start))
	return outcome, err
}

func (d *Dispatcher) run(ctx context.Context, env event.Envelope) (Outcome, error) {
	if env.EventID == "" {
		d.logger.WithContext(ctx).WithEventType(env.EventType).
			Warn("event without event_id, processing without dedup")
		return d.handle(ctx, env)
	}

	tracing.AddSpanEvent(ctx, "ledger.try_reserve")
	reserved, err := d.store.TryReserve(ctx, env.EventID, env.EventType)
	if err != nil {
		metrics.RecordStoreError("reserve")
		d.logger.WithContext(ctx).WithEvent(env.EventID).WithEventType(env.EventType).
			WithError(err).Error("ledger reserve failed, leaving event to redelivery")
		return OutcomeFailed, err
	}
	if !reserved {
		tracing.AddSpanEvent(ctx, "duplicate_detected")
		metrics.RecordDuplicate(env.EventType)
		d.logger.WithContext(ctx).WithEvent(env.EventID).WithEventType(env.EventType).
			Warn("duplicate event, skipping")
		return OutcomeDuplicate, nil
	}

	return d.handle(ctx, env)
}

// handle resolves and invokes the handler, then emits the content. By the
// time it runs, any reservation has already been made: every failure below is
// terminal for this event id and the caller must still ack.
func (d *Dispatcher) handle(ctx context.Context, env event.Envelope) (Outcome, error) {
	handler, err := d.reg.Resolve(env.EventType)
	if err != nil {
		metrics.RecordHandlerFailure(env.EventType, "unknown_type")
		d.logger.WithContext(ctx).WithEvent(env.EventID).WithEventType(env.EventType).
			WithError(err).Error("no handler for event type, notification lost")
		return OutcomeFailed, err
	}

	tracing.AddSpanEvent(ctx, "handler.render")
	content, err := handler(env.Payload)
	if err != nil {
		reason := "handler"
		if errors.Is(err, notify.ErrMalformedPayload) {
			reason = "malformed_payload"
		}
		metrics.RecordHandlerFailure(env.EventType, reason)
		d.logger.WithContext(ctx).WithEvent(env.EventID).WithEventType(env.EventType).
			WithError(err).Error("handler failed, notification lost")
		return OutcomeFailed, err
	}

	// Emit is fire-and-forget: the reservation stands whether or not the
	// channel accepts the content, so a channel error is logged, not retried.
	tracing.AddSpanEvent(ctx, "channel.deliver")
	if err := d.channel.Deliver(ctx, content); err != nil {
		metrics.RecordHandlerFailure(env.EventType, "channel")
		d.logger.WithContext(ctx).WithEvent(env.EventID).WithEventType(env.EventType).
			WithError(err).Error("delivery channel rejected notification")
		return OutcomeCommitted, nil
	}

	d.logger.WithContext(ctx).WithEvent(env.EventID).WithEventType(env.EventType).
		WithField("recipient", content.RecipientHint).Info("notification emitted")
	return OutcomeCommitted, nil
}

// ShouldAck maps a dispatch result to the bus acknowledgment contract.
func ShouldAck(err error) bool {
	return !errors.Is(err, ledger.ErrUnavailable)
}
