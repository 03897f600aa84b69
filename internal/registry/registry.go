// Package registry maps event-type tags to the handlers that render them.
// Registration happens once at startup and the registry is read-only after
// that, so Resolve needs no locking during dispatch.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/masonvale/notifyhub/internal/notify"
)

var (
	ErrDuplicateType = errors.New("event type already registered")
	ErrUnknownType   = errors.New("unknown event type")
)

type Registry struct {
	handlers map[string]notify.HandlerFunc
}

func New() *Registry {
	return &Registry{handlers: make(map[string]notify.HandlerFunc)}
}

// Register binds eventType to handler. Registering a type twice is a startup
// configuration error and fails fast rather than shadowing the first handler.
func (r *Registry) Register(eventType string, handler notify.HandlerFunc) error {
	if eventType == "" {
		return errors.New("event type is required")
	}
	if handler == nil {
		return fmt.Errorf("nil handler for event type %s", eventType)
	}
	if _, ok := r.handlers[eventType]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, eventType)
	}
	r.handlers[eventType] = handler
	return nil
}

func (r *Registry) Resolve(eventType string) (notify.HandlerFunc, error) {
	h, ok := r.handlers[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, eventType)
	}
	return h, nil
}

// Types returns the registered event types in sorted order; the consumer uses
// it to open one bus subscription per type.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
