package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"recap/internal/types"
)

// ErrUnhandledEvent marks a push event no handler is registered for.
var ErrUnhandledEvent = errors.New("no handler registered for event")

type HandlerFunc func(ctx context.Context, ev types.PushEvent) error

// EventBus routes push events to exactly one handler per kind. Handlers
// register once at construction time and are torn down together, so a
// reload never leaves a stray subscription behind.
type EventBus struct {
	mu       sync.Mutex
	handlers map[types.EventKind]HandlerFunc
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: map[types.EventKind]HandlerFunc{}}
}

func (b *EventBus) Register(kind types.EventKind, fn HandlerFunc) error {
	if b == nil || fn == nil || kind == "" {
		return errors.New("invalid handler registration")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = map[types.EventKind]HandlerFunc{}
	}
	if _, exists := b.handlers[kind]; exists {
		return fmt.Errorf("handler already registered for %s", kind)
	}
	b.handlers[kind] = fn
	return nil
}

func (b *EventBus) Dispatch(ctx context.Context, ev types.PushEvent) error {
	if b == nil {
		return ErrUnhandledEvent
	}
	b.mu.Lock()
	fn := b.handlers[ev.Kind]
	b.mu.Unlock()
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrUnhandledEvent, ev.Kind)
	}
	return fn(ctx, ev)
}

// Teardown unregisters every handler at once.
func (b *EventBus) Teardown() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[types.EventKind]HandlerFunc{}
}
