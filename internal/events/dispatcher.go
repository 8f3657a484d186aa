package events

import (
	"context"
	"errors"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Publisher sends events towards their handlers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publisher
	Subscribe(eventType EventType, handler EventHandler)
}

// registry holds handlers by event type.
type registry struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

func newRegistry() *registry {
	return &registry{listeners: make(map[EventType][]EventHandler)}
}

// Subscribe registers a handler for the given event type.
func (r *registry) Subscribe(eventType EventType, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[eventType] = append(r.listeners[eventType], handler)
}

// dispatch invokes every handler for the event. A failing handler does not
// stop the others; their errors are joined.
func (r *registry) dispatch(ctx context.Context, event Event) error {
	r.mu.RLock()
	handlers := append([]EventHandler{}, r.listeners[event.Type]...)
	r.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InMemoryDispatcher is a simple synchronous dispatcher.
type InMemoryDispatcher struct {
	*registry
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() *InMemoryDispatcher {
	return &InMemoryDispatcher{registry: newRegistry()}
}

// Publish synchronously invokes handlers for the given event.
func (d *InMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	return d.dispatch(ctx, event)
}
