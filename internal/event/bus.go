package event

import (
	"log/slog"
	"sync"
)

// Wildcard subscribers receive every published event.
const Wildcard = "*"

type HandlerFunc func(raw any)

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
	}
}

func (b *Bus) Subscribe(eventName string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish runs every matching handler on the caller's goroutine, in
// subscription order, so a simulation step's events are observed in the order
// they were produced. A panicking handler is logged and skipped.
func (b *Bus) Publish(eventName string, evt any) {
	b.mu.RLock()
	handlers := make([]HandlerFunc, 0, len(b.handlers[eventName])+len(b.handlers[Wildcard]))
	handlers = append(handlers, b.handlers[eventName]...)
	if eventName != Wildcard {
		handlers = append(handlers, b.handlers[Wildcard]...)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(eventName, handler, evt)
	}
}

func (b *Bus) dispatch(eventName string, h HandlerFunc, evt any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", eventName, "panic", r)
		}
	}()
	h(evt)
}
