// Package notify carries human-readable notifications (toasts) from the core to the presentation layer.
package notify

import (
	"sync"
	"time"
)

// Level distinguishes success from failure notifications.
type Level string

// Levels.
const (
	Info  Level = "info"
	Error Level = "error"
)

// Event is one advisory notification. It is not part of the functional contract.
type Event struct {
	Level       Level
	Title       string
	Description string
	At          time.Time
}

// Handler consumes events.
type Handler func(Event)

// Bus fans events out to subscribers synchronously, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus returns a Bus without subscribers.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers h.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers ev to every subscriber. A nil Bus drops events.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()
	for _, h := range hs {
		h(ev)
	}
}

// Info publishes a success notification.
func (b *Bus) Info(title, description string) {
	b.Publish(Event{Level: Info, Title: title, Description: description})
}

// Fail publishes a failure notification.
func (b *Bus) Fail(title, description string) {
	b.Publish(Event{Level: Error, Title: title, Description: description})
}
