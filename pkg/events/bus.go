// Package events provides the synchronous topic bus that connects the
// interactivity engines with each other and with the host.
package events

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/cuepoint/internal/logging"
)

// Handler receives the payload published on a topic.
type Handler func(payload any)

// TapFunc receives every publication regardless of topic.
type TapFunc func(topic string, payload any)

type subscription struct {
	id uint64
	fn Handler
}

type tap struct {
	id uint64
	fn TapFunc
}

// Bus delivers publications synchronously, in subscription order, on the
// publisher's goroutine. A panicking handler is logged and does not stop
// delivery to the remaining handlers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	taps   []tap
	nextID uint64
	logger *slog.Logger
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger configures a logger for handler failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[string][]subscription),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn on topic and returns a function that removes exactly
// this subscription. Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(topic string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subs[topic]) == 0 {
			delete(b.subs, topic)
		}
	}
}

// Tap registers fn to observe every publication, after topic subscribers ran.
func (b *Bus) Tap(fn TapFunc) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.taps = append(b.taps, tap{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, t := range b.taps {
			if t.id == id {
				b.taps = append(b.taps[:i:i], b.taps[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to the subscribers of topic registered at the time
// of the call. Handlers may publish or (un)subscribe re-entrantly.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[topic]...)
	taps := append([]tap(nil), b.taps...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(topic, func() { s.fn(payload) })
	}
	for _, t := range taps {
		b.deliver(topic, func() { t.fn(topic, payload) })
	}
}

// Subscribers returns the number of handlers registered on topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Clear removes every subscription and tap.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]subscription)
	b.taps = nil
}

func (b *Bus) deliver(topic string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "topic", topic, "error", fmt.Errorf("%v", r))
		}
	}()
	call()
}
