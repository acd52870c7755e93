// Package events provides a small publish-subscribe bus that fans view
// snapshots out to live subscribers (SSE streams, the terminal UI).
package events

import (
	"sync"

	"github.com/brianhealey/booklist/internal/models"
)

const subBufferSize = 8

// Bus is a non-blocking publish-subscribe event bus.
// Subscribers that are slow to consume events will have events dropped rather
// than blocking publishers.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]chan models.View
	closed bool
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]chan models.View),
	}
}

// Subscribe creates a new subscription with the given ID.
// Subscribing to a closed bus returns an already closed channel.
func (b *Bus) Subscribe(id string) <-chan models.View {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan models.View, subBufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	if old, ok := b.subs[id]; ok {
		close(old)
	}
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish sends a view to all subscribers.
// If a subscriber's channel is full, the event is dropped (non-blocking).
func (b *Bus) Publish(view models.View) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- view.DeepCopy():
		default:
			// Drop if subscriber is slow
		}
	}
}

// Close closes every subscription. Later subscriptions are closed on arrival.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	b.closed = true
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
