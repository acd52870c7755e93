// Package session keeps one independent book list workspace per browser
// session. Workspaces live only in memory and are discarded when the session
// goes idle.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brianhealey/booklist/internal/controller"
)

// Factory builds the controller for a new session.
type Factory func() *controller.Controller

type entry struct {
	ctrl     *controller.Controller
	lastSeen time.Time
}

// Registry maps session ids to controllers.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	limit    int // 0 means unlimited
	factory  Factory
	now      func() time.Time
}

// NewRegistry creates a registry whose sessions expire after ttl of inactivity.
func NewRegistry(ttl time.Duration, factory Factory) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the controller for id and marks the session as active.
func (r *Registry) Get(id string) (*controller.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.ctrl, true
}

// Create starts a new session and returns its id. When the registry is at
// its limit the least recently used session is evicted first, preferring
// sessions without a live subscriber.
func (r *Registry) Create() (string, *controller.Controller) {
	ctrl := r.factory()
	id := uuid.NewString()

	r.mu.Lock()
	var evicted *entry
	if r.limit > 0 && len(r.sessions) >= r.limit {
		evicted = r.evictLocked()
	}
	r.sessions[id] = &entry{ctrl: ctrl, lastSeen: r.now()}
	n := len(r.sessions)
	r.mu.Unlock()

	if evicted != nil {
		evicted.ctrl.Close()
		slog.Info("session: limit reached, evicted least recently used", "limit", r.Limit())
	}
	slog.Debug("session: created", "id", id, "sessions", n)
	return id, ctrl
}

// evictLocked removes and returns the least recently used session.
func (r *Registry) evictLocked() *entry {
	var (
		victimID   string
		victim     *entry
		subscribed bool
	)
	for id, e := range r.sessions {
		sub := e.ctrl.Events().SubscriberCount() > 0
		switch {
		case victim == nil,
			subscribed && !sub,
			subscribed == sub && e.lastSeen.Before(victim.lastSeen):
			victimID, victim, subscribed = id, e, sub
		}
	}
	if victim != nil {
		delete(r.sessions, victimID)
	}
	return victim
}

// Resolve returns the session for id, creating a new one when id is unknown.
func (r *Registry) Resolve(id string) (string, *controller.Controller, bool) {
	if id != "" {
		if ctrl, ok := r.Get(id); ok {
			return id, ctrl, false
		}
	}
	newID, ctrl := r.Create()
	return newID, ctrl, true
}

// End discards the session immediately.
func (r *Registry) End(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		e.ctrl.Close()
		slog.Debug("session: ended", "id", id)
	}
}

// SetTTL changes the idle timeout for subsequent sweeps.
func (r *Registry) SetTTL(ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ttl = ttl
}

// SetLimit caps the number of live sessions. Zero removes the cap.
func (r *Registry) SetLimit(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit = max(0, n)
}

// Limit returns the session cap.
func (r *Registry) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle longer than the ttl and returns how many were
// removed. Sessions with a live subscriber (an open SSE stream) are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.ttl)
	var expired []*entry
	for id, e := range r.sessions {
		if e.lastSeen.After(cutoff) || e.ctrl.Events().SubscriberCount() > 0 {
			continue
		}
		delete(r.sessions, id)
		expired = append(expired, e)
	}
	r.mu.Unlock()

	for _, e := range expired {
		e.ctrl.Close()
	}
	if len(expired) > 0 {
		slog.Info("session: evicted idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is cancelled, then closes every session.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close ends every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range all {
		e.ctrl.Close()
	}
}
