// Package controller implements the book list interaction controller — the
// single owner of one record store and the draft being composed against it.
package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/brianhealey/booklist/internal/books"
	"github.com/brianhealey/booklist/internal/events"
	"github.com/brianhealey/booklist/internal/models"
	"github.com/brianhealey/booklist/internal/poster"
)

// Decoder turns raw image bytes into an embeddable poster value.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (string, error)
}

// Controller mediates user input and the record store.
// All mutations go through the apply() method which ensures the store
// dispatch, draft replacement and event publishing happen atomically.
type Controller struct {
	mu    sync.Mutex
	store *books.Store
	draft models.Draft
	rev   uint64

	// posterGen identifies the draft a poster task may merge into. Every
	// draft reset and every new attach bumps it.
	posterGen uint64
	task      *poster.Task
	tasks     sync.WaitGroup

	ids     books.IDGenerator
	decoder Decoder
	bus     *events.Bus

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a controller over store. A nil bus gets a private one.
func New(store *books.Store, ids books.IDGenerator, dec Decoder, bus *events.Bus) *Controller {
	if bus == nil {
		bus = events.NewBus()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		store:   store,
		ids:     ids,
		decoder: dec,
		bus:     bus,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Events returns the bus every new view is published on.
func (c *Controller) Events() *events.Bus { return c.bus }

// View returns the current snapshot.
func (c *Controller) View() models.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Books returns the committed collection.
func (c *Controller) Books() []models.Book { return c.store.Books() }

// Close cancels in-flight poster work, waits for it and closes the bus.
func (c *Controller) Close() {
	// Cancelling under mu orders it against AttachPoster's tasks.Add.
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
	c.tasks.Wait()
	c.bus.Close()
}

// mutation is the scratch state handed to apply callbacks.
type mutation struct {
	draft  models.Draft
	action *books.Action
	// reset marks the draft as replaced; pending poster work is dropped.
	reset bool
}

// apply is the core mutation primitive. It:
//  1. Acquires the lock
//  2. Hands a copy of the draft to fn (fn returns false for a no-op)
//  3. Dispatches fn's store action, if any
//  4. Commits the draft, bumps the revision and publishes the view
func (c *Controller) apply(fn func(m *mutation) bool) models.View {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := mutation{draft: c.draft}
	if !fn(&m) {
		return c.viewLocked()
	}
	if m.action != nil {
		c.store.Dispatch(*m.action)
	}
	if m.reset {
		c.dropPosterLocked()
	}
	c.draft = m.draft
	return c.publishLocked()
}

func (c *Controller) publishLocked() models.View {
	c.rev++
	view := c.viewLocked()
	c.bus.Publish(view)
	return view
}

func (c *Controller) viewLocked() models.View {
	return models.View{
		Books:         c.store.Books(),
		Draft:         c.draft,
		PosterPending: c.task != nil,
		Revision:      c.rev,
	}
}

// dropPosterLocked cancels the in-flight decode so it can never merge.
func (c *Controller) dropPosterLocked() {
	c.posterGen++
	if c.task != nil {
		c.task.Cancel()
		c.task = nil
		slog.Debug("controller: pending poster dropped")
	}
}
