package controller

import (
	"context"
	"errors"
	"log/slog"

	"github.com/brianhealey/booklist/internal/models"
	"github.com/brianhealey/booklist/internal/poster"
)

// AttachPoster decodes data in the background and merges the result into the
// draft that was current when the call was made. If that draft is reset or
// another poster is attached first, the result is discarded. Empty data
// (no file chosen) is ignored.
func (c *Controller) AttachPoster(name string, data []byte) models.View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(data) == 0 || c.ctx.Err() != nil {
		return c.viewLocked()
	}

	c.dropPosterLocked()
	gen := c.posterGen
	c.tasks.Add(1)
	c.task = poster.Start(c.ctx, func(ctx context.Context) {
		defer c.tasks.Done()
		url, err := c.decoder.Decode(ctx, data)
		c.finishPoster(gen, name, url, err)
	})
	slog.Debug("controller: poster decode started", "file", name, "bytes", len(data))
	return c.publishLocked()
}

func (c *Controller) finishPoster(gen uint64, name, url string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.posterGen {
		slog.Debug("controller: stale poster discarded", "file", name)
		return
	}
	c.task = nil
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("controller: poster decode failed", "file", name, "err", err)
		}
		c.publishLocked()
		return
	}
	c.draft.Poster = url
	c.publishLocked()
}

// ClearPoster removes the draft poster and drops any pending decode.
func (c *Controller) ClearPoster() models.View {
	return c.apply(func(m *mutation) bool {
		if m.draft.Poster == "" && c.task == nil {
			return false
		}
		m.draft.Poster = ""
		m.reset = true
		return true
	})
}

// Wait blocks until no poster decode is pending or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		t := c.task
		c.mu.Unlock()
		if t == nil {
			return nil
		}
		if err := t.Wait(ctx); err != nil {
			return err
		}
	}
}
