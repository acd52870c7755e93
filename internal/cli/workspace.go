package cli

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/brianhealey/booklist/internal/books"
	"github.com/brianhealey/booklist/internal/config"
	"github.com/brianhealey/booklist/internal/controller"
	"github.com/brianhealey/booklist/internal/poster"
)

// workspace holds the live settings and the shared poster decoder.
type workspace struct {
	store    *config.FileStore
	settings atomic.Pointer[config.Settings]
	decoder  *poster.Decoder
}

func loadWorkspace(path string) (*workspace, error) {
	store := config.NewFileStore(path)
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	ws := &workspace{
		store:   store,
		decoder: poster.NewDecoder(settings.Limits()),
	}
	ws.settings.Store(settings)
	return ws, nil
}

func (ws *workspace) Settings() *config.Settings {
	return ws.settings.Load()
}

// apply adopts reloaded settings. Poster limits change immediately; seed and
// id scheme apply to workspaces created afterwards.
func (ws *workspace) apply(s *config.Settings) {
	ws.settings.Store(s)
	ws.decoder.SetLimits(s.Limits())
}

// newController builds one workspace from the current settings.
func (ws *workspace) newController() *controller.Controller {
	s := ws.Settings()
	ids := books.NewIDGenerator(s.IDScheme)
	return controller.New(books.NewStore(s.SeedBooks(ids)), ids, ws.decoder, nil)
}

// watch hot-reloads the settings file until ctx is done. onReload runs after
// the new settings are in place.
func (ws *workspace) watch(ctx context.Context, onReload func(*config.Settings)) error {
	return config.Watch(ctx, ws.store, func(s *config.Settings) {
		ws.apply(s)
		if onReload != nil {
			onReload(s)
		}
	})
}
