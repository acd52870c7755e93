// Package config loads booklist runtime settings.
package config

// Store is the interface for loading settings.
type Store interface {
	// Load returns the current settings. Returns DefaultSettings if no file exists.
	Load() (*Settings, error)

	// Path returns the file path used by this store.
	Path() string
}
