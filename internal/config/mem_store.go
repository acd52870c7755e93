package config

import "sync"

// MemStore is an in-memory Store for tests that never touches disk.
type MemStore struct {
	mu       sync.Mutex
	settings *Settings
}

// NewMemStore returns a new in-memory store (defaults to DefaultSettings on Load).
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Load returns a copy of the stored settings, or DefaultSettings if none were set.
func (m *MemStore) Load() (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		def := DefaultSettings()
		return &def, nil
	}
	cp := *m.settings
	cp.Seed = append([]SeedBook(nil), m.settings.Seed...)
	return &cp, nil
}

// Set stores a normalized copy of s.
func (m *MemStore) Set(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	normalize(&s)
	s.Seed = append([]SeedBook(nil), s.Seed...)
	m.settings = &s
}

// Path returns ":memory:" to indicate this is an in-memory store.
func (m *MemStore) Path() string { return ":memory:" }

// Ensure MemStore implements config.Store
var _ Store = (*MemStore)(nil)
