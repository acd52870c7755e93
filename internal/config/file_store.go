package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the settings file looked up when no path is given.
const DefaultFileName = "booklist.yaml"

// FileStore reads settings from a YAML file.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the YAML file at path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

// Path returns the file path used by this store.
func (s *FileStore) Path() string { return s.path }

// Load reads the settings from disk. Returns DefaultSettings when the file
// does not exist or cannot be parsed.
func (s *FileStore) Load() (*Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			def := DefaultSettings()
			return &def, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", s.path, err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		slog.Warn("config: corrupt YAML settings, using defaults", "path", s.path, "err", err)
		def := DefaultSettings()
		return &def, nil
	}

	normalize(&settings)
	return &settings, nil
}

var _ Store = (*FileStore)(nil)
