package config

import (
	"log/slog"
	"time"

	"github.com/brianhealey/booklist/internal/books"
	"github.com/brianhealey/booklist/internal/models"
	"github.com/brianhealey/booklist/internal/poster"
)

const (
	DefaultAddr        = ":8080"
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1000
	minSessionTTL      = time.Minute
)

// Settings is the contents of booklist.yaml.
type Settings struct {
	Addr        string         `yaml:"addr"`
	SessionTTL  time.Duration  `yaml:"session_ttl"`
	MaxSessions int            `yaml:"max_sessions"` // 0 means unlimited
	IDScheme    string         `yaml:"id_scheme"`    // "uuid" | "counter"
	MDNS        bool           `yaml:"mdns"`
	Poster      PosterSettings `yaml:"poster"`
	Seed        []SeedBook     `yaml:"seed,omitempty"`
}

// PosterSettings bounds poster decoding.
type PosterSettings struct {
	MaxBytes         int64   `yaml:"max_bytes"`
	MaxDimension     int     `yaml:"max_dimension"`
	MaxPixels        int64   `yaml:"max_pixels"`
	DecodesPerSecond float64 `yaml:"decodes_per_second"`
	Burst            int     `yaml:"burst"`
}

// SeedBook is a record every new session starts with.
type SeedBook struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author"`
	Details string `yaml:"details,omitempty"`
}

// DefaultSettings returns the settings used when no file is found.
func DefaultSettings() Settings {
	l := poster.DefaultLimits()
	return Settings{
		Addr:        DefaultAddr,
		SessionTTL:  DefaultSessionTTL,
		MaxSessions: DefaultMaxSessions,
		IDScheme:    "uuid",
		Poster: PosterSettings{
			MaxBytes:         l.MaxBytes,
			MaxDimension:     l.MaxDimension,
			MaxPixels:        l.MaxPixels,
			DecodesPerSecond: l.PerSecond,
			Burst:            l.Burst,
		},
	}
}

// Limits converts the poster settings for poster.NewDecoder.
func (s Settings) Limits() poster.Limits {
	return poster.Limits{
		MaxBytes:     s.Poster.MaxBytes,
		MaxDimension: s.Poster.MaxDimension,
		MaxPixels:    s.Poster.MaxPixels,
		PerSecond:    s.Poster.DecodesPerSecond,
		Burst:        s.Poster.Burst,
	}
}

// SeedBooks materialises the seed list with fresh ids.
func (s Settings) SeedBooks(ids books.IDGenerator) []models.Book {
	out := make([]models.Book, 0, len(s.Seed))
	for _, sb := range s.Seed {
		out = append(out, models.Book{
			ID:      ids.NewID(),
			Title:   sb.Title,
			Author:  sb.Author,
			Details: sb.Details,
		})
	}
	return out
}

// normalize fills in defaults for fields missing from older or hand-written
// files.
func normalize(s *Settings) {
	def := DefaultSettings()

	if s.Addr == "" {
		s.Addr = def.Addr
	}
	if s.SessionTTL <= 0 {
		s.SessionTTL = def.SessionTTL
	} else if s.SessionTTL < minSessionTTL {
		slog.Warn("config: session_ttl too short, clamping", "ttl", s.SessionTTL, "min", minSessionTTL)
		s.SessionTTL = minSessionTTL
	}
	if s.MaxSessions < 0 {
		s.MaxSessions = def.MaxSessions
	}
	switch s.IDScheme {
	case "uuid", "counter":
	case "":
		s.IDScheme = def.IDScheme
	default:
		slog.Warn("config: unknown id_scheme, using uuid", "id_scheme", s.IDScheme)
		s.IDScheme = def.IDScheme
	}
	if s.Poster.MaxBytes <= 0 {
		s.Poster.MaxBytes = def.Poster.MaxBytes
	}
	if s.Poster.MaxPixels <= 0 {
		s.Poster.MaxPixels = def.Poster.MaxPixels
	}
	if s.Poster.MaxDimension < 0 {
		s.Poster.MaxDimension = 0
	}
	if s.Poster.DecodesPerSecond < 0 {
		s.Poster.DecodesPerSecond = 0
	}
	if s.Poster.Burst <= 0 {
		s.Poster.Burst = def.Poster.Burst
	}
}
