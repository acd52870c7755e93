package books

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out record ids. Implementations must never return the
// same id twice within one process.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// CounterGenerator issues prefix-1, prefix-2, ... Safe for concurrent use.
type CounterGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewID implements IDGenerator.
func (g *CounterGenerator) NewID() string {
	id := strconv.FormatUint(g.n.Add(1), 10)
	if g.Prefix == "" {
		return id
	}
	return g.Prefix + "-" + id
}

// NewIDGenerator returns the generator for a settings scheme name:
// "counter" or anything else for UUIDs.
func NewIDGenerator(scheme string) IDGenerator {
	if scheme == "counter" {
		return &CounterGenerator{Prefix: "book"}
	}
	return UUIDGenerator{}
}

var (
	_ IDGenerator = UUIDGenerator{}
	_ IDGenerator = (*CounterGenerator)(nil)
)
