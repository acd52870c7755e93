package books

import (
	"sync"

	"github.com/brianhealey/booklist/internal/models"
)

// Store owns one committed collection. Every Dispatch replaces the whole
// collection with the result of Reduce; snapshots handed out are never
// mutated afterwards.
type Store struct {
	mu    sync.RWMutex
	books []models.Book
}

// NewStore returns a store seeded with a copy of seed.
func NewStore(seed []models.Book) *Store {
	return &Store{books: clone(seed)}
}

// Dispatch applies a and returns the new collection.
func (s *Store) Dispatch(a Action) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = Reduce(s.books, a)
	return clone(s.books)
}

// Books returns a copy of the current collection.
func (s *Store) Books() []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.books)
}

// Find returns the record with the given id.
func (s *Store) Find(id string) (models.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.books, id)
}

// Len returns the number of committed records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
