// Package books holds the committed book collection and the pure transition
// functions that produce a new collection from the current one.
package books

import "github.com/brianhealey/booklist/internal/models"

// ActionType names a store transition.
type ActionType string

const (
	ActionAdd    ActionType = "ADD_BOOK"
	ActionEdit   ActionType = "EDIT_BOOK"
	ActionDelete ActionType = "DELETE_BOOK"
)

// Action is one transition request. Book is used by add and edit, ID by delete.
type Action struct {
	Type ActionType
	Book models.Book
	ID   string
}

// Add returns a new collection with b appended. Ids are not checked for
// uniqueness; callers obtain them from an IDGenerator.
func Add(list []models.Book, b models.Book) []models.Book {
	next := make([]models.Book, 0, len(list)+1)
	next = append(next, list...)
	return append(next, b)
}

// Edit returns a new collection in which every record whose id equals b.ID is
// replaced by b verbatim. Order is preserved and unmatched records are left
// as they are.
func Edit(list []models.Book, b models.Book) []models.Book {
	next := make([]models.Book, len(list))
	for i, cur := range list {
		if cur.ID == b.ID {
			next[i] = b
			continue
		}
		next[i] = cur
	}
	return next
}

// Delete returns a new collection without the record(s) whose id equals id.
func Delete(list []models.Book, id string) []models.Book {
	next := make([]models.Book, 0, len(list))
	for _, cur := range list {
		if cur.ID != id {
			next = append(next, cur)
		}
	}
	return next
}

// Reduce applies a to list. Unknown action types return a copy of list.
func Reduce(list []models.Book, a Action) []models.Book {
	switch a.Type {
	case ActionAdd:
		return Add(list, a.Book)
	case ActionEdit:
		return Edit(list, a.Book)
	case ActionDelete:
		return Delete(list, a.ID)
	default:
		return clone(list)
	}
}

func clone(list []models.Book) []models.Book {
	next := make([]models.Book, len(list))
	copy(next, list)
	return next
}

// find returns the first record with the given id.
func find(list []models.Book, id string) (models.Book, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}
