package controller

import (
	"github.com/brianhealey/booklist/internal/books"
	"github.com/brianhealey/booklist/internal/models"
)

// UpdateDraft applies field edits to the draft.
func (c *Controller) UpdateDraft(upd models.DraftUpdate) models.View {
	return c.apply(func(m *mutation) bool {
		if upd.Empty() {
			return false
		}
		upd.ApplyTo(&m.draft)
		return true
	})
}

// BeginEdit copies the record with the given id into the draft and switches
// submit to edit mode. Unknown ids are ignored.
func (c *Controller) BeginEdit(id string) models.View {
	return c.apply(func(m *mutation) bool {
		b, ok := c.store.Find(id)
		if !ok {
			return false
		}
		m.draft = models.DraftFromBook(b)
		m.reset = true
		return true
	})
}

// Submit commits the draft: an edit of the record under edit when in edit
// mode, otherwise an add with a fresh id. The draft is always reset.
func (c *Controller) Submit() models.View {
	return c.apply(func(m *mutation) bool {
		if m.draft.Editing() {
			m.action = &books.Action{Type: books.ActionEdit, Book: m.draft.Book(m.draft.EditingID)}
		} else {
			m.action = &books.Action{Type: books.ActionAdd, Book: m.draft.Book(c.ids.NewID())}
		}
		m.draft = models.Draft{}
		m.reset = true
		return true
	})
}

// CancelEdit resets the draft without touching the store.
func (c *Controller) CancelEdit() models.View {
	return c.apply(func(m *mutation) bool {
		m.draft = models.Draft{}
		m.reset = true
		return true
	})
}

// Delete removes the record with the given id. Deleting the record under
// edit also leaves edit mode. Unknown ids are ignored.
func (c *Controller) Delete(id string) models.View {
	return c.apply(func(m *mutation) bool {
		if _, ok := c.store.Find(id); !ok {
			return false
		}
		m.action = &books.Action{Type: books.ActionDelete, ID: id}
		if m.draft.EditingID == id {
			m.draft = models.Draft{}
			m.reset = true
		}
		return true
	})
}
