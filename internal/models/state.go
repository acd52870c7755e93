// Package models defines the data structures shared by the book list store,
// the form controller and the presentation layers.
package models

// Book is one committed entry in the list.
type Book struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Details string `json:"details"`
	Poster  string `json:"poster,omitempty"` // data URL, empty when absent
}

// HasPoster reports whether a poster image is attached.
func (b Book) HasPoster() bool { return b.Poster != "" }

// Draft is the record being composed or edited. It is a scratch copy with no
// reference back into the store.
type Draft struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Details   string `json:"details"`
	Poster    string `json:"poster,omitempty"`
	EditingID string `json:"editing_id,omitempty"` // empty when adding
}

// Editing reports whether the draft targets an existing record.
func (d Draft) Editing() bool { return d.EditingID != "" }

// Book converts the draft into a record with the given id.
func (d Draft) Book(id string) Book {
	return Book{
		ID:      id,
		Title:   d.Title,
		Author:  d.Author,
		Details: d.Details,
		Poster:  d.Poster,
	}
}

// DraftFromBook copies a record into a draft in edit mode.
func DraftFromBook(b Book) Draft {
	return Draft{
		Title:     b.Title,
		Author:    b.Author,
		Details:   b.Details,
		Poster:    b.Poster,
		EditingID: b.ID,
	}
}

// View is the snapshot the presentation layers render.
type View struct {
	Books         []Book `json:"books"`
	Draft         Draft  `json:"draft"`
	PosterPending bool   `json:"poster_pending"`
	Revision      uint64 `json:"revision"`
}

// DeepCopy returns a copy of the view that shares no slices with v.
func (v View) DeepCopy() View {
	next := v
	next.Books = make([]Book, len(v.Books))
	copy(next.Books, v.Books)
	return next
}

// Info is the system information response.
type Info struct {
	Version  string `json:"version"`
	Hostname string `json:"hostname"`
	Sessions int    `json:"sessions"`
}
