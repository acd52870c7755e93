package models

// DraftUpdate is the PATCH body for field-level draft edits. Nil fields are
// left untouched.
type DraftUpdate struct {
	Title   *string `json:"title,omitempty"`
	Author  *string `json:"author,omitempty"`
	Details *string `json:"details,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u DraftUpdate) Empty() bool {
	return u.Title == nil && u.Author == nil && u.Details == nil
}

// ApplyTo copies the set fields onto d.
func (u DraftUpdate) ApplyTo(d *Draft) {
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.Author != nil {
		d.Author = *u.Author
	}
	if u.Details != nil {
		d.Details = *u.Details
	}
}
