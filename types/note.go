package types

import "time"

// Note is a titled piece of work assigned to a user.
type Note struct {
	// ID is the opaque identifier assigned by the store.
	ID string `json:"id" db:"id"`

	// User references the owning user's ID. It is not checked against
	// existing users when written.
	User string `json:"user" db:"user_id"`

	// Title is unique under case- and accent-insensitive comparison.
	Title string `json:"title" db:"title"`

	// Text is the free-form body of the note.
	Text string `json:"text" db:"text"`

	// Completed marks the note as done. New notes start incomplete.
	Completed bool `json:"completed" db:"completed"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NoteWithUsername is a note enriched with its owner's username for display.
// Username is nil when the owner no longer exists.
type NoteWithUsername struct {
	Note
	Username *string `json:"username"`
}
