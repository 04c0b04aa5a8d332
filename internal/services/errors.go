package services

import "errors"

// Error kinds. Use errors.Is against these to classify a service failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error is a domain failure with a message safe to show to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func validationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func notFoundError(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func conflictError(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

const (
	msgAllFieldsRequired  = "All fields are required"
	msgNoNotesFound       = "No notes found"
	msgNoteNotFound       = "Note not found"
	msgNoteIDRequired     = "Note ID required"
	msgDuplicateNoteTitle = "Duplicate note title"
	msgNoUsersFound       = "No users found"
	msgUserNotFound       = "User not found"
	msgUserIDRequired     = "User ID required"
	msgDuplicateUsername  = "Duplicate username"
	msgUserHasNotes       = "User has assigned notes"
	msgPasswordTooLong    = "Password too long"
)
