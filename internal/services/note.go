package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/technotes/apiserver/internal/logging"
	"github.com/technotes/apiserver/internal/store"
	"github.com/technotes/apiserver/types"
	"golang.org/x/sync/errgroup"
)

const ownerLookupConcurrency = 8

// NoteRepository defines persistence operations for notes.
type NoteRepository interface {
	List(ctx context.Context) ([]types.Note, error)
	GetByID(ctx context.Context, id string) (types.Note, error)
	GetByTitle(ctx context.Context, title string) (types.Note, error)
	GetByUser(ctx context.Context, userID string) (types.Note, error)
	Create(ctx context.Context, note types.Note) (types.Note, error)
	Update(ctx context.Context, note types.Note) (types.Note, error)
	Delete(ctx context.Context, id string) error
}

type CreateNoteInput struct {
	User  string
	Title string
	Text  string
}

type UpdateNoteInput struct {
	ID        string
	User      string
	Title     string
	Text      string
	Completed *bool
}

// NoteService encapsulates note use-cases.
type NoteService struct {
	notes NoteRepository
	users UserRepository
	notifier
}

func NewNoteService(notes NoteRepository, users UserRepository, events EventPublisher, logger logging.Logger) *NoteService {
	return &NoteService{
		notes:    notes,
		users:    users,
		notifier: newNotifier(events, logger),
	}
}

// ListAll returns every note with its owner's username attached. Owners are
// looked up concurrently; the result keeps the store's note order.
func (s *NoteService) ListAll(ctx context.Context) ([]types.NoteWithUsername, error) {
	notes, err := s.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if len(notes) == 0 {
		return nil, notFoundError(msgNoNotesFound)
	}

	result := make([]types.NoteWithUsername, len(notes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ownerLookupConcurrency)
	for i, note := range notes {
		g.Go(func() error {
			result[i].Note = note
			owner, err := s.users.GetByID(gctx, note.User)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get owner of note %s: %w", note.ID, err)
			}
			result[i].Username = &owner.Username
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create stores a new, incomplete note. Text is kept exactly as given.
func (s *NoteService) Create(ctx context.Context, in CreateNoteInput) (types.Note, error) {
	in.User = strings.TrimSpace(in.User)
	in.Title = strings.TrimSpace(in.Title)
	if in.User == "" || in.Title == "" || in.Text == "" {
		return types.Note{}, validationError(msgAllFieldsRequired)
	}

	if _, err := s.notes.GetByTitle(ctx, in.Title); err == nil {
		return types.Note{}, conflictError(msgDuplicateNoteTitle)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Note{}, fmt.Errorf("check note title: %w", err)
	}

	note, err := s.notes.Create(ctx, types.Note{
		User:  in.User,
		Title: in.Title,
		Text:  in.Text,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return types.Note{}, conflictError(msgDuplicateNoteTitle)
	}
	if err != nil {
		return types.Note{}, fmt.Errorf("create note: %w", err)
	}

	s.notify(ctx, types.EventNoteCreated, note.ID, note.Title)
	return note, nil
}

// Update replaces every mutable field of an existing note. Keeping the
// note's own title, in any letter case, is not a conflict.
func (s *NoteService) Update(ctx context.Context, in UpdateNoteInput) (types.Note, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.User = strings.TrimSpace(in.User)
	in.Title = strings.TrimSpace(in.Title)
	if in.ID == "" || in.User == "" || in.Title == "" || in.Text == "" || in.Completed == nil {
		return types.Note{}, validationError(msgAllFieldsRequired)
	}

	note, err := s.notes.GetByID(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return types.Note{}, notFoundError(msgNoteNotFound)
	}
	if err != nil {
		return types.Note{}, fmt.Errorf("get note: %w", err)
	}

	if dup, err := s.notes.GetByTitle(ctx, in.Title); err == nil && dup.ID != note.ID {
		return types.Note{}, conflictError(msgDuplicateNoteTitle)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return types.Note{}, fmt.Errorf("check note title: %w", err)
	}

	note.User = in.User
	note.Title = in.Title
	note.Text = in.Text
	note.Completed = *in.Completed

	updated, err := s.notes.Update(ctx, note)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return types.Note{}, notFoundError(msgNoteNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return types.Note{}, conflictError(msgDuplicateNoteTitle)
	case err != nil:
		return types.Note{}, fmt.Errorf("update note: %w", err)
	}

	s.notify(ctx, types.EventNoteUpdated, updated.ID, updated.Title)
	return updated, nil
}

// Delete removes a note and returns it as it was before deletion.
func (s *NoteService) Delete(ctx context.Context, id string) (types.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.Note{}, validationError(msgNoteIDRequired)
	}

	note, err := s.notes.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return types.Note{}, notFoundError(msgNoteNotFound)
	}
	if err != nil {
		return types.Note{}, fmt.Errorf("get note: %w", err)
	}

	if err := s.notes.Delete(ctx, note.ID); errors.Is(err, store.ErrNotFound) {
		return types.Note{}, notFoundError(msgNoteNotFound)
	} else if err != nil {
		return types.Note{}, fmt.Errorf("delete note: %w", err)
	}

	s.notify(ctx, types.EventNoteDeleted, note.ID, note.Title)
	return note, nil
}
