package memstore

import (
	"context"

	"github.com/technotes/apiserver/internal/collate"
	"github.com/technotes/apiserver/internal/store"
	"github.com/technotes/apiserver/types"
)

type noteRecord struct {
	note types.Note
	key  string
}

type NoteRepository struct {
	s *Store
}

func (r *NoteRepository) List(ctx context.Context) ([]types.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	notes := make([]types.Note, 0, len(r.s.noteOrder))
	for _, id := range r.s.noteOrder {
		notes = append(notes, r.s.notes[id].note)
	}
	return notes, nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (types.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.notes[id]
	if !ok {
		return types.Note{}, store.ErrNotFound
	}
	return rec.note, nil
}

func (r *NoteRepository) GetByTitle(ctx context.Context, title string) (types.Note, error) {
	key := collate.Key(title)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range r.s.noteOrder {
		if rec := r.s.notes[id]; rec.key == key {
			return rec.note, nil
		}
	}
	return types.Note{}, store.ErrNotFound
}

func (r *NoteRepository) GetByUser(ctx context.Context, userID string) (types.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range r.s.noteOrder {
		if rec := r.s.notes[id]; rec.note.User == userID {
			return rec.note, nil
		}
	}
	return types.Note{}, store.ErrNotFound
}

func (r *NoteRepository) Create(ctx context.Context, note types.Note) (types.Note, error) {
	key := collate.Key(note.Title)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.noteKeyTaken(key, "") {
		return types.Note{}, store.ErrDuplicate
	}

	now := r.s.now()
	note.ID = newID()
	note.CreatedAt = now
	note.UpdatedAt = now

	r.s.notes[note.ID] = noteRecord{note: note, key: key}
	r.s.noteOrder = append(r.s.noteOrder, note.ID)
	return note, nil
}

func (r *NoteRepository) Update(ctx context.Context, note types.Note) (types.Note, error) {
	key := collate.Key(note.Title)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.notes[note.ID]
	if !ok {
		return types.Note{}, store.ErrNotFound
	}
	if r.s.noteKeyTaken(key, note.ID) {
		return types.Note{}, store.ErrDuplicate
	}

	note.CreatedAt = existing.note.CreatedAt
	note.UpdatedAt = r.s.now()
	r.s.notes[note.ID] = noteRecord{note: note, key: key}
	return note, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.notes, id)
	r.s.noteOrder = removeID(r.s.noteOrder, id)
	return nil
}

func (s *Store) noteKeyTaken(key, exceptID string) bool {
	for id, rec := range s.notes {
		if id != exceptID && rec.key == key {
			return true
		}
	}
	return false
}
