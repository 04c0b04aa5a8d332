package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/technotes/apiserver/internal/collate"
	"github.com/technotes/apiserver/types"
)

const noteColumns = `id, user_id, title, text, completed, created_at, updated_at`

// NoteRepository handles persistence for notes.
type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) List(ctx context.Context) ([]types.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]types.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (types.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByTitle matches on the folded title key.
func (r *NoteRepository) GetByTitle(ctx context.Context, title string) (types.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE title_key = $1`
	return r.getOne(ctx, query, collate.Key(title))
}

// GetByUser returns any one note owned by userID.
func (r *NoteRepository) GetByUser(ctx context.Context, userID string) (types.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1 LIMIT 1`
	return r.getOne(ctx, query, userID)
}

func (r *NoteRepository) Create(ctx context.Context, note types.Note) (types.Note, error) {
	now := time.Now().UTC()
	note.ID = uuid.NewString()
	note.CreatedAt = now
	note.UpdatedAt = now

	const query = `
		INSERT INTO notes (id, user_id, title, title_key, text, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.User,
		note.Title,
		collate.Key(note.Title),
		note.Text,
		note.Completed,
		note.CreatedAt,
		note.UpdatedAt,
	); err != nil {
		return types.Note{}, translateError(err)
	}
	return note, nil
}

func (r *NoteRepository) Update(ctx context.Context, note types.Note) (types.Note, error) {
	note.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE notes
		SET user_id = $1,
			title = $2,
			title_key = $3,
			text = $4,
			completed = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		note.User,
		note.Title,
		collate.Key(note.Title),
		note.Text,
		note.Completed,
		note.UpdatedAt,
		note.ID,
	)
	if err != nil {
		return types.Note{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Note{}, err
	}
	if affected == 0 {
		return types.Note{}, ErrNotFound
	}
	return note, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NoteRepository) getOne(ctx context.Context, query string, arg any) (types.Note, error) {
	note, err := scanNote(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Note{}, ErrNotFound
		}
		return types.Note{}, err
	}
	return note, nil
}

func scanNote(row rowScanner) (types.Note, error) {
	var note types.Note
	err := row.Scan(
		&note.ID,
		&note.User,
		&note.Title,
		&note.Text,
		&note.Completed,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	return note, err
}
