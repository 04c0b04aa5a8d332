package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technotes/apiserver/types"
)

func TestNoteService_ListAll_Empty(t *testing.T) {
	f := newFixture(t)

	_, err := f.notes.ListAll(context.Background())

	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "No notes found")
}

func TestNoteService_ListAll_EnrichesInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, err := f.users.Create(ctx, CreateUserInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	titles := []string{"first", "second", "third", "fourth", "fifth", "sixth", "seventh", "eighth", "ninth", "tenth"}
	for _, title := range titles {
		_, err := f.notes.Create(ctx, CreateNoteInput{User: alice.ID, Title: title, Text: "body"})
		require.NoError(t, err)
	}
	_, err = f.notes.Create(ctx, CreateNoteInput{User: "ghost", Title: "orphan", Text: "body"})
	require.NoError(t, err)

	notes, err := f.notes.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, len(titles)+1)

	for i, title := range titles {
		assert.Equal(t, title, notes[i].Title)
		require.NotNil(t, notes[i].Username)
		assert.Equal(t, "alice", *notes[i].Username)
	}
	assert.Equal(t, "orphan", notes[len(titles)].Title)
	assert.Nil(t, notes[len(titles)].Username)
}

func TestNoteService_ListAll_OwnerLookupFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.notes.Create(ctx, CreateNoteInput{User: "u1", Title: "t", Text: "x"})
	require.NoError(t, err)

	svc := NewNoteService(f.store.Notes(), failingUsers{err: errBoom}, nil, nil)
	_, err = svc.ListAll(ctx)

	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNoteService_Create(t *testing.T) {
	f := newFixture(t)

	note, err := f.notes.Create(context.Background(), CreateNoteInput{User: " u1 ", Title: " Todo ", Text: "buy milk"})
	require.NoError(t, err)

	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "u1", note.User)
	assert.Equal(t, "Todo", note.Title)
	assert.False(t, note.Completed)
	assert.Equal(t, []string{types.EventNoteCreated}, f.events.eventTypes())
}

func TestNoteService_Create_MissingField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []CreateNoteInput{
		{Title: "t", Text: "x"},
		{User: "u", Text: "x"},
		{User: "u", Title: "t"},
		{User: "u", Title: "   ", Text: "x"},
	}
	for _, in := range cases {
		_, err := f.notes.Create(ctx, in)
		assert.ErrorIs(t, err, ErrValidation)
		assert.EqualError(t, err, "All fields are required")
	}

	list, err := f.store.Notes().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNoteService_Create_DuplicateTitleIgnoresCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.notes.Create(ctx, CreateNoteInput{User: "u", Title: "Todo", Text: "x"})
	require.NoError(t, err)

	for _, title := range []string{"TODO", "todo", "Tödo"} {
		_, err = f.notes.Create(ctx, CreateNoteInput{User: "u", Title: title, Text: "y"})
		assert.ErrorIs(t, err, ErrConflict, title)
		assert.EqualError(t, err, "Duplicate note title")
	}

	list, err := f.store.Notes().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNoteService_Update_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.notes.Create(ctx, CreateNoteInput{User: "u", Title: "Todo", Text: "x"})
	require.NoError(t, err)

	updated, err := f.notes.Update(ctx, UpdateNoteInput{
		ID: created.ID, User: "u", Title: "TODO", Text: "y", Completed: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "TODO", updated.Title)

	notes, err := f.notes.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "y", notes[0].Text)
	assert.True(t, notes[0].Completed)
	assert.Equal(t, []string{types.EventNoteCreated, types.EventNoteUpdated}, f.events.eventTypes())
}

func TestNoteService_TextKeptVerbatim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.notes.Create(ctx, CreateNoteInput{User: "u", Title: "Todo", Text: "  indented\n"})
	require.NoError(t, err)
	assert.Equal(t, "  indented\n", created.Text)

	updated, err := f.notes.Update(ctx, UpdateNoteInput{
		ID: created.ID, User: "u", Title: "Todo", Text: "\tcode block\n\n", Completed: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "\tcode block\n\n", updated.Text)

	stored, err := f.store.Notes().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "\tcode block\n\n", stored.Text)
}

func TestNoteService_Update_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.notes.Create(ctx, CreateNoteInput{User: "u", Title: "first", Text: "x"})
	require.NoError(t, err)
	_, err = f.notes.Create(ctx, CreateNoteInput{User: "u", Title: "second", Text: "x"})
	require.NoError(t, err)

	_, err = f.notes.Update(ctx, UpdateNoteInput{ID: first.ID, User: "u", Title: "first", Text: "x"})
	assert.ErrorIs(t, err, ErrValidation, "completed must be present")

	_, err = f.notes.Update(ctx, UpdateNoteInput{ID: "507f1f77bcf86cd799439011", User: "u", Title: "t", Text: "x", Completed: boolPtr(false)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Note not found")

	_, err = f.notes.Update(ctx, UpdateNoteInput{ID: first.ID, User: "u", Title: "Second", Text: "x", Completed: boolPtr(false)})
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Duplicate note title")
}

func TestNoteService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	note, err := f.notes.Create(ctx, CreateNoteInput{User: "u", Title: "Todo", Text: "x"})
	require.NoError(t, err)

	_, err = f.notes.Delete(ctx, " ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Note ID required")

	deleted, err := f.notes.Delete(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Todo", deleted.Title)

	_, err = f.notes.Delete(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Note not found")
}

func TestNoteService_PublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	f.events.err = errBoom

	_, err := f.notes.Create(context.Background(), CreateNoteInput{User: "u", Title: "t", Text: "x"})

	require.NoError(t, err)
	assert.Len(t, f.events.eventTypes(), 1)
}
