package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technotes/apiserver/internal/store"
	"github.com/technotes/apiserver/internal/store/memstore"
	"github.com/technotes/apiserver/types"
)

func TestUserRepository_CRUD(t *testing.T) {
	users := memstore.New().Users()
	ctx := context.Background()

	created, err := users.Create(ctx, types.User{Username: "Alice", Roles: types.Roles{"Employee"}, Active: true})
	require.NoError(t, err)
	require.Len(t, created.ID, 24)

	got, err := users.GetByUsername(ctx, "ÀLICE")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = users.Create(ctx, types.User{Username: "alice"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	created.Username = "alicia"
	updated, err := users.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = users.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, users.Delete(ctx, created.ID))
	assert.ErrorIs(t, users.Delete(ctx, created.ID), store.ErrNotFound)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	users := memstore.New().Users()
	ctx := context.Background()

	created, err := users.Create(ctx, types.User{Username: "bob", Roles: types.Roles{"Employee"}})
	require.NoError(t, err)
	created.Roles[0] = "Admin"

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Roles{"Employee"}, got.Roles)
}

func TestNoteRepository_CRUD(t *testing.T) {
	notes := memstore.New().Notes()
	ctx := context.Background()

	first, err := notes.Create(ctx, types.Note{User: "u-1", Title: "Todo", Text: "a"})
	require.NoError(t, err)
	second, err := notes.Create(ctx, types.Note{User: "u-2", Title: "Other", Text: "b"})
	require.NoError(t, err)

	_, err = notes.Create(ctx, types.Note{User: "u-1", Title: "TODO", Text: "c"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	byUser, err := notes.GetByUser(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byUser.ID)

	first.Title = "todo"
	_, err = notes.Update(ctx, first)
	require.NoError(t, err, "renaming to own title is allowed")

	second.Title = "ToDo"
	_, err = notes.Update(ctx, second)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	list, err := notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)

	require.NoError(t, notes.Delete(ctx, first.ID))
	_, err = notes.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
