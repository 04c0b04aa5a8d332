package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technotes/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.ListAll(ctx)
	assert.EqualError(t, err, "No users found")

	user, err := f.users.Create(ctx, CreateUserInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, types.Roles{types.RoleEmployee}, user.Roles)
	assert.True(t, user.Active)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))

	users, err := f.users.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUserService_Create_UsesConfiguredCost(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store.Users(), f.store.Notes(), nil, nil, PasswordHashCost)

	user, err := svc.Create(context.Background(), CreateUserInput{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(user.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestUserService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Create(ctx, CreateUserInput{Username: "  ", Password: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.users.Create(ctx, CreateUserInput{Username: "alice"})
	assert.EqualError(t, err, "All fields are required")
}

func TestUserService_PasswordTooLong(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := strings.Repeat("p", MaxPasswordBytes+1)

	_, err := f.users.Create(ctx, CreateUserInput{Username: "alice", Password: long})
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Password too long")

	user, err := f.users.Create(ctx, CreateUserInput{Username: "alice", Password: strings.Repeat("p", MaxPasswordBytes)})
	require.NoError(t, err)

	_, err = f.users.Update(ctx, UpdateUserInput{
		ID: user.ID, Username: "alice", Password: long, Roles: types.Roles{types.RoleEmployee}, Active: boolPtr(true),
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Password too long")

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestUserService_Create_KeepsExplicitRoles(t *testing.T) {
	f := newFixture(t)

	user, err := f.users.Create(context.Background(), CreateUserInput{
		Username: "mgr", Password: "x", Roles: types.Roles{types.RoleManager, types.RoleAdmin},
	})
	require.NoError(t, err)
	assert.Equal(t, types.Roles{types.RoleManager, types.RoleAdmin}, user.Roles)
}

func TestUserService_Create_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.users.Create(ctx, CreateUserInput{Username: "Alice", Password: "x"})
	require.NoError(t, err)

	_, err = f.users.Create(ctx, CreateUserInput{Username: "ALICE", Password: "y"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Duplicate username")
}

func TestUserService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.Create(ctx, CreateUserInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	originalHash := user.PasswordHash

	updated, err := f.users.Update(ctx, UpdateUserInput{
		ID: user.ID, Username: "Alice", Roles: types.Roles{types.RoleManager}, Active: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Username)
	assert.Equal(t, types.Roles{types.RoleManager}, updated.Roles)
	assert.False(t, updated.Active)
	assert.Equal(t, originalHash, updated.PasswordHash, "password is kept when not supplied")

	updated, err = f.users.Update(ctx, UpdateUserInput{
		ID: user.ID, Username: "Alice", Password: "secret2", Roles: types.Roles{types.RoleManager}, Active: boolPtr(true),
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("secret2")))
}

func TestUserService_Update_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, err := f.users.Create(ctx, CreateUserInput{Username: "alice", Password: "x"})
	require.NoError(t, err)
	_, err = f.users.Create(ctx, CreateUserInput{Username: "bob", Password: "x"})
	require.NoError(t, err)

	_, err = f.users.Update(ctx, UpdateUserInput{ID: alice.ID, Username: "alice", Active: boolPtr(true)})
	assert.ErrorIs(t, err, ErrValidation, "roles are required on update")

	_, err = f.users.Update(ctx, UpdateUserInput{ID: alice.ID, Username: "alice", Roles: types.Roles{"Employee"}})
	assert.ErrorIs(t, err, ErrValidation, "active is required on update")

	_, err = f.users.Update(ctx, UpdateUserInput{ID: "missing", Username: "x", Roles: types.Roles{"Employee"}, Active: boolPtr(true)})
	assert.EqualError(t, err, "User not found")

	_, err = f.users.Update(ctx, UpdateUserInput{ID: alice.ID, Username: "BOB", Roles: types.Roles{"Employee"}, Active: boolPtr(true)})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, err := f.users.Create(ctx, CreateUserInput{Username: "alice", Password: "x"})
	require.NoError(t, err)
	note, err := f.notes.Create(ctx, CreateNoteInput{User: alice.ID, Title: "t", Text: "x"})
	require.NoError(t, err)

	_, err = f.users.Delete(ctx, "")
	assert.EqualError(t, err, "User ID required")

	_, err = f.users.Delete(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "User has assigned notes")
	_, err = f.store.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err, "user must survive a blocked delete")

	_, err = f.notes.Delete(ctx, note.ID)
	require.NoError(t, err)

	deleted, err := f.users.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", deleted.Username)

	_, err = f.users.Delete(ctx, alice.ID)
	assert.EqualError(t, err, "User not found")
}

func TestUserService_Delete_NoteCheckComesFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.notes.Create(ctx, CreateNoteInput{User: "nobody", Title: "t", Text: "x"})
	require.NoError(t, err)

	_, err = f.users.Delete(ctx, "nobody")

	assert.EqualError(t, err, "User has assigned notes")
}

func TestUserService_EventsCarryNoCredentials(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Create(context.Background(), CreateUserInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, types.EventUserCreated, event.Type)
	assert.Equal(t, "alice", event.Name)
	assert.NotContains(t, event.Name, "secret1")
}
