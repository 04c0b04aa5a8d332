package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportKey(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "exports/technotes-20260304T050607Z.json", ExportKey(ts))
}

func TestExportService_Export(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, err := f.users.Create(ctx, CreateUserInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	_, err = f.notes.Create(ctx, CreateNoteInput{User: alice.ID, Title: "t", Text: "x"})
	require.NoError(t, err)

	objects := newMemObjects()
	svc := NewExportService(f.store.Users(), f.store.Notes(), objects, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	key, err := svc.Export(ctx)
	require.NoError(t, err)

	assert.True(t, objects.ensured)
	assert.Equal(t, "exports/technotes-20260102T030405Z.json", key)
	assert.Equal(t, "application/json", objects.ctypes[key])

	body := objects.objects[key]
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), alice.PasswordHash)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Contains(t, decoded, "exported_at")

	var users []map[string]any
	require.NoError(t, json.Unmarshal(decoded["users"], &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0]["username"])
}

func TestExportService_EmptyCollections(t *testing.T) {
	f := newFixture(t)
	objects := newMemObjects()
	svc := NewExportService(f.store.Users(), f.store.Notes(), objects, nil)

	key, err := svc.Export(context.Background())
	require.NoError(t, err)

	var snapshot struct {
		Users []any `json:"users"`
		Notes []any `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(objects.objects[key], &snapshot))
	assert.NotNil(t, snapshot.Users)
	assert.NotNil(t, snapshot.Notes)
}

func TestExportService_UploadFailure(t *testing.T) {
	f := newFixture(t)
	objects := newMemObjects()
	objects.putErr = errBoom
	svc := NewExportService(f.store.Users(), f.store.Notes(), objects, nil)

	_, err := svc.Export(context.Background())

	assert.ErrorIs(t, err, errBoom)
}
