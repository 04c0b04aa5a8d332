package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/technotes/apiserver/internal/logging"
	"github.com/technotes/apiserver/types"
)

const exportContentType = "application/json"

// ObjectWriter is the slice of object storage the export needs.
type ObjectWriter interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
}

// Snapshot is the exported document. Users are serialised without
// credentials.
type Snapshot struct {
	ExportedAt time.Time    `json:"exported_at"`
	Users      []types.User `json:"users"`
	Notes      []types.Note `json:"notes"`
}

// ExportService writes a point-in-time snapshot of both collections to
// object storage.
type ExportService struct {
	users   UserRepository
	notes   NoteRepository
	objects ObjectWriter
	logger  logging.Logger
	now     func() time.Time
}

func NewExportService(users UserRepository, notes NoteRepository, objects ObjectWriter, logger logging.Logger) *ExportService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ExportService{
		users:   users,
		notes:   notes,
		objects: objects,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Export uploads the snapshot and returns the object key it was written to.
func (s *ExportService) Export(ctx context.Context) (string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}
	notes, err := s.notes.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list notes: %w", err)
	}

	snapshot := Snapshot{
		ExportedAt: s.now(),
		Users:      users,
		Notes:      notes,
	}
	if snapshot.Users == nil {
		snapshot.Users = []types.User{}
	}
	if snapshot.Notes == nil {
		snapshot.Notes = []types.Note{}
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.objects.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	key := ExportKey(snapshot.ExportedAt)
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), exportContentType); err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	s.logger.Info(ctx, "export written",
		"bucket", s.objects.Bucket(),
		"key", key,
		"users", len(users),
		"notes", len(notes),
	)
	return key, nil
}

// ExportKey names the object for a snapshot taken at t.
func ExportKey(t time.Time) string {
	return "exports/technotes-" + t.UTC().Format("20060102T150405Z") + ".json"
}
