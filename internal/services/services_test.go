package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/technotes/apiserver/internal/store/memstore"
	"github.com/technotes/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []types.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event types.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store  *memstore.Store
	events *recordingPublisher
	notes  *NoteService
	users  *UserService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := memstore.New()
	events := &recordingPublisher{}
	return fixture{
		store:  st,
		events: events,
		notes:  NewNoteService(st.Notes(), st.Users(), events, nil),
		users:  NewUserService(st.Users(), st.Notes(), events, nil, bcrypt.MinCost),
	}
}

func boolPtr(v bool) *bool { return &v }

type failingUsers struct {
	UserRepository
	err error
}

func (f failingUsers) GetByID(context.Context, string) (types.User, error) {
	return types.User{}, f.err
}

type memObjects struct {
	bucket  string
	ensured bool
	objects map[string][]byte
	ctypes  map[string]string
	putErr  error
}

func newMemObjects() *memObjects {
	return &memObjects{bucket: "technotes", objects: map[string][]byte{}, ctypes: map[string]string{}}
}

func (m *memObjects) EnsureBucket(context.Context) error {
	m.ensured = true
	return nil
}

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, size); err != nil {
		return err
	}
	m.objects[key] = buf.Bytes()
	m.ctypes[key] = contentType
	return nil
}

func (m *memObjects) Bucket() string { return m.bucket }

var errBoom = errors.New("boom")
