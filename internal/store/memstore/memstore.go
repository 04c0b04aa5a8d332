// Package memstore keeps users and notes in process memory. It enforces the
// same folded-key uniqueness as the database backends and is safe for
// concurrent use. Data does not outlive the process.
package memstore

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds both collections behind one lock.
type Store struct {
	mu        sync.RWMutex
	users     map[string]userRecord
	userOrder []string
	notes     map[string]noteRecord
	noteOrder []string
	now       func() time.Time
}

func New() *Store {
	return &Store{
		users: make(map[string]userRecord),
		notes: make(map[string]noteRecord),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Users returns a repository view over the user collection.
func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

// Notes returns a repository view over the note collection.
func (s *Store) Notes() *NoteRepository {
	return &NoteRepository{s: s}
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
