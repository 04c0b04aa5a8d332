package memstore

import (
	"context"

	"github.com/technotes/apiserver/internal/collate"
	"github.com/technotes/apiserver/internal/store"
	"github.com/technotes/apiserver/types"
)

type userRecord struct {
	user types.User
	key  string
}

type UserRepository struct {
	s *Store
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]types.User, 0, len(r.s.userOrder))
	for _, id := range r.s.userOrder {
		users = append(users, cloneUser(r.s.users[id].user))
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return cloneUser(rec.user), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	key := collate.Key(username)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range r.s.userOrder {
		if rec := r.s.users[id]; rec.key == key {
			return cloneUser(rec.user), nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	key := collate.Key(user.Username)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.userKeyTaken(key, "") {
		return types.User{}, store.ErrDuplicate
	}

	now := r.s.now()
	user.ID = newID()
	user.CreatedAt = now
	user.UpdatedAt = now
	user = cloneUser(user)

	r.s.users[user.ID] = userRecord{user: user, key: key}
	r.s.userOrder = append(r.s.userOrder, user.ID)
	return cloneUser(user), nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	key := collate.Key(user.Username)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	if r.s.userKeyTaken(key, user.ID) {
		return types.User{}, store.ErrDuplicate
	}

	user.CreatedAt = existing.user.CreatedAt
	user.UpdatedAt = r.s.now()
	user = cloneUser(user)
	r.s.users[user.ID] = userRecord{user: user, key: key}
	return cloneUser(user), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.users, id)
	r.s.userOrder = removeID(r.s.userOrder, id)
	return nil
}

func (s *Store) userKeyTaken(key, exceptID string) bool {
	for id, rec := range s.users {
		if id != exceptID && rec.key == key {
			return true
		}
	}
	return false
}

func cloneUser(u types.User) types.User {
	if u.Roles != nil {
		u.Roles = append(types.Roles(nil), u.Roles...)
	}
	return u
}
