package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/technotes/apiserver/internal/logging"
	"github.com/technotes/apiserver/internal/store"
	"github.com/technotes/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor for stored passwords.
const PasswordHashCost = 10

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]types.User, error)
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id string) error
}

type CreateUserInput struct {
	Username string
	Password string
	// Roles falls back to the default role set when empty.
	Roles types.Roles
}

type UpdateUserInput struct {
	ID       string
	Username string
	// Password replaces the stored hash only when non-empty.
	Password string
	Roles    types.Roles
	Active   *bool
}

// UserService encapsulates user use-cases.
type UserService struct {
	users    UserRepository
	notes    NoteRepository
	hashCost int
	notifier
}

func NewUserService(users UserRepository, notes NoteRepository, events EventPublisher, logger logging.Logger, hashCost int) *UserService {
	return &UserService{
		users:    users,
		notes:    notes,
		hashCost: hashCost,
		notifier: newNotifier(events, logger),
	}
}

func (s *UserService) ListAll(ctx context.Context) ([]types.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, notFoundError(msgNoUsersFound)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return types.User{}, notFoundError(msgUserNotFound)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (types.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return types.User{}, validationError(msgAllFieldsRequired)
	}

	if err := s.checkUsernameFree(ctx, in.Username, ""); err != nil {
		return types.User{}, err
	}

	hashed, err := s.hashPassword(in.Password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.users.Create(ctx, types.User{
		Username:     in.Username,
		PasswordHash: hashed,
		Roles:        in.Roles.OrDefault(),
		Active:       true,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return types.User{}, conflictError(msgDuplicateUsername)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("create user: %w", err)
	}

	s.notify(ctx, types.EventUserCreated, user.ID, user.Username)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, in UpdateUserInput) (types.User, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Username = strings.TrimSpace(in.Username)
	if in.ID == "" || in.Username == "" || len(in.Roles) == 0 || in.Active == nil {
		return types.User{}, validationError(msgAllFieldsRequired)
	}

	user, err := s.users.GetByID(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return types.User{}, notFoundError(msgUserNotFound)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("get user: %w", err)
	}

	if err := s.checkUsernameFree(ctx, in.Username, user.ID); err != nil {
		return types.User{}, err
	}

	user.Username = in.Username
	user.Roles = in.Roles
	user.Active = *in.Active
	if in.Password != "" {
		hashed, err := s.hashPassword(in.Password)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = hashed
	}

	updated, err := s.users.Update(ctx, user)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return types.User{}, notFoundError(msgUserNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return types.User{}, conflictError(msgDuplicateUsername)
	case err != nil:
		return types.User{}, fmt.Errorf("update user: %w", err)
	}

	s.notify(ctx, types.EventUserUpdated, updated.ID, updated.Username)
	return updated, nil
}

// Delete removes a user that owns no notes. The note check runs before the
// user is loaded, so a missing user that still owns notes reports the notes.
func (s *UserService) Delete(ctx context.Context, id string) (types.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.User{}, validationError(msgUserIDRequired)
	}

	if _, err := s.notes.GetByUser(ctx, id); err == nil {
		return types.User{}, conflictError(msgUserHasNotes)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check assigned notes: %w", err)
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return types.User{}, notFoundError(msgUserNotFound)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("get user: %w", err)
	}

	if err := s.users.Delete(ctx, user.ID); errors.Is(err, store.ErrNotFound) {
		return types.User{}, notFoundError(msgUserNotFound)
	} else if err != nil {
		return types.User{}, fmt.Errorf("delete user: %w", err)
	}

	s.notify(ctx, types.EventUserDeleted, user.ID, user.Username)
	return user, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", validationError(msgPasswordTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *UserService) checkUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if existing.ID != selfID {
		return conflictError(msgDuplicateUsername)
	}
	return nil
}
