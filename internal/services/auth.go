package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/technotes/apiserver/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthorized covers every credential or token failure. Callers are not
// told which check failed.
var ErrUnauthorized = errors.New("unauthorized")

// dummyHash is compared against when no usable account matches, so unknown
// and inactive usernames cost the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	hashed, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), PasswordHashCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return hashed
})

// AuthService issues and verifies HS256 access tokens.
type AuthService struct {
	users    UserRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	compare  func(hash, password []byte) error
}

func NewAuthService(users UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		now:      time.Now,
		compare:  bcrypt.CompareHashAndPassword,
	}
}

// Login returns an access token whose subject is the user id. Inactive
// accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", validationError(msgAllFieldsRequired)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("get user: %w", err)
	}
	if err != nil || !user.Active {
		_ = s.compare(dummyHash(), []byte(password))
		return "", ErrUnauthorized
	}
	if err := s.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrUnauthorized
	}

	return s.issueToken(user.ID)
}

// ParseToken validates a token and returns its subject.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

func (s *AuthService) issueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
