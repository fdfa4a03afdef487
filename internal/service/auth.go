package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"opensite/api/internal/model"
	"opensite/api/internal/store"
)

// ErrInvalidCredentials is returned for any login failure. The cause is not
// distinguished to avoid leaking which usernames exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles authentication business logic.
type AuthService struct {
	store *store.Store
}

// NewAuthService creates a new auth service.
func NewAuthService(s *store.Store) *AuthService {
	return &AuthService{store: s}
}

// Authenticate validates user credentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.store.UserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != 1 {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UserByID looks up a user for token verification.
func (s *AuthService) UserByID(userID uint) (*model.User, error) {
	return s.store.UserByID(userID)
}

// HashPassword hashes a plaintext password for storage.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
