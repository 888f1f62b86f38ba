package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// Register creates an account with a bcrypt password hash. Usernames are
// trimmed and must be non-empty; roles must be in the known set.
func (s *Service) Register(ctx context.Context, username, password, roleStr string, fullName *string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	role, ok := ParseRole(roleStr)
	if !ok {
		return nil, fmt.Errorf("invalid role: %s", roleStr)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     username,
		Role:         role,
		PasswordHash: string(hash),
		FullName:     fullName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies a username/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, username string) (*User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// SetRole changes an account's role. Only admins reach this through the
// HTTP layer; the service revalidates the role value.
func (s *Service) SetRole(ctx context.Context, username, roleStr string) error {
	role, ok := ParseRole(roleStr)
	if !ok {
		return fmt.Errorf("invalid role: %s", roleStr)
	}
	return s.users.UpdateRole(ctx, username, role)
}

func (s *Service) DeleteUser(ctx context.Context, username string) error {
	return s.users.Delete(ctx, username)
}
