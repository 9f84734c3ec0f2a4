package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"SpendScout/internal/domain"
	"SpendScout/internal/ports"
)

// AccountService handles registration and login against the user store.
type AccountService struct {
	users  ports.UserRepository
	logger *slog.Logger
}

// NewAccountService wires the user repository.
func NewAccountService(users ports.UserRepository, logger *slog.Logger) *AccountService {
	return &AccountService{users: users, logger: logger}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{Name: name, Email: email, PasswordHash: hash}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	user.ID = id

	if s.logger != nil {
		s.logger.Info("user registered", "user_id", id)
	}
	return user, nil
}

// Login verifies credentials. Unknown email and wrong password both map to
// ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}
