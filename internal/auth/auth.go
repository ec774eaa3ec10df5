// Package auth handles user registration and credential checks.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ysemenov/dengi/internal/common"
	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/service"
)

// Service registers users and verifies their credentials. Registration
// also opens the user's single account with a derived number and zero
// balance.
type Service struct {
	storage service.Storage
}

// NewService creates an auth service over the given storage.
func NewService(storage service.Storage) *Service {
	return &Service{storage: storage}
}

// Register creates a new user and their account.
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, *model.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, common.NewUserError("username cannot be empty", nil)
	}
	if password == "" {
		return nil, nil, common.NewUserError("password cannot be empty", nil)
	}

	existing, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, nil, common.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to save user: %w", err)
	}

	account := &model.Account{
		ID:      uuid.New(),
		UserID:  user.ID,
		Number:  AccountNumber(user.ID),
		Balance: decimal.Zero,
	}
	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("failed to save account: %w", err)
	}

	common.LogInfo("registered user", common.Fields{"username": username, "account": account.Number})
	return user, account, nil
}

// Authenticate verifies a username/password pair and returns the user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, common.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}
