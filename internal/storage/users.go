package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ysemenov/dengi/internal/common"
	"github.com/ysemenov/dengi/internal/model"
)

// SaveUser persists a new user record.
func (s *SQLiteStorage) SaveUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if err := validateID(user.ID, "user.ID"); err != nil {
		return err
	}
	if err := validateString(user.Username, "user.Username"); err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)`

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if _, err := s.db.ExecContext(ctx, query, user.ID.String(), user.Username, user.PasswordHash, createdAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %q", common.ErrDuplicateEntry, user.Username)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}

	slog.Debug("saved user", "username", user.Username)
	return nil
}

// GetUserByID returns the user with the given identifier, or nil if none
// exists.
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE id = ?`

	return scanUser(s.db.QueryRowContext(ctx, query, id.String()))
}

// GetUserByUsername returns the user with the given username, or nil if
// none exists.
func (s *SQLiteStorage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(username, "username"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = ?`

	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user  model.User
		rawID string
	)
	err := row.Scan(&rawID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	return &user, nil
}
