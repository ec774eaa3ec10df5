package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ysemenov/dengi/internal/model"
)

// SaveAccount persists a new account record.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if err := validateID(account.ID, "account.ID"); err != nil {
		return err
	}
	if err := validateID(account.UserID, "account.UserID"); err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (id, user_id, number, balance, created_at)
		VALUES (?, ?, ?, ?, ?)`

	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		account.ID.String(), account.UserID.String(), account.Number,
		account.Balance.String(), createdAt)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	slog.Debug("saved account", "number", account.Number)
	return nil
}

// GetAccountByID returns the account with the given identifier, or nil
// if none exists.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	query := accountSelect + ` WHERE id = ?`
	return scanAccount(s.db.QueryRowContext(ctx, query, id.String()))
}

// GetAccountByUser returns the account owned by the given user, or nil
// if none exists.
func (s *SQLiteStorage) GetAccountByUser(ctx context.Context, userID uuid.UUID) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	query := accountSelect + ` WHERE user_id = ?`
	return scanAccount(s.db.QueryRowContext(ctx, query, userID.String()))
}

// GetAccountByNumber returns the account with the given number, or nil
// if none exists.
func (s *SQLiteStorage) GetAccountByNumber(ctx context.Context, number int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := accountSelect + ` WHERE number = ?`
	return scanAccount(s.db.QueryRowContext(ctx, query, number))
}

// UpdateAccountBalance replaces the stored balance of an account.
func (s *SQLiteStorage) UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateAccountBalance(ctx, s.db, id, balance)
}

const accountSelect = `
		SELECT id, user_id, number, balance, created_at
		FROM accounts`

func updateAccountBalance(ctx context.Context, q querier, id uuid.UUID, balance decimal.Decimal) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	query := `UPDATE accounts SET balance = ? WHERE id = ?`

	result, err := q.ExecContext(ctx, query, balance.String(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check balance update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %s: no row updated", id)
	}
	return nil
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	var (
		account    model.Account
		rawID      string
		rawUserID  string
		rawBalance string
	)
	err := row.Scan(&rawID, &rawUserID, &account.Number, &rawBalance, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Account not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	if account.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("failed to parse account id: %w", err)
	}
	if account.UserID, err = uuid.Parse(rawUserID); err != nil {
		return nil, fmt.Errorf("failed to parse account user id: %w", err)
	}
	if account.Balance, err = decimal.NewFromString(rawBalance); err != nil {
		return nil, fmt.Errorf("failed to parse account balance: %w", err)
	}
	return &account, nil
}
