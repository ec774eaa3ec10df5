package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ysemenov/dengi/internal/model"
)

// SaveOperation persists a new operation record.
func (s *SQLiteStorage) SaveOperation(ctx context.Context, operation *model.Operation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOperation(operation); err != nil {
		return err
	}
	return saveOperation(ctx, s.db, operation)
}

// GetOperationsByAccount returns all operations of an account in
// insertion order.
func (s *SQLiteStorage) GetOperationsByAccount(ctx context.Context, accountID uuid.UUID) ([]model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(accountID, "accountID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, account_id, category_id, type, amount, occurred_at
		FROM operations
		WHERE account_id = ?
		ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, accountID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var operations []model.Operation
	for rows.Next() {
		var (
			op            model.Operation
			rawID         string
			rawAccountID  string
			rawCategoryID sql.NullString
			rawType       string
			rawAmount     string
		)
		if err := rows.Scan(&rawID, &rawAccountID, &rawCategoryID, &rawType, &rawAmount, &op.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}

		if op.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("failed to parse operation id: %w", err)
		}
		if op.AccountID, err = uuid.Parse(rawAccountID); err != nil {
			return nil, fmt.Errorf("failed to parse operation account id: %w", err)
		}
		if rawCategoryID.Valid {
			categoryID, parseErr := uuid.Parse(rawCategoryID.String)
			if parseErr != nil {
				return nil, fmt.Errorf("failed to parse operation category id: %w", parseErr)
			}
			op.CategoryID = &categoryID
		}
		if op.Amount, err = decimal.NewFromString(rawAmount); err != nil {
			return nil, fmt.Errorf("failed to parse operation amount: %w", err)
		}
		op.Type = model.OperationType(rawType)

		operations = append(operations, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}

	slog.Debug("retrieved operations", "account", accountID, "count", len(operations))
	return operations, nil
}

func saveOperation(ctx context.Context, q querier, operation *model.Operation) error {
	query := `
		INSERT INTO operations (id, account_id, category_id, type, amount, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	var categoryID any
	if operation.CategoryID != nil {
		categoryID = operation.CategoryID.String()
	}

	_, err := q.ExecContext(ctx, query,
		operation.ID.String(), operation.AccountID.String(), categoryID,
		string(operation.Type), operation.Amount.String(), operation.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to save operation: %w", err)
	}
	return nil
}
