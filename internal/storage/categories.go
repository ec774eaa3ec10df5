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

	"github.com/ysemenov/dengi/internal/common"
	"github.com/ysemenov/dengi/internal/model"
)

// SaveCategory persists a new category record.
func (s *SQLiteStorage) SaveCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateID(category.ID, "category.ID"); err != nil {
		return err
	}
	if err := validateID(category.UserID, "category.UserID"); err != nil {
		return err
	}
	if err := validateString(category.Name, "category.Name"); err != nil {
		return err
	}

	query := `
		INSERT INTO categories (id, user_id, name, kind, spend_limit, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	createdAt := category.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		category.ID.String(), category.UserID.String(), category.Name,
		string(category.Kind), category.Limit.String(), createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q", common.ErrDuplicateEntry, category.Name)
		}
		return fmt.Errorf("failed to save category: %w", err)
	}

	slog.Debug("saved category", "name", category.Name, "kind", category.Kind)
	return nil
}

// GetCategoryByID returns the category with the given identifier, or nil
// if none exists. Operations may hold identifiers of deleted categories;
// callers treat the nil result as "uncategorized".
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	query := categorySelect + ` WHERE id = ?`
	return scanCategory(s.db.QueryRowContext(ctx, query, id.String()))
}

// GetCategoryByUserAndName returns the user's category with the given
// name, or nil if none exists.
func (s *SQLiteStorage) GetCategoryByUserAndName(ctx context.Context, userID uuid.UUID, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := categorySelect + ` WHERE user_id = ? AND name = ?`
	return scanCategory(s.db.QueryRowContext(ctx, query, userID.String(), name))
}

// GetCategoriesByUser returns all of a user's categories in name order.
func (s *SQLiteStorage) GetCategoriesByUser(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	query := categorySelect + ` WHERE user_id = ? ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var (
			cat       model.Category
			rawID     string
			rawUserID string
			rawLimit  string
			rawKind   string
		)
		if err := rows.Scan(&rawID, &rawUserID, &cat.Name, &rawKind, &rawLimit, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if err := fillCategory(&cat, rawID, rawUserID, rawKind, rawLimit); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// UpdateCategoryLimit replaces the stored limit of a category.
func (s *SQLiteStorage) UpdateCategoryLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	query := `UPDATE categories SET spend_limit = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, limit.String(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update category limit: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check limit update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s: no row updated", id)
	}
	return nil
}

// DeleteCategory removes a category. Operations referencing it are left
// untouched and resolve as uncategorized from then on.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	query := `DELETE FROM categories WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, id.String()); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	slog.Debug("deleted category", "id", id)
	return nil
}

const categorySelect = `
		SELECT id, user_id, name, kind, spend_limit, created_at
		FROM categories`

func scanCategory(row *sql.Row) (*model.Category, error) {
	var (
		cat       model.Category
		rawID     string
		rawUserID string
		rawLimit  string
		rawKind   string
	)
	err := row.Scan(&rawID, &rawUserID, &cat.Name, &rawKind, &rawLimit, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	if err := fillCategory(&cat, rawID, rawUserID, rawKind, rawLimit); err != nil {
		return nil, err
	}
	return &cat, nil
}

func fillCategory(cat *model.Category, rawID, rawUserID, rawKind, rawLimit string) error {
	var err error
	if cat.ID, err = uuid.Parse(rawID); err != nil {
		return fmt.Errorf("failed to parse category id: %w", err)
	}
	if cat.UserID, err = uuid.Parse(rawUserID); err != nil {
		return fmt.Errorf("failed to parse category user id: %w", err)
	}
	if cat.Limit, err = decimal.NewFromString(rawLimit); err != nil {
		return fmt.Errorf("failed to parse category limit: %w", err)
	}
	cat.Kind = model.CategoryKind(rawKind)
	return nil
}
