package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/service"
)

// Categories manages the lifecycle of user-defined spending categories.
// The implicit transfer category belongs to the engine and is rejected
// by name here.
type Categories struct {
	storage service.Storage
	spend   *SpendCalculator
}

// NewCategories creates a category service over the given storage.
func NewCategories(storage service.Storage) *Categories {
	return &Categories{
		storage: storage,
		spend:   NewSpendCalculator(storage),
	}
}

// Add creates a new category with the given all-time expense limit.
func (c *Categories) Add(ctx context.Context, userID uuid.UUID, name string, limit decimal.Decimal) (*model.Category, error) {
	if name == model.TransferCategoryName {
		return nil, ErrReservedName
	}
	if limit.IsNegative() {
		return nil, ErrInvalidLimit
	}

	existing, err := c.storage.GetCategoryByUserAndName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	category := &model.Category{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Kind:   model.CategoryKindUser,
		Limit:  limit,
	}
	if err := c.storage.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}

	slog.Info("created category", "name", name, "limit", limit.StringFixed(2))
	return category, nil
}

// UpdateLimit replaces a category's limit. Lowering the limit below the
// amount already spent is accepted; further expenses in the category
// then fail until spend is back under the limit.
func (c *Categories) UpdateLimit(ctx context.Context, userID uuid.UUID, name string, limit decimal.Decimal) error {
	if name == model.TransferCategoryName {
		return ErrReservedName
	}
	if limit.IsNegative() {
		return ErrInvalidLimit
	}

	category, err := c.storage.GetCategoryByUserAndName(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	if err := c.storage.UpdateCategoryLimit(ctx, category.ID, limit); err != nil {
		return fmt.Errorf("failed to update limit: %w", err)
	}

	slog.Info("updated category limit", "name", name, "limit", limit.StringFixed(2))
	return nil
}

// Delete removes a category. Operations recorded against it are not
// rewritten; they resolve as uncategorized from then on.
func (c *Categories) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	if name == model.TransferCategoryName {
		return ErrReservedName
	}

	category, err := c.storage.GetCategoryByUserAndName(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	if err := c.storage.DeleteCategory(ctx, category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	slog.Info("deleted category", "name", name)
	return nil
}

// List returns the user's categories in name order.
func (c *Categories) List(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	categories, err := c.storage.GetCategoriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

// Spent reports how much of the account's history was spent in the
// category.
func (c *Categories) Spent(ctx context.Context, accountID, categoryID uuid.UUID) (decimal.Decimal, error) {
	return c.spend.Spent(ctx, accountID, categoryID)
}
