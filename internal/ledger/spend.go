package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/service"
)

// SpendCalculator answers how much of an account's history was spent in
// a given category. It recomputes from persisted state on every call so
// the answer never goes stale.
type SpendCalculator struct {
	storage service.Storage
}

// NewSpendCalculator creates a spend calculator over the given storage.
func NewSpendCalculator(storage service.Storage) *SpendCalculator {
	return &SpendCalculator{storage: storage}
}

// Spent sums the amounts of all expense operations on the account that
// carry the given category. Returns zero when none match.
func (c *SpendCalculator) Spent(ctx context.Context, accountID, categoryID uuid.UUID) (decimal.Decimal, error) {
	operations, err := c.storage.GetOperationsByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load operations: %w", err)
	}

	spent := decimal.Zero
	for i := range operations {
		op := &operations[i]
		if op.Type != model.OperationTypeExpense {
			continue
		}
		if op.CategoryID == nil || *op.CategoryID != categoryID {
			continue
		}
		spent = spent.Add(op.Amount)
	}
	return spent, nil
}
