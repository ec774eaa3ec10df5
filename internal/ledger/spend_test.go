package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/testutil"
)

func TestSpent(t *testing.T) {
	ctx := context.Background()

	t.Run("sums only expenses in the category", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account := testutil.SeedAccount(t, store, "ivan", dec("100.00"))
		food := testutil.SeedCategory(t, store, account.UserID, "Food", dec("500.00"))
		fun := testutil.SeedCategory(t, store, account.UserID, "Fun", dec("500.00"))
		engine := New(store)

		_, err := engine.RecordOperation(ctx, account.ID, model.OperationTypeExpense, dec("12.30"), &food.ID)
		require.NoError(t, err)
		_, err = engine.RecordOperation(ctx, account.ID, model.OperationTypeExpense, dec("7.70"), &food.ID)
		require.NoError(t, err)
		// Income in the category, an expense elsewhere, and an
		// uncategorized expense all stay out of the sum.
		_, err = engine.RecordOperation(ctx, account.ID, model.OperationTypeIncome, dec("50.00"), &food.ID)
		require.NoError(t, err)
		_, err = engine.RecordOperation(ctx, account.ID, model.OperationTypeExpense, dec("5.00"), &fun.ID)
		require.NoError(t, err)
		_, err = engine.RecordOperation(ctx, account.ID, model.OperationTypeExpense, dec("3.00"), nil)
		require.NoError(t, err)

		spent, err := NewSpendCalculator(store).Spent(ctx, account.ID, food.ID)
		require.NoError(t, err)
		assert.Equal(t, "20.00", spent.StringFixed(2))
	})

	t.Run("zero when nothing matches", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account := testutil.SeedAccount(t, store, "ivan", dec("0.00"))

		spent, err := NewSpendCalculator(store).Spent(ctx, account.ID, uuid.New())
		require.NoError(t, err)
		assert.True(t, spent.IsZero())
	})

	t.Run("recomputes from current state on every call", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account := testutil.SeedAccount(t, store, "ivan", dec("100.00"))
		food := testutil.SeedCategory(t, store, account.UserID, "Food", dec("500.00"))
		engine := New(store)
		calc := NewSpendCalculator(store)

		spent, err := calc.Spent(ctx, account.ID, food.ID)
		require.NoError(t, err)
		assert.True(t, spent.IsZero())

		_, err = engine.RecordOperation(ctx, account.ID, model.OperationTypeExpense, dec("10.00"), &food.ID)
		require.NoError(t, err)

		spent, err = calc.Spent(ctx, account.ID, food.ID)
		require.NoError(t, err)
		assert.Equal(t, "10.00", spent.StringFixed(2))
	})
}
