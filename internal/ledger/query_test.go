package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/storage"
	"github.com/ysemenov/dengi/internal/testutil"
)

// seedHistory records a small mixed history:
//
//	income  100.00 uncategorized
//	expense  40.00 in Food
//	expense  10.00 uncategorized
//	income    5.00 in Food
func seedHistory(t *testing.T, store *storage.SQLiteStorage) (*model.Account, *model.Category) {
	t.Helper()
	ctx := context.Background()

	account := testutil.SeedAccount(t, store, "ivan", dec("0.00"))
	food := testutil.SeedCategory(t, store, account.UserID, "Food", dec("500.00"))
	engine := New(store)

	_, err := engine.RecordOperation(ctx, account.ID, model.OperationTypeIncome, dec("100.00"), nil)
	require.NoError(t, err)
	_, err = engine.RecordOperation(ctx, account.ID, model.OperationTypeExpense, dec("40.00"), &food.ID)
	require.NoError(t, err)
	_, err = engine.RecordOperation(ctx, account.ID, model.OperationTypeExpense, dec("10.00"), nil)
	require.NoError(t, err)
	_, err = engine.RecordOperation(ctx, account.ID, model.OperationTypeIncome, dec("5.00"), &food.ID)
	require.NoError(t, err)

	return account, food
}

func TestFiltered(t *testing.T) {
	ctx := context.Background()

	t.Run("all categories, all types returns everything in insertion order", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, _ := seedHistory(t, store)

		got, err := NewQuery(store).Filtered(ctx, account.ID, AllCategories(), AllTypes())
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, "100.00", got[0].Amount.StringFixed(2))
		assert.Equal(t, "40.00", got[1].Amount.StringFixed(2))
		assert.Equal(t, "10.00", got[2].Amount.StringFixed(2))
		assert.Equal(t, "5.00", got[3].Amount.StringFixed(2))
	})

	t.Run("type filter", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, _ := seedHistory(t, store)

		got, err := NewQuery(store).Filtered(ctx, account.ID, AllCategories(), OnlyType(model.OperationTypeExpense))
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, op := range got {
			assert.Equal(t, model.OperationTypeExpense, op.Type)
		}
	})

	t.Run("named category filter matches both types", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, _ := seedHistory(t, store)

		got, err := NewQuery(store).Filtered(ctx, account.ID, OnlyCategory("Food"), AllTypes())
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "40.00", got[0].Amount.StringFixed(2))
		assert.Equal(t, "5.00", got[1].Amount.StringFixed(2))
	})

	t.Run("uncategorized filter", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, _ := seedHistory(t, store)

		got, err := NewQuery(store).Filtered(ctx, account.ID, OnlyUncategorized(), AllTypes())
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "100.00", got[0].Amount.StringFixed(2))
		assert.Equal(t, "10.00", got[1].Amount.StringFixed(2))
	})

	t.Run("operations of a deleted category become uncategorized", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, food := seedHistory(t, store)

		require.NoError(t, store.DeleteCategory(ctx, food.ID))

		query := NewQuery(store)
		uncategorized, err := query.Filtered(ctx, account.ID, OnlyUncategorized(), AllTypes())
		require.NoError(t, err)
		assert.Len(t, uncategorized, 4)

		named, err := query.Filtered(ctx, account.ID, OnlyCategory("Food"), AllTypes())
		require.NoError(t, err)
		assert.Empty(t, named)

		// The dangling reference also resolves to no name for display.
		ops, err := store.GetOperationsByAccount(ctx, account.ID)
		require.NoError(t, err)
		name, err := query.CategoryName(ctx, ops[1].CategoryID)
		require.NoError(t, err)
		assert.Equal(t, "", name)
	})

	t.Run("incoming transfers resolve the sender's transfer category", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		sender := testutil.SeedAccount(t, store, "ivan", dec("100.00"))
		recipient := testutil.SeedAccount(t, store, "petr", dec("0.00"))

		_, incoming, err := New(store).Transfer(ctx, sender.ID, recipient.Number, dec("30.00"))
		require.NoError(t, err)

		// The incoming operation carries the sender's transfer category,
		// which belongs to another user. It must still resolve by name
		// on the recipient's account.
		query := NewQuery(store)
		named, err := query.Filtered(ctx, recipient.ID, OnlyCategory(model.TransferCategoryName), AllTypes())
		require.NoError(t, err)
		require.Len(t, named, 1)
		assert.Equal(t, incoming.ID, named[0].ID)
		assert.Equal(t, model.OperationTypeIncome, named[0].Type)

		uncategorized, err := query.Filtered(ctx, recipient.ID, OnlyUncategorized(), AllTypes())
		require.NoError(t, err)
		assert.Empty(t, uncategorized)

		income, err := query.TotalIncome(ctx, recipient.ID, OnlyCategory(model.TransferCategoryName), AllTypes())
		require.NoError(t, err)
		assert.Equal(t, "30.00", income.StringFixed(2))

		// The list view's name lookup and the filter now agree.
		name, err := query.CategoryName(ctx, incoming.CategoryID)
		require.NoError(t, err)
		assert.Equal(t, model.TransferCategoryName, name)
	})

	t.Run("repeated calls return the same snapshot", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, _ := seedHistory(t, store)

		query := NewQuery(store)
		first, err := query.Filtered(ctx, account.ID, AllCategories(), AllTypes())
		require.NoError(t, err)
		second, err := query.Filtered(ctx, account.ID, AllCategories(), AllTypes())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("combined filters", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, _ := seedHistory(t, store)

		got, err := NewQuery(store).Filtered(ctx, account.ID, OnlyCategory("Food"), OnlyType(model.OperationTypeIncome))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "5.00", got[0].Amount.StringFixed(2))
	})
}

func TestTotals(t *testing.T) {
	ctx := context.Background()

	t.Run("unfiltered totals", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, _ := seedHistory(t, store)

		query := NewQuery(store)
		income, err := query.TotalIncome(ctx, account.ID, AllCategories(), AllTypes())
		require.NoError(t, err)
		assert.Equal(t, "105.00", income.StringFixed(2))

		expense, err := query.TotalExpense(ctx, account.ID, AllCategories(), AllTypes())
		require.NoError(t, err)
		assert.Equal(t, "50.00", expense.StringFixed(2))
	})

	t.Run("totals respect the category filter", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, _ := seedHistory(t, store)

		query := NewQuery(store)
		income, err := query.TotalIncome(ctx, account.ID, OnlyCategory("Food"), AllTypes())
		require.NoError(t, err)
		assert.Equal(t, "5.00", income.StringFixed(2))

		expense, err := query.TotalExpense(ctx, account.ID, OnlyCategory("Food"), AllTypes())
		require.NoError(t, err)
		assert.Equal(t, "40.00", expense.StringFixed(2))
	})

	t.Run("a type filter zeroes the opposite total", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account, _ := seedHistory(t, store)

		query := NewQuery(store)
		income, err := query.TotalIncome(ctx, account.ID, AllCategories(), OnlyType(model.OperationTypeExpense))
		require.NoError(t, err)
		assert.Equal(t, "0.00", income.StringFixed(2))
	})

	t.Run("empty history", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		account := testutil.SeedAccount(t, store, "ivan", dec("0.00"))

		query := NewQuery(store)
		income, err := query.TotalIncome(ctx, account.ID, AllCategories(), AllTypes())
		require.NoError(t, err)
		assert.True(t, income.IsZero())
	})
}
