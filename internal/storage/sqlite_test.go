package storage

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysemenov/dengi/internal/common"
	"github.com/ysemenov/dengi/internal/model"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	require.NoError(t, store.Migrate(context.Background()))

	return store, func() {
		_ = store.Close()
	}
}

var accountNumberSeq atomic.Int64

func seedUserAndAccount(t *testing.T, store *SQLiteStorage, username string, balance decimal.Decimal) (*model.User, *model.Account) {
	t.Helper()
	ctx := context.Background()

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "hash",
	}
	require.NoError(t, store.SaveUser(ctx, user))

	account := &model.Account{
		ID:      uuid.New(),
		UserID:  user.ID,
		Number:  100000 + accountNumberSeq.Add(1),
		Balance: balance,
	}
	require.NoError(t, store.SaveAccount(ctx, account))

	return user, account
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// Running migrations again is a no-op.
	require.NoError(t, store.Migrate(context.Background()))
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load by username", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		user := &model.User{
			ID:           uuid.New(),
			Username:     "ivan",
			PasswordHash: "secret-hash",
		}
		require.NoError(t, store.SaveUser(ctx, user))

		got, err := store.GetUserByUsername(ctx, "ivan")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "secret-hash", got.PasswordHash)

		byID, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "ivan", byID.Username)
	})

	t.Run("missing user returns nil without error", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		got, err := store.GetUserByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		seedUserAndAccount(t, store, "dup", decimal.Zero)

		err := store.SaveUser(ctx, &model.User{ID: uuid.New(), Username: "dup", PasswordHash: "x"})
		require.ErrorIs(t, err, common.ErrDuplicateEntry)
	})
}

func TestAccountRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("lookups by id, user and number", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		user, account := seedUserAndAccount(t, store, "ivan", decimal.RequireFromString("12.50"))

		byID, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.True(t, byID.Balance.Equal(decimal.RequireFromString("12.50")))

		byUser, err := store.GetAccountByUser(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, byUser)
		assert.Equal(t, account.ID, byUser.ID)

		byNumber, err := store.GetAccountByNumber(ctx, account.Number)
		require.NoError(t, err)
		require.NotNil(t, byNumber)
		assert.Equal(t, account.ID, byNumber.ID)
	})

	t.Run("missing account returns nil without error", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		got, err := store.GetAccountByNumber(ctx, 999999999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("balance update is persisted exactly", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, account := seedUserAndAccount(t, store, "ivan", decimal.Zero)

		require.NoError(t, store.UpdateAccountBalance(ctx, account.ID, decimal.RequireFromString("0.10")))

		got, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "0.10", got.Balance.StringFixed(2))
	})

	t.Run("updating a missing account fails", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		err := store.UpdateAccountBalance(ctx, uuid.New(), decimal.Zero)
		require.Error(t, err)
	})
}

func TestCategoryRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("save, load and list", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		user, _ := seedUserAndAccount(t, store, "ivan", decimal.Zero)

		food := &model.Category{
			ID:     uuid.New(),
			UserID: user.ID,
			Name:   "Food",
			Kind:   model.CategoryKindUser,
			Limit:  decimal.RequireFromString("50.00"),
		}
		require.NoError(t, store.SaveCategory(ctx, food))

		byName, err := store.GetCategoryByUserAndName(ctx, user.ID, "Food")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.True(t, byName.Limit.Equal(food.Limit))
		assert.Equal(t, model.CategoryKindUser, byName.Kind)

		byID, err := store.GetCategoryByID(ctx, food.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "Food", byID.Name)

		list, err := store.GetCategoriesByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("name is unique per user, not globally", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		user1, _ := seedUserAndAccount(t, store, "ivan", decimal.Zero)
		user2, _ := seedUserAndAccount(t, store, "petr", decimal.Zero)

		require.NoError(t, store.SaveCategory(ctx, &model.Category{
			ID: uuid.New(), UserID: user1.ID, Name: "Food", Kind: model.CategoryKindUser, Limit: decimal.Zero,
		}))
		require.NoError(t, store.SaveCategory(ctx, &model.Category{
			ID: uuid.New(), UserID: user2.ID, Name: "Food", Kind: model.CategoryKindUser, Limit: decimal.Zero,
		}))

		err := store.SaveCategory(ctx, &model.Category{
			ID: uuid.New(), UserID: user1.ID, Name: "Food", Kind: model.CategoryKindUser, Limit: decimal.Zero,
		})
		require.ErrorIs(t, err, common.ErrDuplicateEntry)
	})

	t.Run("limit update and delete", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		user, _ := seedUserAndAccount(t, store, "ivan", decimal.Zero)
		cat := &model.Category{
			ID: uuid.New(), UserID: user.ID, Name: "Fun", Kind: model.CategoryKindUser, Limit: decimal.RequireFromString("10"),
		}
		require.NoError(t, store.SaveCategory(ctx, cat))

		require.NoError(t, store.UpdateCategoryLimit(ctx, cat.ID, decimal.RequireFromString("25.50")))
		got, err := store.GetCategoryByID(ctx, cat.ID)
		require.NoError(t, err)
		assert.Equal(t, "25.50", got.Limit.StringFixed(2))

		require.NoError(t, store.DeleteCategory(ctx, cat.ID))
		gone, err := store.GetCategoryByID(ctx, cat.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestOperationRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("operations come back in insertion order", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, account := seedUserAndAccount(t, store, "ivan", decimal.Zero)

		ts := model.OperationTimestamp(time.Now())
		amounts := []string{"1.00", "2.00", "3.00"}
		for _, a := range amounts {
			op := &model.Operation{
				ID:         uuid.New(),
				AccountID:  account.ID,
				Type:       model.OperationTypeIncome,
				Amount:     decimal.RequireFromString(a),
				OccurredAt: ts,
			}
			require.NoError(t, store.SaveOperation(ctx, op))
		}

		got, err := store.GetOperationsByAccount(ctx, account.ID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i, a := range amounts {
			assert.Equal(t, a, got[i].Amount.StringFixed(2))
			assert.Nil(t, got[i].CategoryID)
		}
	})

	t.Run("category reference survives the trip", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		user, account := seedUserAndAccount(t, store, "ivan", decimal.Zero)
		cat := &model.Category{
			ID: uuid.New(), UserID: user.ID, Name: "Food", Kind: model.CategoryKindUser, Limit: decimal.Zero,
		}
		require.NoError(t, store.SaveCategory(ctx, cat))

		op := &model.Operation{
			ID:         uuid.New(),
			AccountID:  account.ID,
			CategoryID: &cat.ID,
			Type:       model.OperationTypeExpense,
			Amount:     decimal.RequireFromString("4.20"),
			OccurredAt: model.OperationTimestamp(time.Now()),
		}
		require.NoError(t, store.SaveOperation(ctx, op))

		got, err := store.GetOperationsByAccount(ctx, account.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].CategoryID)
		assert.Equal(t, cat.ID, *got[0].CategoryID)
		assert.Equal(t, model.OperationTypeExpense, got[0].Type)
	})

	t.Run("invalid operations are rejected before hitting the database", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, account := seedUserAndAccount(t, store, "ivan", decimal.Zero)

		err := store.SaveOperation(ctx, &model.Operation{
			ID:        uuid.New(),
			AccountID: account.ID,
			Type:      "refund",
			Amount:    decimal.RequireFromString("1.00"),
		})
		require.ErrorIs(t, err, ErrInvalidOperation)

		err = store.SaveOperation(ctx, &model.Operation{
			ID:        uuid.New(),
			AccountID: account.ID,
			Type:      model.OperationTypeIncome,
			Amount:    decimal.Zero,
		})
		require.ErrorIs(t, err, ErrInvalidOperation)
	})
}

func TestTransactionAtomicity(t *testing.T) {
	ctx := context.Background()

	t.Run("rollback leaves no trace", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, account := seedUserAndAccount(t, store, "ivan", decimal.RequireFromString("100"))

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		op := &model.Operation{
			ID:         uuid.New(),
			AccountID:  account.ID,
			Type:       model.OperationTypeExpense,
			Amount:     decimal.RequireFromString("40"),
			OccurredAt: model.OperationTimestamp(time.Now()),
		}
		require.NoError(t, tx.SaveOperation(ctx, op))
		require.NoError(t, tx.UpdateAccountBalance(ctx, account.ID, decimal.RequireFromString("60")))
		require.NoError(t, tx.Rollback())

		ops, err := store.GetOperationsByAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.Empty(t, ops)

		got, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "100.00", got.Balance.StringFixed(2))
	})

	t.Run("commit applies both writes", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, account := seedUserAndAccount(t, store, "ivan", decimal.RequireFromString("100"))

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		op := &model.Operation{
			ID:         uuid.New(),
			AccountID:  account.ID,
			Type:       model.OperationTypeExpense,
			Amount:     decimal.RequireFromString("40"),
			OccurredAt: model.OperationTimestamp(time.Now()),
		}
		require.NoError(t, tx.SaveOperation(ctx, op))
		require.NoError(t, tx.UpdateAccountBalance(ctx, account.ID, decimal.RequireFromString("60")))
		require.NoError(t, tx.Commit())

		ops, err := store.GetOperationsByAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.Len(t, ops, 1)

		got, err := store.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "60.00", got.Balance.StringFixed(2))
	})
}
