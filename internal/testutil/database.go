// Package testutil provides shared helpers for tests that need a real
// database.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ysemenov/dengi/internal/auth"
	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/storage"
)

// SetupTestDB creates a new in-memory test database. It automatically
// handles migrations and cleanup.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedAccount creates a user and an account with the given balance and
// returns the account.
func SeedAccount(t *testing.T, store *storage.SQLiteStorage, username string, balance decimal.Decimal) *model.Account {
	t.Helper()

	ctx := context.Background()
	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "x",
	}
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("failed to seed user %q: %v", username, err)
	}

	account := &model.Account{
		ID:      uuid.New(),
		UserID:  user.ID,
		Number:  auth.AccountNumber(user.ID),
		Balance: balance,
	}
	if err := store.SaveAccount(ctx, account); err != nil {
		t.Fatalf("failed to seed account for %q: %v", username, err)
	}

	return account
}

// SeedCategory creates a category for the user and returns it.
func SeedCategory(t *testing.T, store *storage.SQLiteStorage, userID uuid.UUID, name string, limit decimal.Decimal) *model.Category {
	t.Helper()

	ctx := context.Background()
	category := &model.Category{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Kind:   model.CategoryKindUser,
		Limit:  limit,
	}
	if err := store.SaveCategory(ctx, category); err != nil {
		t.Fatalf("failed to seed category %q: %v", name, err)
	}

	return category
}
