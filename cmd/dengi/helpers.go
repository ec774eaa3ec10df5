package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/ysemenov/dengi/internal/common"
	"github.com/ysemenov/dengi/internal/config"
	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/dengi/dengi.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// closeStorage closes the store, logging failures that deferred calls
// would otherwise swallow.
func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "failed to close storage", common.Fields{
			"path": viper.GetString("database.path"),
		})
	}
}

// currentUser resolves the logged-in user and their account.
func currentUser(ctx context.Context, store *storage.SQLiteStorage) (*model.User, *model.Account, error) {
	username, err := config.CurrentSession()
	if err != nil {
		return nil, nil, err
	}

	user, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, nil, fmt.Errorf("session user %q no longer exists, log in again", username)
	}

	account, err := store.GetAccountByUser(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, nil, fmt.Errorf("user %q has no account", username)
	}

	return user, account, nil
}
