// Package service defines the interfaces the core depends on.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ysemenov/dengi/internal/model"
)

// Storage defines the contract for the persistence layer. Point lookups
// return (nil, nil) when no record matches; a non-nil error always means
// the store itself failed.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetAccountByUser(ctx context.Context, userID uuid.UUID) (*model.Account, error)
	GetAccountByNumber(ctx context.Context, number int64) (*model.Account, error)
	UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error

	// Category operations
	SaveCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetCategoryByUserAndName(ctx context.Context, userID uuid.UUID, name string) (*model.Category, error)
	GetCategoriesByUser(ctx context.Context, userID uuid.UUID) ([]model.Category, error)
	UpdateCategoryLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	// Operation operations
	SaveOperation(ctx context.Context, operation *model.Operation) error
	GetOperationsByAccount(ctx context.Context, accountID uuid.UUID) ([]model.Operation, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction scopes the writes the ledger engine must apply as one
// unit: operation inserts and the balance updates they imply either all
// commit or all roll back.
type Transaction interface {
	SaveOperation(ctx context.Context, operation *model.Operation) error
	UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	Commit() error
	Rollback() error
}
