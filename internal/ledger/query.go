package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/service"
)

// TypeFilter selects operations by type.
type TypeFilter struct {
	opType model.OperationType
	all    bool
}

// AllTypes matches every operation regardless of type.
func AllTypes() TypeFilter {
	return TypeFilter{all: true}
}

// OnlyType matches operations of exactly the given type.
func OnlyType(t model.OperationType) TypeFilter {
	return TypeFilter{opType: t}
}

func (f TypeFilter) matches(op *model.Operation) bool {
	return f.all || op.Type == f.opType
}

type categoryFilterMode int

const (
	categoryFilterAll categoryFilterMode = iota
	categoryFilterUncategorized
	categoryFilterNamed
)

// CategoryFilter selects operations by their resolved category name.
// Operations without a category, and operations whose category was
// deleted, count as uncategorized.
type CategoryFilter struct {
	name string
	mode categoryFilterMode
}

// AllCategories matches every operation regardless of category.
func AllCategories() CategoryFilter {
	return CategoryFilter{mode: categoryFilterAll}
}

// OnlyUncategorized matches operations with no resolvable category.
func OnlyUncategorized() CategoryFilter {
	return CategoryFilter{mode: categoryFilterUncategorized}
}

// OnlyCategory matches operations whose category resolves to the given
// name.
func OnlyCategory(name string) CategoryFilter {
	return CategoryFilter{mode: categoryFilterNamed, name: name}
}

func (f CategoryFilter) matches(op *model.Operation, categories map[uuid.UUID]model.Category) bool {
	if f.mode == categoryFilterAll {
		return true
	}

	var resolvedName string
	if op.CategoryID != nil {
		if cat, ok := categories[*op.CategoryID]; ok {
			resolvedName = cat.Name
		}
	}

	if resolvedName == "" {
		return f.mode == categoryFilterUncategorized
	}
	return f.mode == categoryFilterNamed && resolvedName == f.name
}

// Query answers read-only filtered and aggregated questions over an
// account's operation history. Each call produces a fresh snapshot.
type Query struct {
	storage service.Storage
}

// NewQuery creates a query service over the given storage.
func NewQuery(storage service.Storage) *Query {
	return &Query{storage: storage}
}

// Filtered returns the account's operations matching both filters, in
// insertion order.
func (q *Query) Filtered(ctx context.Context, accountID uuid.UUID, categoryFilter CategoryFilter, typeFilter TypeFilter) ([]model.Operation, error) {
	account, err := q.storage.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	operations, err := q.storage.GetOperationsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load operations: %w", err)
	}

	categories, err := q.categoriesForOperations(ctx, operations)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.Operation, 0, len(operations))
	for i := range operations {
		op := &operations[i]
		if typeFilter.matches(op) && categoryFilter.matches(op, categories) {
			filtered = append(filtered, *op)
		}
	}
	return filtered, nil
}

// TotalIncome sums the income operations matching both filters.
func (q *Query) TotalIncome(ctx context.Context, accountID uuid.UUID, categoryFilter CategoryFilter, typeFilter TypeFilter) (decimal.Decimal, error) {
	return q.totalByType(ctx, accountID, categoryFilter, typeFilter, model.OperationTypeIncome)
}

// TotalExpense sums the expense operations matching both filters.
func (q *Query) TotalExpense(ctx context.Context, accountID uuid.UUID, categoryFilter CategoryFilter, typeFilter TypeFilter) (decimal.Decimal, error) {
	return q.totalByType(ctx, accountID, categoryFilter, typeFilter, model.OperationTypeExpense)
}

// CategoryName resolves an operation's category name for display.
// Returns the empty string for uncategorized operations, including
// dangling references to deleted categories.
func (q *Query) CategoryName(ctx context.Context, categoryID *uuid.UUID) (string, error) {
	if categoryID == nil {
		return "", nil
	}
	category, err := q.storage.GetCategoryByID(ctx, *categoryID)
	if err != nil {
		return "", fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return "", nil
	}
	return category.Name, nil
}

func (q *Query) totalByType(ctx context.Context, accountID uuid.UUID, categoryFilter CategoryFilter, typeFilter TypeFilter, opType model.OperationType) (decimal.Decimal, error) {
	operations, err := q.Filtered(ctx, accountID, categoryFilter, typeFilter)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range operations {
		if operations[i].Type == opType {
			total = total.Add(operations[i].Amount)
		}
	}
	return total, nil
}

// categoriesForOperations resolves the distinct category ids referenced
// by the operations. Resolution is global, not scoped to the account
// owner: an incoming transfer carries the sender's transfer category.
// Ids that no longer resolve are left out, so those operations match as
// uncategorized.
func (q *Query) categoriesForOperations(ctx context.Context, operations []model.Operation) (map[uuid.UUID]model.Category, error) {
	byID := make(map[uuid.UUID]model.Category)
	seen := make(map[uuid.UUID]bool)
	for i := range operations {
		id := operations[i].CategoryID
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true

		cat, err := q.storage.GetCategoryByID(ctx, *id)
		if err != nil {
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		if cat != nil {
			byID[*id] = *cat
		}
	}
	return byID, nil
}
