package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ysemenov/dengi/internal/model"
	"github.com/ysemenov/dengi/internal/service"
)

// Engine is the single authority allowed to change account balances and
// create operations. A mutex serializes all mutations so the
// read-check-write sequence of a balance or limit check can never
// interleave with another mutation, and every mutation's writes run in
// one storage transaction.
type Engine struct {
	storage service.Storage
	spend   *SpendCalculator
	now     func() time.Time
	mu      sync.Mutex
}

// New creates a ledger engine over the given storage.
func New(storage service.Storage) *Engine {
	return &Engine{
		storage: storage,
		spend:   NewSpendCalculator(storage),
		now:     time.Now,
	}
}

// RecordOperation validates and applies a single income or expense
// operation on an account. categoryID may be nil for uncategorized
// operations.
func (e *Engine) RecordOperation(ctx context.Context, accountID uuid.UUID, opType model.OperationType, amount decimal.Decimal, categoryID *uuid.UUID) (*model.Operation, error) {
	if !opType.Valid() {
		return nil, fmt.Errorf("unknown operation type %q", opType)
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	account, err := e.storage.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if opType == model.OperationTypeExpense {
		if amount.GreaterThan(account.Balance) {
			return nil, ErrInsufficientFunds
		}
		if categoryID != nil {
			if err := e.checkLimit(ctx, account, *categoryID, amount); err != nil {
				return nil, err
			}
		}
	}

	operation := &model.Operation{
		ID:         uuid.New(),
		AccountID:  account.ID,
		CategoryID: categoryID,
		Type:       opType,
		Amount:     amount,
		OccurredAt: model.OperationTimestamp(e.now()),
	}

	newBalance := account.Balance.Add(operation.Signed())
	if err := e.apply(ctx, func(tx service.Transaction) error {
		if err := tx.SaveOperation(ctx, operation); err != nil {
			return err
		}
		return tx.UpdateAccountBalance(ctx, account.ID, newBalance)
	}); err != nil {
		return nil, err
	}

	slog.Info("recorded operation",
		"account", account.Number,
		"type", opType,
		"amount", amount.StringFixed(2),
		"balance", newBalance.StringFixed(2))
	return operation, nil
}

// Transfer moves amount from the sender's account to the account with
// the given number. Both sides are recorded as operations tagged with
// the sender's implicit transfer category, sharing one timestamp, and
// both balance updates commit in the same storage transaction.
func (e *Engine) Transfer(ctx context.Context, senderAccountID uuid.UUID, recipientNumber int64, amount decimal.Decimal) (*model.Operation, *model.Operation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	recipient, err := e.storage.GetAccountByNumber(ctx, recipientNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load recipient account: %w", err)
	}
	if recipient == nil {
		return nil, nil, ErrRecipientNotFound
	}

	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	sender, err := e.storage.GetAccountByID(ctx, senderAccountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sender account: %w", err)
	}
	if sender == nil {
		return nil, nil, ErrAccountNotFound
	}
	if amount.GreaterThan(sender.Balance) {
		return nil, nil, ErrInsufficientFunds
	}

	transferCategory, err := e.transferCategory(ctx, sender.UserID)
	if err != nil {
		return nil, nil, err
	}

	timestamp := model.OperationTimestamp(e.now())
	outgoing := &model.Operation{
		ID:         uuid.New(),
		AccountID:  sender.ID,
		CategoryID: &transferCategory.ID,
		Type:       model.OperationTypeExpense,
		Amount:     amount,
		OccurredAt: timestamp,
	}
	incoming := &model.Operation{
		ID:         uuid.New(),
		AccountID:  recipient.ID,
		CategoryID: &transferCategory.ID,
		Type:       model.OperationTypeIncome,
		Amount:     amount,
		OccurredAt: timestamp,
	}

	if err := e.apply(ctx, func(tx service.Transaction) error {
		if sender.ID == recipient.ID {
			// Self-transfer: both deltas land on one row, net zero.
			return saveTransferOperations(ctx, tx, sender.ID, sender.Balance, outgoing, incoming)
		}
		if err := tx.UpdateAccountBalance(ctx, sender.ID, sender.Balance.Sub(amount)); err != nil {
			return err
		}
		if err := tx.UpdateAccountBalance(ctx, recipient.ID, recipient.Balance.Add(amount)); err != nil {
			return err
		}
		if err := tx.SaveOperation(ctx, outgoing); err != nil {
			return err
		}
		return tx.SaveOperation(ctx, incoming)
	}); err != nil {
		return nil, nil, err
	}

	slog.Info("transfer completed",
		"from", sender.Number,
		"to", recipient.Number,
		"amount", amount.StringFixed(2))
	return outgoing, incoming, nil
}

// checkLimit rejects an expense that would push a limited category past
// its limit. The implicit transfer category is exempt.
func (e *Engine) checkLimit(ctx context.Context, account *model.Account, categoryID uuid.UUID, amount decimal.Decimal) error {
	category, err := e.storage.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	if !category.Limited() {
		return nil
	}

	spent, err := e.spend.Spent(ctx, account.ID, category.ID)
	if err != nil {
		return err
	}

	remaining := category.Remaining(spent)
	if amount.GreaterThan(remaining) {
		return &LimitExceededError{Remaining: remaining}
	}
	return nil
}

// transferCategory resolves the user's implicit transfer category,
// creating it on first use.
func (e *Engine) transferCategory(ctx context.Context, userID uuid.UUID) (*model.Category, error) {
	category, err := e.storage.GetCategoryByUserAndName(ctx, userID, model.TransferCategoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer category: %w", err)
	}
	if category != nil {
		return category, nil
	}

	category = &model.Category{
		ID:     uuid.New(),
		UserID: userID,
		Name:   model.TransferCategoryName,
		Kind:   model.CategoryKindTransfer,
		Limit:  decimal.Zero,
	}
	if err := e.storage.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create transfer category: %w", err)
	}

	slog.Info("created transfer category", "user", userID)
	return category, nil
}

// apply runs fn inside a storage transaction, rolling back on any error.
func (e *Engine) apply(ctx context.Context, fn func(service.Transaction) error) error {
	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func saveTransferOperations(ctx context.Context, tx service.Transaction, accountID uuid.UUID, balance decimal.Decimal, ops ...*model.Operation) error {
	if err := tx.UpdateAccountBalance(ctx, accountID, balance); err != nil {
		return err
	}
	for _, op := range ops {
		if err := tx.SaveOperation(ctx, op); err != nil {
			return err
		}
	}
	return nil
}
