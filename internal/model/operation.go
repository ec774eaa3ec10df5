package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationType is the closed set of directions money can move in.
type OperationType string

const (
	// OperationTypeIncome represents money entering the account.
	OperationTypeIncome OperationType = "income"
	// OperationTypeExpense represents money leaving the account.
	OperationTypeExpense OperationType = "expense"
)

// Valid reports whether t is one of the known operation types.
func (t OperationType) Valid() bool {
	return t == OperationTypeIncome || t == OperationTypeExpense
}

// Operation is an immutable record of money moving into or out of an
// account. CategoryID is nil for uncategorized operations; it may also
// reference a category that has since been deleted, in which case the
// operation displays as uncategorized.
type Operation struct {
	OccurredAt time.Time
	CategoryID *uuid.UUID
	Type       OperationType
	Amount     decimal.Decimal
	ID         uuid.UUID
	AccountID  uuid.UUID
}

// Signed returns the amount with the sign implied by the operation type:
// positive for income, negative for expense.
func (o *Operation) Signed() decimal.Decimal {
	if o.Type == OperationTypeExpense {
		return o.Amount.Neg()
	}
	return o.Amount
}

// OperationTimestamp truncates t to the minute precision operations are
// recorded at. Both sides of a transfer share one truncated timestamp.
func OperationTimestamp(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
