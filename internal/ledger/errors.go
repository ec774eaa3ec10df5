// Package ledger implements the engine that owns account balances:
// recording operations, enforcing category limits, and moving money
// between accounts.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errors reported to callers. All of them are recoverable; the
// presentation layer decides how to surface them.
var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrRecipientNotFound = errors.New("recipient account not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateName     = errors.New("category with this name already exists")
	ErrReservedName      = errors.New("category name is reserved")
	ErrInvalidLimit      = errors.New("limit must not be negative")
)

// LimitExceededError is returned when an expense would push a category
// past its limit. Remaining is how much budget was left; it can be
// negative when the limit was lowered below the spent amount.
type LimitExceededError struct {
	Remaining decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("category limit exceeded: %s remaining", e.Remaining.StringFixed(2))
}
