package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryKind indicates whether a category was created by the user or is
// managed by the ledger engine.
type CategoryKind string

const (
	// CategoryKindUser represents categories created by the user, with an
	// enforced spending limit.
	CategoryKindUser CategoryKind = "user"
	// CategoryKindTransfer represents the per-user system category that
	// tags both sides of a transfer. It is exempt from limit checks.
	CategoryKindTransfer CategoryKind = "transfer"
)

// TransferCategoryName is the reserved name of the implicit transfer
// category. User-facing category management refuses to touch it.
const TransferCategoryName = "Transfer"

// Category is a named spending bucket with an all-time expense limit.
type Category struct {
	CreatedAt time.Time
	Name      string
	Kind      CategoryKind
	Limit     decimal.Decimal
	ID        uuid.UUID
	UserID    uuid.UUID
}

// Limited reports whether expenses in this category count against its
// limit. Transfer categories are never limited.
func (c *Category) Limited() bool {
	return c.Kind != CategoryKindTransfer
}

// Remaining returns how much of the limit is left given the amount
// already spent. It can be negative when the limit was lowered below the
// spent amount.
func (c *Category) Remaining(spent decimal.Decimal) decimal.Decimal {
	return c.Limit.Sub(spent)
}
