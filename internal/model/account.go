package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds a user's balance. Each user owns exactly one account,
// addressed externally by its derived number.
type Account struct {
	CreatedAt time.Time
	Balance   decimal.Decimal
	ID        uuid.UUID
	UserID    uuid.UUID
	Number    int64
}
