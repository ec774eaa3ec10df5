package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOperationSigned(t *testing.T) {
	amount := decimal.RequireFromString("12.34")

	income := &Operation{Type: OperationTypeIncome, Amount: amount}
	assert.True(t, income.Signed().Equal(amount))

	expense := &Operation{Type: OperationTypeExpense, Amount: amount}
	assert.True(t, expense.Signed().Equal(amount.Neg()))
}

func TestOperationTypeValid(t *testing.T) {
	assert.True(t, OperationTypeIncome.Valid())
	assert.True(t, OperationTypeExpense.Valid())
	assert.False(t, OperationType("refund").Valid())
	assert.False(t, OperationType("").Valid())
}

func TestOperationTimestamp(t *testing.T) {
	in := time.Date(2024, 3, 15, 10, 30, 45, 999, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), OperationTimestamp(in))
}

func TestCategoryLimited(t *testing.T) {
	user := &Category{Kind: CategoryKindUser}
	assert.True(t, user.Limited())

	transfer := &Category{Kind: CategoryKindTransfer}
	assert.False(t, transfer.Limited())
}

func TestCategoryRemaining(t *testing.T) {
	cat := &Category{Limit: decimal.RequireFromString("50.00")}

	assert.Equal(t, "10.00", cat.Remaining(decimal.RequireFromString("40.00")).StringFixed(2))
	assert.Equal(t, "-5.00", cat.Remaining(decimal.RequireFromString("55.00")).StringFixed(2))
}
