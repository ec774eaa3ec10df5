package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/ysemenov/dengi/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrNilID            = errors.New("identifier cannot be nil")
	ErrInvalidOperation = errors.New("invalid operation")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is not the zero UUID.
func validateID(id uuid.UUID, paramName string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: %s", ErrNilID, paramName)
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// validateOperation validates a single operation before persistence.
func validateOperation(operation *model.Operation) error {
	if operation == nil {
		return fmt.Errorf("%w: operation", ErrNilParameter)
	}
	if operation.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidOperation)
	}
	if operation.AccountID == uuid.Nil {
		return fmt.Errorf("%w: missing account id", ErrInvalidOperation)
	}
	if !operation.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidOperation, operation.Type)
	}
	if !operation.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidOperation)
	}
	return nil
}
