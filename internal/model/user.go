// Package model defines the core domain types shared across the application.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user of the tracker.
type User struct {
	CreatedAt    time.Time
	Username     string
	PasswordHash string
	ID           uuid.UUID
}
