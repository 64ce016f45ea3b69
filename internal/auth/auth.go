// Package auth provides authentication, user accounts, and profiles.
// This file defines the public API of the auth bounded context.
// Only types and interfaces defined here should be imported by other domains.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account represents user information that can be shared with other domains.
type Account struct {
	ID            uuid.UUID
	Email         string
	Username      string
	Role          string
	EmailVerified bool
	CreatedAt     time.Time
}

// UserProvider is the interface other bounded contexts use to look up users.
// It abstracts authentication details away from courses and enrollments.
type UserProvider interface {
	// GetAccountByID returns basic account information for the given user.
	GetAccountByID(ctx context.Context, userID uuid.UUID) (Account, error)
}
