package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash, never the plain text.
//
// Confirmed moves false -> true exactly once and never reverses.
// PasswordChangedAt stays nil until the first successful password reset.
type User struct {
	ID                string
	Email             string
	Password          string
	Name              string
	Confirmed         bool
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
