package repository

import (
	"errors"
	"time"

	"github.com/gymbro/gymbro-api/internal/domain/entity"
)

// ErrNotFound is returned by every repository when a lookup misses. Callers
// rely on it being distinguishable from infrastructure failures.
var ErrNotFound = errors.New("not found")

// UserRepository defines the persistence surface for user entities.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(u *entity.User) error
	// SetConfirmed marks the user's email as confirmed.
	SetConfirmed(id string) error
	// UpdatePassword commits a new password hash together with the change
	// timestamp in a single statement.
	UpdatePassword(id, passwordHash string, changedAt time.Time) error
}
