package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-ddd-auth-api/internal/domain/entity"
)

// ErrNotFound is returned when no user matches a lookup or a conditional write.
var ErrNotFound = errors.New("user not found")

// ConflictError reports a uniqueness violation on Field ("username" or "email").
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts u and fills ID and timestamps. Uniqueness is enforced by the
	// store, so a duplicate fails with *ConflictError rather than being pre-checked.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// GetByResetFingerprint finds the user holding fingerprint whose expiry is after notExpiredBefore.
	GetByResetFingerprint(ctx context.Context, fingerprint string, notExpiredBefore time.Time) (*entity.User, error)
	// SetResetToken replaces any pending reset pair for the user.
	SetResetToken(ctx context.Context, userID, fingerprint string, expiresAt time.Time) error
	// RedeemResetToken atomically swaps in passwordHash and clears the reset pair,
	// but only while fingerprint is still stored and unexpired at now.
	// Concurrent callers with the same fingerprint get at most one success.
	RedeemResetToken(ctx context.Context, fingerprint, passwordHash string, now time.Time) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
