package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the credential domain.
// PasswordHash is always a bcrypt hash of the current password.
// ResetTokenHash and ResetTokenExpiresAt are set together while a reset is pending.
type User struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasPendingReset reports whether a reset token is outstanding and not expired at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now)
}

// SetResetToken stores a fingerprint and its expiry as one pair.
func (u *User) SetResetToken(fingerprint string, expiresAt time.Time) {
	fp := fingerprint
	exp := expiresAt
	u.ResetTokenHash = &fp
	u.ResetTokenExpiresAt = &exp
}

// ClearResetToken drops the pending reset pair.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
