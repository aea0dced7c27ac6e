package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// ResetTokenBytes is the amount of entropy in a raw reset token.
	ResetTokenBytes = 32
	// DefaultResetTokenTTL is how long an issued reset token stays redeemable.
	DefaultResetTokenTTL = 10 * time.Minute
)

// ResetToken is the outcome of issuing a password reset token.
// Raw goes to the user; only Fingerprint and ExpiresAt are stored.
type ResetToken struct {
	Raw         string
	Fingerprint string
	ExpiresAt   time.Time
}

// ResetTokenIssuer produces reset tokens valid for TTL from Now().
type ResetTokenIssuer struct {
	TTL time.Duration
	Now func() time.Time
}

func NewResetTokenIssuer(ttl time.Duration, now func() time.Time) *ResetTokenIssuer {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ResetTokenIssuer{TTL: ttl, Now: now}
}

// Issue generates a new random token, its fingerprint and its expiry.
func (i *ResetTokenIssuer) Issue() (ResetToken, error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return ResetToken{}, err
	}
	raw := hex.EncodeToString(b)
	return ResetToken{
		Raw:         raw,
		Fingerprint: Fingerprint(raw),
		ExpiresAt:   i.Now().UTC().Add(i.TTL),
	}, nil
}

// Fingerprint returns the hex SHA-256 digest of a raw token.
// It is deterministic so a presented token can be looked up by it.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
