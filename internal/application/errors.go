package application

import (
	"errors"
	"sort"
	"strings"

	"github.com/oksasatya/go-ddd-auth-api/internal/domain/repository"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is only surfaced by ForgotPassword.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidOrExpiredToken covers unknown, expired and already used reset tokens.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// ConflictError reports which unique field a registration collided on.
type ConflictError = repository.ConflictError

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
