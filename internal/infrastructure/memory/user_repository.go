// Package memory holds an in-process UserRepository for local runs without Postgres.
// It enforces the same uniqueness and compare-and-swap rules as the SQL store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-api/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return &repository.ConflictError{Field: "username"}
		}
		if existing.Email == u.Email {
			return &repository.ConflictError{Field: "email"}
		}
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.ClearResetToken()
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *UserRepository) GetByResetFingerprint(_ context.Context, fingerprint string, notExpiredBefore time.Time) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return u.ResetTokenHash != nil && *u.ResetTokenHash == fingerprint && u.HasPendingReset(notExpiredBefore)
	})
}

func (r *UserRepository) SetResetToken(_ context.Context, userID, fingerprint string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.SetResetToken(fingerprint, expiresAt)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) RedeemResetToken(_ context.Context, fingerprint, passwordHash string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != fingerprint || !u.HasPendingReset(now) {
			continue
		}
		u.PasswordHash = passwordHash
		u.ClearResetToken()
		u.UpdatedAt = now
		return clone(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return &repository.ConflictError{Field: "username"}
		}
		if existing.Email == u.Email {
			return &repository.ConflictError{Field: "email"}
		}
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func clone(u *entity.User) *entity.User {
	c := *u
	if u.ResetTokenHash != nil {
		c.SetResetToken(*u.ResetTokenHash, *u.ResetTokenExpiresAt)
	}
	return &c
}

var _ repository.UserRepository = (*UserRepository)(nil)
