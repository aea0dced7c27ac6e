package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-api/internal/domain/repository"
)

func TestUserRepository_CreateConflicts(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	require.NoError(t, r.Create(ctx, &entity.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h"}))

	var conflict *repository.ConflictError
	err := r.Create(ctx, &entity.User{Username: "alice", Email: "other@x.com", PasswordHash: "h"})
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)

	err = r.Create(ctx, &entity.User{Username: "bob", Email: "alice@x.com", PasswordHash: "h"})
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := &entity.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h"}
	require.NoError(t, r.Create(ctx, u))

	got, err := r.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	got.PasswordHash = "tampered"

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h", again.PasswordHash)
}

func TestUserRepository_ResetTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewUserRepository()
	u := &entity.User{Username: "alice", Email: "alice@x.com", PasswordHash: "old"}
	require.NoError(t, r.Create(ctx, u))

	assert.ErrorIs(t, r.SetResetToken(ctx, "missing", "fp", now), repository.ErrNotFound)
	require.NoError(t, r.SetResetToken(ctx, u.ID, "fp", now.Add(10*time.Minute)))

	_, err := r.GetByResetFingerprint(ctx, "fp", now.Add(10*time.Minute))
	assert.ErrorIs(t, err, repository.ErrNotFound, "expiry is exclusive")

	_, err = r.RedeemResetToken(ctx, "other", "new", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	redeemed, err := r.RedeemResetToken(ctx, "fp", "new", now)
	require.NoError(t, err)
	assert.Equal(t, "new", redeemed.PasswordHash)
	assert.Nil(t, redeemed.ResetTokenHash)

	_, err = r.RedeemResetToken(ctx, "fp", "newer", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	a := &entity.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h"}
	b := &entity.User{Username: "bob", Email: "bob@x.com", PasswordHash: "h"}
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.Create(ctx, b))

	b.Email = "alice@x.com"
	var conflict *repository.ConflictError
	require.ErrorAs(t, r.Update(ctx, b), &conflict)
	assert.Equal(t, "email", conflict.Field)

	b.Email = "robert@x.com"
	require.NoError(t, r.Update(ctx, b))
	got, err := r.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "robert@x.com", got.Email)

	assert.ErrorIs(t, r.Update(ctx, &entity.User{ID: "missing"}), repository.ErrNotFound)
}
