package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-api/internal/domain/repository"
)

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"

	userColumns = `id::text, username, email, password_hash, reset_token_hash, reset_token_expires_at, created_at, updated_at`
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at, updated_at
	`, u.Username, u.Email, u.PasswordHash)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if cerr := conflictFrom(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) GetByResetFingerprint(ctx context.Context, fingerprint string, notExpiredBefore time.Time) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at > $2
	`, fingerprint, notExpiredBefore)
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, fingerprint string, expiresAt time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = now()
		WHERE id = $3
	`, fingerprint, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RedeemResetToken relies on the row lock taken by UPDATE: a concurrent
// redemption re-evaluates the WHERE clause after the first commits and matches nothing.
func (r *UserRepository) RedeemResetToken(ctx context.Context, fingerprint, passwordHash string, now time.Time) (*entity.User, error) {
	return r.getOne(ctx, `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = $3
		WHERE reset_token_hash = $2 AND reset_token_expires_at > $3
		RETURNING `+userColumns, passwordHash, fingerprint, now)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()

	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3,
		    reset_token_hash = $4, reset_token_expires_at = $5, updated_at = $6
		WHERE id = $7
	`, u.Username, u.Email, u.PasswordHash, u.ResetTokenHash, u.ResetTokenExpiresAt, u.UpdatedAt, u.ID)
	if err != nil {
		if cerr := conflictFrom(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("update user: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.ResetTokenHash, &u.ResetTokenExpiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// conflictFrom maps a unique violation to the field it concerns, or returns nil.
func conflictFrom(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch {
	case pgErr.ConstraintName == usernameConstraint, strings.Contains(pgErr.ConstraintName, "username"):
		return &repository.ConflictError{Field: "username"}
	case pgErr.ConstraintName == emailConstraint, strings.Contains(pgErr.ConstraintName, "email"):
		return &repository.ConflictError{Field: "email"}
	default:
		return nil
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
