package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-auth-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-api/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-api/pkg/validation"
)

// dummyHash is compared against when the email is unknown so that login
// spends the same bcrypt time whether or not the account exists.
var dummyHash, _ = helpers.HashPassword("not-a-real-password")

// ServiceConfig is the explicit configuration of the credential service.
type ServiceConfig struct {
	ResetTokenTTL time.Duration
	Now           func() time.Time
}

type Service struct {
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Redis    redis.Cmdable
	Logger   *logrus.Logger
	Notifier ResetTokenNotifier
	Events   EventPublisher

	issuer *helpers.ResetTokenIssuer
	now    func() time.Time
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// ResetRequest is returned by ForgotPassword. Token is empty when the
// notifier delivered it out of band.
type ResetRequest struct {
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,uname"`
	Email    string `json:"email" validate:"required,basicemail"`
	Password string `json:"password" validate:"required,pwd"`
}

type forgotInput struct {
	Email string `json:"email" validate:"required,basicemail"`
}

type resetInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,pwd"`
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// NewService wires the credential service. rdb and events may be nil; a nil notifier
// means the raw reset token is returned to the caller.
func NewService(r repo.UserRepository, jwt *helpers.JWTManager, rdb redis.Cmdable, logger *logrus.Logger, notifier ResetTokenNotifier, events EventPublisher, cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = ResponseDelivery{}
	}
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &Service{
		Repo:     r,
		JWT:      jwt,
		Redis:    rdb,
		Logger:   logger,
		Notifier: notifier,
		Events:   events,
		issuer:   helpers.NewResetTokenIssuer(cfg.ResetTokenTTL, now),
		now:      now,
	}
}

// Register creates a user and opens a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = entity.NormalizeUsername(in.Username)
	in.Email = entity.NormalizeEmail(in.Email)
	if err := newValidationError(validation.Struct(in)); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		s.Logger.WithError(err).WithField("email", in.Email).Error("create user failed")
		return nil, err
	}

	res, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventUserRegistered, u)
	return res, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		helpers.CompareHashAndPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.Logger.WithError(err).Error("lookup user by email failed")
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	res, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventUserLoggedIn, u)
	return res, nil
}

// ForgotPassword issues a reset token for the account behind email. Issuing a new
// token replaces any token still pending for that account.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*ResetRequest, error) {
	in := forgotInput{Email: entity.NormalizeEmail(email)}
	if err := newValidationError(validation.Struct(in)); err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.Logger.WithError(err).Error("lookup user by email failed")
		return nil, err
	}

	tok, err := s.issuer.Issue()
	if err != nil {
		return nil, fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.Repo.SetResetToken(ctx, u.ID, tok.Fingerprint, tok.ExpiresAt); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("store reset token failed")
		return nil, err
	}
	u.SetResetToken(tok.Fingerprint, tok.ExpiresAt)

	expose, err := s.Notifier.DeliverResetToken(ctx, u, tok)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("deliver reset token failed")
		return nil, fmt.Errorf("deliver reset token: %w", err)
	}
	s.publish(ctx, EventPasswordResetRequested, u)

	out := &ResetRequest{ExpiresAt: tok.ExpiresAt}
	if expose {
		out.Token = tok.Raw
	}
	return out, nil
}

// ResetPassword redeems a reset token once and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	in := resetInput{Token: token, NewPassword: newPassword}
	if err := newValidationError(validation.Struct(in)); err != nil {
		return err
	}

	fp := helpers.Fingerprint(in.Token)
	now := s.now().UTC()
	if _, err := s.Repo.GetByResetFingerprint(ctx, fp, now); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		s.Logger.WithError(err).Error("lookup reset token failed")
		return err
	}

	hash, err := helpers.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	// The conditional write decides the winner; the lookup above only spares bcrypt work.
	u, err := s.Repo.RedeemResetToken(ctx, fp, hash, now)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrInvalidOrExpiredToken
	}
	if err != nil {
		s.Logger.WithError(err).Error("redeem reset token failed")
		return err
	}
	if s.Redis != nil {
		if err := helpers.RedisDel(ctx, s.Redis, sessionKey(u.ID)); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("drop session snapshot failed")
		}
	}
	s.publish(ctx, EventPasswordResetCompleted, u)
	return nil
}

// GetProfile returns the user, preferring the session snapshot in Redis.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if s.Redis != nil {
		data, err := s.Redis.HGetAll(ctx, sessionKey(userID)).Result()
		switch {
		case err != nil:
			s.Logger.WithError(err).WithField("user_id", userID).Warn("redis session lookup failed")
		case data["user_id"] == userID && data["email"] != "":
			return &entity.User{ID: userID, Username: data["username"], Email: data["email"]}, nil
		}
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// issueSession signs a bearer token and records a session snapshot in Redis.
func (s *Service) issueSession(ctx context.Context, u *entity.User) (*AuthResult, error) {
	sid := uuid.NewString()
	token, exp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"sid":        sid,
			"created_at": s.now().UTC().Format(time.RFC3339Nano),
		})
		pipe.ExpireAt(ctx, key, exp)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *Service) publish(ctx context.Context, typ string, u *entity.User) {
	if s.Events == nil {
		return
	}
	ev := AuthEvent{Type: typ, UserID: u.ID, Email: u.Email, OccurredAt: s.now().UTC()}
	if err := s.Events.PublishJSON(ctx, ev); err != nil {
		s.Logger.WithError(err).WithField("event", typ).Warn("publish auth event failed")
	}
}
