package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-api/pkg/helpers"
)

const (
	DeliveryResponse = "response"
	DeliveryQueue    = "queue"
)

// ResetTokenNotifier hands a freshly issued raw reset token to its recipient.
// It returns true when the raw token must also be returned to the HTTP caller.
type ResetTokenNotifier interface {
	DeliverResetToken(ctx context.Context, u *entity.User, tok helpers.ResetToken) (exposeInResponse bool, err error)
}

// EventPublisher is satisfied by *helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ResponseDelivery returns the raw token to the caller and sends nothing.
type ResponseDelivery struct{}

func (ResponseDelivery) DeliverResetToken(context.Context, *entity.User, helpers.ResetToken) (bool, error) {
	return true, nil
}

// QueueDelivery publishes the raw token for an out-of-band notifier and keeps it out of the response.
type QueueDelivery struct {
	Pub EventPublisher
}

// ResetTokenMessage is the queue payload consumed by the notifier.
type ResetTokenMessage struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (m ResetTokenMessage) MessageType() string { return m.Type }

func (d QueueDelivery) DeliverResetToken(ctx context.Context, u *entity.User, tok helpers.ResetToken) (bool, error) {
	msg := ResetTokenMessage{
		Type:      "password_reset_token",
		UserID:    u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Token:     tok.Raw,
		ExpiresAt: tok.ExpiresAt,
	}
	if err := d.Pub.PublishJSON(ctx, msg); err != nil {
		return false, err
	}
	return false, nil
}

// AuthEvent is published after each successful credential operation. It never carries secrets.
type AuthEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e AuthEvent) MessageType() string { return e.Type }

const (
	EventUserRegistered         = "user_registered"
	EventUserLoggedIn           = "user_logged_in"
	EventPasswordResetRequested = "password_reset_requested"
	EventPasswordResetCompleted = "password_reset_completed"
)
