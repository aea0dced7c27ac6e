package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-api/config"
	"github.com/oksasatya/go-ddd-auth-api/pkg/helpers"
)

// envelope covers both AuthEvent and ResetTokenMessage payloads.
type envelope struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// The worker drains the auth queue and records each message. A real notifier
// (SMS, email, chat) plugs in where password_reset_token messages are handled.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-events", cfg.Env)
	if cfg.RabbitMQURL == "" || cfg.RabbitMQQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQQueue, true, false, false, false, nil); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev envelope
			err := json.Unmarshal(msg.Body, &ev)
			if ev.Type == "" {
				ev.Type = msg.Type
			}
			if err != nil || ev.Type == "" {
				logger.WithError(err).Warn("bad message")
				_ = msg.Nack(false, false)
				continue
			}
			fields := logrus.Fields{"type": ev.Type, "user_id": ev.UserID}
			if ev.Token != "" {
				fields["token"] = "redacted"
				fields["expires_at"] = ev.ExpiresAt
			}
			logger.WithFields(fields).Info("auth event")
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("auth events worker listening on queue=%s", cfg.RabbitMQQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
