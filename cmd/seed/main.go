package main

import (
	"context"
	"errors"
	"log"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-api/config"
	"github.com/oksasatya/go-ddd-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-api/internal/domain/repository"
	pginfra "github.com/oksasatya/go-ddd-auth-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-auth-api/pkg/helpers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	username := "demoUser"
	email := entity.NormalizeEmail("demo@example.com")
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}

	repo := pginfra.NewUserRepository(pool)
	u := &entity.User{Username: username, Email: email, PasswordHash: hash}
	err = repo.Create(ctx, u)
	var conflict *repository.ConflictError
	switch {
	case errors.As(err, &conflict):
		helpers.LogInfo(logger, "demo user already present", logrus.Fields{"field": conflict.Field, "email": email})
		return
	case err != nil:
		logger.Fatalf("failed to seed user: %v", err)
	}
	helpers.LogInfo(logger, "seeded user", logrus.Fields{"id": u.ID, "username": username, "email": email})
}
