package router

import (
	appuser "github.com/oksasatya/go-ddd-auth-api/internal/application"
	"github.com/oksasatya/go-ddd-auth-api/internal/container"
	repouser "github.com/oksasatya/go-ddd-auth-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-ddd-auth-api/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-ddd-auth-api/internal/interface/http"
	"github.com/oksasatya/go-ddd-auth-api/internal/router/modules"
)

type AuthModuleDeps struct {
	Repo        repouser.UserRepository
	Service     *appuser.Service
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	var repo repouser.UserRepository
	if pool := container.GetPGPool(); pool != nil {
		repo = pginfra.NewUserRepository(pool)
	} else {
		repo = memory.NewUserRepository()
	}

	var events appuser.EventPublisher
	var notifier appuser.ResetTokenNotifier = appuser.ResponseDelivery{}
	if pub := container.GetRabbitPub(); pub != nil {
		events = pub
		if cfg.ResetTokenDelivery == appuser.DeliveryQueue {
			notifier = appuser.QueueDelivery{Pub: pub}
		}
	}

	service := appuser.NewService(
		repo,
		container.GetJWT(),
		container.GetRedis(),
		logger,
		notifier,
		events,
		appuser.ServiceConfig{ResetTokenTTL: cfg.ResetTokenTTL},
	)

	return AuthModuleDeps{
		Repo:        repo,
		Service:     service,
		AuthHandler: handlers.NewAuthHandler(service, logger),
		UserHandler: handlers.NewUserHandler(service, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildAuthDeps()
	var db handlers.Pinger
	if pool := container.GetPGPool(); pool != nil {
		db = pool
	}
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(db)))
	r.Add(modules.NewAuthModule(deps.AuthHandler))
	r.Add(modules.NewUserModule(deps.UserHandler, container.GetJWT()))
}
