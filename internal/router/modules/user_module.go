package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-auth-api/internal/interface/http"
	"github.com/oksasatya/go-ddd-auth-api/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-auth-api/pkg/helpers"
)

// UserModule wires routes that require a bearer session token.
// Protected: GET /api/protected/profile
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	protected := rg.Group("/protected")
	protected.Use(middleware.Auth(m.JWT))
	{
		protected.GET("/profile", m.Handler.GetProfile)
	}
}
