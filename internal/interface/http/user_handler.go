package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-ddd-auth-api/internal/application"
	"github.com/oksasatya/go-ddd-auth-api/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-auth-api/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-api/pkg/response"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// GetProfile GET /api/protected/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if errors.Is(err, userapp.ErrUserNotFound) {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	if err != nil {
		helpers.LogError(h.Logger, "get profile failed", err, logrus.Fields{"user_id": uid})
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": toUserView(u)}, "profile", nil)
}
