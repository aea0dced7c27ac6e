package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-ddd-auth-api/internal/application"
	"github.com/oksasatya/go-ddd-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-api/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-api/pkg/response"
	"github.com/oksasatya/go-ddd-auth-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *userapp.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type authView struct {
	User      userView  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type resetRequestView struct {
	ResetToken string    `json:"reset_token,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toUserView(u *entity.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email}
}

func toAuthView(res *userapp.AuthResult) authView {
	return authView{User: toUserView(res.User), Token: res.Token, ExpiresAt: res.ExpiresAt}
}

// Register POST /api/auth/register {username, email, password}
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toAuthView(res), "registered", nil)
}

// Login POST /api/auth/login {email, password}
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAuthView(res), "login successful", nil)
}

// ForgotPassword POST /api/auth/forgot-password {email}
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resetRequestView{ResetToken: res.Token, ExpiresAt: res.ExpiresAt}, "reset token issued", nil)
}

// ResetPassword POST /api/auth/reset-password {token, new_password}
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true}, "password updated", nil)
}

// writeServiceError maps service errors onto status codes. Unknown errors become a bare 500.
func (h *AuthHandler) writeServiceError(c *gin.Context, err error) {
	var verr *userapp.ValidationError
	var conflict *userapp.ConflictError
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", verr.Fields)
	case errors.As(err, &conflict):
		response.Error[any](c, http.StatusBadRequest, conflict.Error(), gin.H{"field": conflict.Field})
	case errors.Is(err, userapp.ErrInvalidCredentials):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, userapp.ErrInvalidOrExpiredToken):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	default:
		helpers.LogError(h.Logger, "request failed", err, logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		})
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
