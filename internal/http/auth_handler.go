package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/vacation-approval/internal/application"
)

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	ChangePassword(ctx context.Context, params application.ChangePasswordParams) error
}

// AuthHandler serves login, logout and password changes.
type AuthHandler struct {
	service   authService
	tokens    *TokenManager
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, tokens *TokenManager, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, tokens: tokens, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Login verifies credentials and issues a session token, returned in the body
// and as an HTTP only cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		h.responder.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.service.Authenticate(ctx, application.AuthenticateParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.responder.fail(c, err)
		return
	}

	token, expires, err := h.tokens.Issue(result.User.ID)
	if err != nil {
		h.responder.fail(c, err)
		return
	}

	setSessionCookie(c, token, h.tokens.TTL())
	h.log(ctx, "Login", "user_id", result.User.ID).InfoContext(ctx, "session issued")
	h.responder.success(c, http.StatusOK, "logged in", loginResponse{
		Token:                  token,
		ExpiresAt:              expires.UTC().Format(time.RFC3339),
		PasswordChangeRequired: result.PasswordChangeRequired,
		User:                   toUserDTO(result.User),
	})
}

// Logout clears the session cookie. Tokens are stateless and expire on their own.
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	h.responder.success(c, http.StatusNoContent, "", nil)
}

// ChangePassword replaces the caller's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	var req passwordRequest
	if err := bindJSON(c, &req); err != nil {
		h.responder.fail(c, err)
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), application.ChangePasswordParams{
		Principal:       p,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	h.responder.success(c, http.StatusOK, "password changed", nil)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token                  string  `json:"token"`
	ExpiresAt              string  `json:"expires_at"`
	PasswordChangeRequired bool    `json:"password_change_required"`
	User                   userDTO `json:"user"`
}

type passwordRequest struct {
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}
