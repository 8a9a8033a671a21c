package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/logging"
)

const (
	sessionCookieName = "session_token"
	requestIDHeader   = "X-Request-ID"
)

// Identifier resolves the user behind a session.
type Identifier interface {
	Identify(ctx context.Context, userID string) (application.User, error)
}

// RequestLogger attaches a request scoped logger carrying the request id,
// method and path, and logs completion with status and duration.
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	base = defaultLogger(base)

	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(requestIDHeader, rid)

		ctx, logger := logging.With(c.Request.Context(), base,
			"request_id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		logger.InfoContext(ctx, "request completed",
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// RequireSession authenticates the request from a bearer token or the
// session cookie and stores the principal in the request context. Users still
// holding a temporary password may only reach the routes in exempt.
func RequireSession(tokens *TokenManager, users Identifier, logger *slog.Logger, exempt ...string) gin.HandlerFunc {
	responder := newResponder(logger)
	allowed := make(map[string]struct{}, len(exempt))
	for _, route := range exempt {
		allowed[route] = struct{}{}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := extractToken(c)
		if token == "" {
			responder.abort(c, http.StatusUnauthorized, kindUnauthenticated, "login required")
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				responder.abort(c, http.StatusUnauthorized, kindSessionExpired, "session expired, please log in again")
				return
			}
			responder.loggerFor(ctx).InfoContext(ctx, "session token rejected", "error", err)
			responder.abort(c, http.StatusUnauthorized, kindUnauthenticated, "invalid session, please log in again")
			return
		}

		user, err := users.Identify(ctx, userID)
		if err != nil {
			if errors.Is(err, application.ErrUnauthorized) {
				responder.abort(c, http.StatusUnauthorized, kindUnauthenticated, "invalid session, please log in again")
				return
			}
			responder.fail(c, err)
			return
		}

		if _, ok := allowed[c.FullPath()]; user.TempPassword && !ok {
			responder.abort(c, http.StatusForbidden, kindPasswordChangeRequired, "change your temporary password to continue")
			return
		}

		ctx, _ = logging.With(ctx, logger, "user_id", user.ID)
		ctx = ContextWithPrincipal(ctx, user.Principal())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); found {
		return strings.TrimSpace(token)
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// principal returns the authenticated principal or aborts with 401.
func principal(c *gin.Context, responder responder) (application.Principal, bool) {
	p, ok := PrincipalFromContext(c.Request.Context())
	if !ok {
		responder.abort(c, http.StatusUnauthorized, kindUnauthenticated, "login required")
	}
	return p, ok
}
