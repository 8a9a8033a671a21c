package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/vacation-approval/internal/application"
)

const (
	kindUnauthenticated        = "unauthenticated"
	kindSessionExpired         = "session_expired"
	kindPasswordChangeRequired = "password_change_required"
	kindRateLimited            = "rate_limited"
)

var (
	errBadRequestBody = errors.New("invalid request body")
	errMissingID      = errors.New("resource id is required")
)

// envelope is the body of every JSON response.
type envelope struct {
	application.Outcome
	Data   any               `json:"data,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) success(c *gin.Context, status int, message string, data any) {
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	c.JSON(status, envelope{Outcome: application.NewOutcome(nil, message), Data: data})
}

// fail renders err as an outcome. The status code follows the error kind.
func (r responder) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	status := statusForError(err)
	body := envelope{Outcome: application.NewOutcome(err, "")}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) && len(vErr.FieldErrors) > 0 {
		body.Fields = vErr.FieldErrors
	}

	if status >= http.StatusInternalServerError {
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	} else {
		r.loggerFor(ctx).InfoContext(ctx, "request rejected", "status", status, "error_kind", body.Kind)
	}
	c.AbortWithStatusJSON(status, body)
}

// abort stops the chain with an outcome that has no application error behind it.
func (r responder) abort(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, envelope{Outcome: application.Outcome{Kind: kind, Message: message}})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusForError(err error) int {
	if errors.Is(err, errBadRequestBody) || errors.Is(err, errMissingID) {
		return http.StatusBadRequest
	}
	return statusForKind(application.ErrorKind(err))
}

func statusForKind(kind string) int {
	switch kind {
	case application.KindValidation,
		application.KindInvalidRange,
		application.KindPastDate,
		application.KindUnknownType,
		application.KindNotEligible,
		application.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case application.KindOverlapConflict,
		application.KindConcurrentModification,
		application.KindAlreadyExists,
		application.KindAlreadyFinalized,
		application.KindInvalidApprovalAction:
		return http.StatusConflict
	case application.KindUnauthorized, application.KindForbidden:
		return http.StatusForbidden
	case application.KindInvalidCredentials:
		return http.StatusUnauthorized
	case application.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
