package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/vacation-approval/internal/leave"
	"github.com/example/vacation-approval/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// Error kinds reported by ErrorKind.
const (
	KindValidation             = "validation"
	KindInvalidRange           = "invalid_range"
	KindPastDate               = "past_date"
	KindUnknownType            = "unknown_type"
	KindNotEligible            = "not_eligible"
	KindOverlapConflict        = "overlap_conflict"
	KindInsufficientBalance    = "insufficient_balance"
	KindUnauthorized           = "unauthorized"
	KindForbidden              = "forbidden"
	KindAlreadyFinalized       = "already_finalized"
	KindInvalidApprovalAction  = "invalid_approval_action"
	KindNotFound               = "not_found"
	KindConcurrentModification = "concurrent_modification"
	KindAlreadyExists          = "already_exists"
	KindInvalidCredentials     = "invalid_credentials"
	KindUnexpected             = "unexpected"
)

// ErrorKind maps sentinel and validation errors to a stable label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, leave.ErrInvalidRange):
		return KindInvalidRange
	case errors.Is(err, leave.ErrPastDate):
		return KindPastDate
	case errors.Is(err, leave.ErrUnknownType):
		return KindUnknownType
	case errors.Is(err, leave.ErrNotEligible):
		return KindNotEligible
	case errors.Is(err, leave.ErrOverlapConflict):
		return KindOverlapConflict
	case errors.Is(err, leave.ErrInsufficientBalance):
		return KindInsufficientBalance
	case errors.Is(err, ErrUnauthorized), errors.Is(err, leave.ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, leave.ErrForbidden):
		return KindForbidden
	case errors.Is(err, leave.ErrAlreadyFinalized):
		return KindAlreadyFinalized
	case errors.Is(err, leave.ErrInvalidApprovalAction):
		return KindInvalidApprovalAction
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConcurrentModification):
		return KindConcurrentModification
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return KindValidation
	}

	return KindUnexpected
}
