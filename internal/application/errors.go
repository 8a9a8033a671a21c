package application

import (
	"errors"
	"sort"
	"strings"

	"github.com/example/vacation-approval/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks the role for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrForbidden is returned when the acting principal does not own the resource.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique attribute is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrConcurrentModification is returned when another action changed the
	// request between read and write. Callers may retry.
	ErrConcurrentModification = errors.New("application: request was modified concurrently")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
)

// ValidationError captures field level validation issues that callers can surface to users.
// Err optionally carries the domain rule that failed.
type ValidationError struct {
	FieldErrors map[string]string
	Err         error
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		if v.Err != nil {
			return v.Err.Error()
		}
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	msgs := make([]string, len(fields))
	for i, field := range fields {
		msgs[i] = field + ": " + v.FieldErrors[field]
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the underlying domain rule.
func (v *ValidationError) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.Err
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
	if v.Err == nil {
		v.Err = other.Err
	}
}

func fieldError(field string, err error) *ValidationError {
	vErr := &ValidationError{Err: err}
	vErr.add(field, strings.TrimPrefix(err.Error(), "leave: "))
	return vErr
}

// mapRepoError translates storage failures into application errors.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrStatusConflict):
		return ErrConcurrentModification
	case errors.Is(err, persistence.ErrForeignKey):
		return ErrNotFound
	}
	return err
}
