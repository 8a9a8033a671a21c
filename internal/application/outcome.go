package application

import (
	"errors"
	"strings"
)

// Outcome is the discriminated result of a workflow action.
type Outcome struct {
	OK      bool   `json:"ok"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// NewOutcome converts the result of an action into an Outcome. Unexpected
// errors keep a generic message so storage details do not leak to callers.
func NewOutcome(err error, success string) Outcome {
	if err == nil {
		return Outcome{OK: true, Message: success}
	}
	kind := ErrorKind(err)
	if kind == KindUnexpected {
		return Outcome{Kind: kind, Message: "an unexpected error occurred"}
	}
	return Outcome{Kind: kind, Message: userMessage(err)}
}

func userMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr.Err != nil && len(vErr.FieldErrors) <= 1 {
		err = vErr.Err
	}
	msg := err.Error()
	for _, prefix := range []string{"leave: ", "application: "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}
