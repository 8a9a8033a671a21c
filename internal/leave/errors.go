package leave

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInvalidDate           = errors.New("leave: invalid date")
	ErrInvalidRange          = errors.New("leave: start date is after end date")
	ErrPastDate              = errors.New("leave: start date is in the past")
	ErrUnknownType           = errors.New("leave: unknown vacation type")
	ErrNotEligible           = errors.New("leave: vacation requests are available three months after hire")
	ErrOverlapConflict       = errors.New("leave: a request already covers these dates")
	ErrInsufficientBalance   = errors.New("leave: insufficient annual leave balance")
	ErrInvalidApprovalAction = errors.New("leave: approver cannot act on this request")
	ErrUnauthorized          = errors.New("leave: approval role required")
	ErrForbidden             = errors.New("leave: only the requester may cancel")
	ErrAlreadyFinalized      = errors.New("leave: request already decided")
)

// BalanceError reports a request that would exceed the entitled annual leave.
type BalanceError struct {
	Entitled  float64
	Used      float64
	Requested float64
}

// Remaining is the balance left before the rejected request.
func (e *BalanceError) Remaining() float64 {
	return e.Entitled - e.Used
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("insufficient annual leave balance: %s days remaining", FormatDays(e.Remaining()))
}

// Is lets errors.Is match ErrInsufficientBalance.
func (e *BalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// OverlapError names the request whose dates collide with the candidate.
type OverlapError struct {
	ConflictingID string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("dates overlap with request %s", e.ConflictingID)
}

func (e *OverlapError) Is(target error) bool {
	return target == ErrOverlapConflict
}

// FormatDays renders a day count without trailing zeros (0.5, 12, 14.5).
func FormatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', -1, 64)
}
