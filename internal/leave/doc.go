// Package leave holds the vacation workflow rules: accrual, submission checks and the
// two tier approval state machine. It performs no I/O; callers supply the current date
// and the requester's existing requests.
package leave
