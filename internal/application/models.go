package application

import (
	"time"

	"github.com/example/vacation-approval/internal/leave"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID   string
	Username string
	Part     string
	Roles    leave.RoleSet
}

// User represents an employee account exposed by the application services.
type User struct {
	ID             string
	EmployeeNumber string
	Username       string
	HireDate       time.Time
	Part           string
	Roles          leave.RoleSet
	TempPassword   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Principal returns the identity used when u acts on the system.
func (u User) Principal() Principal {
	return Principal{UserID: u.ID, Username: u.Username, Part: u.Part, Roles: u.Roles}
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	EmployeeNumber string
	Username       string
	HireDate       string
	Part           string
	Roles          string
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// VacationRequest represents a persisted leave request.
type VacationRequest struct {
	ID        string
	UserID    string
	Type      leave.VacationType
	Start     time.Time
	End       time.Time
	Reason    string
	Backup    string
	Status    leave.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Days returns the amount of annual balance the request draws.
func (r VacationRequest) Days() float64 {
	return leave.RequestedDays(r.Type, r.Start, r.End)
}

func (r VacationRequest) domain() leave.Request {
	return leave.Request{
		ID:      r.ID,
		OwnerID: r.UserID,
		Type:    r.Type,
		Start:   r.Start,
		End:     r.End,
		Status:  r.Status,
	}
}

// SubmitParams wraps the data required to submit a vacation request. Dates
// use the YYYY-MM-DD layout.
type SubmitParams struct {
	Principal Principal
	Type      string
	StartDate string
	EndDate   string
	Reason    string
	Backup    string
}

// PendingApproval pairs a request awaiting a decision with its requester.
type PendingApproval struct {
	Request   VacationRequest
	Requester User
}

// Balance summarises a user's annual leave position.
type Balance struct {
	HireDate  time.Time
	Eligible  bool
	Entitled  float64
	Used      float64
	Remaining float64
}

// Notification represents an inbox entry for a user.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// Inbox is a user's notification list together with the unread count
// observed before the list was marked read.
type Inbox struct {
	Notifications []Notification
	Unread        int
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Username string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User                   User
	PasswordChangeRequired bool
}

// ChangePasswordParams captures a password change made by the account owner.
type ChangePasswordParams struct {
	Principal       Principal
	NewPassword     string
	ConfirmPassword string
}
