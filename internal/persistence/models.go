package persistence

import "time"

// User represents an employee account together with its organisational placement.
type User struct {
	ID             string
	EmployeeNumber string
	Username       string
	PasswordHash   string
	TempPassword   bool
	HireDate       time.Time
	Part           string
	// Roles is the comma separated role list, e.g. "team_leader,part_leader".
	Roles     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VacationRequest represents a stored leave request.
type VacationRequest struct {
	ID        string
	UserID    string
	Type      string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	Backup    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Notification represents an inbox entry for a user.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Read      bool
	CreatedAt time.Time
}
