package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/leave"
	"github.com/example/vacation-approval/internal/persistence"
)

var (
	userCounter     uint64
	vacationCounter uint64
)

// referenceTime is a Monday morning; fixtures derive dates from it.
var referenceTime = time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic employee record.
type UserFixture struct {
	ID             string
	EmployeeNumber string
	Username       string
	PasswordHash   string
	TempPassword   bool
	HireDate       time.Time
	Part           string
	Roles          leave.RoleSet
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a member of the Development part hired two years
// before ReferenceTime, with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	fixture := UserFixture{
		ID:             id,
		EmployeeNumber: fmt.Sprintf("E%04d", idx),
		Username:       id,
		PasswordHash:   fmt.Sprintf("hash-%03d", idx),
		HireDate:       time.Date(2022, time.June, 1, 0, 0, 0, 0, time.UTC),
		Part:           "Development",
		Roles:          leave.NewRoleSet(leave.RoleMember),
		CreatedAt:      referenceTime,
		UpdatedAt:      referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUsername overrides the login name.
func WithUsername(username string) UserOption {
	return func(f *UserFixture) {
		f.Username = username
	}
}

// WithEmployeeNumber overrides the employee number.
func WithEmployeeNumber(number string) UserOption {
	return func(f *UserFixture) {
		f.EmployeeNumber = number
	}
}

// WithHireDate sets the hire date from a YYYY-MM-DD string.
func WithHireDate(date string) UserOption {
	return func(f *UserFixture) {
		f.HireDate = MustDate(date)
	}
}

// WithPart places the user in part.
func WithPart(part string) UserOption {
	return func(f *UserFixture) {
		f.Part = part
	}
}

// WithRoles replaces the user's roles.
func WithRoles(roles ...leave.Role) UserOption {
	return func(f *UserFixture) {
		f.Roles = leave.NewRoleSet(roles...)
	}
}

// WithPasswordHash overrides the stored hash.
func WithPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithTempPassword flags the account as holding a temporary password.
func WithTempPassword(temp bool) UserOption {
	return func(f *UserFixture) {
		f.TempPassword = temp
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:             f.ID,
		EmployeeNumber: f.EmployeeNumber,
		Username:       f.Username,
		HireDate:       f.HireDate,
		Part:           f.Part,
		Roles:          f.Roles,
		TempPassword:   f.TempPassword,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// Principal returns the identity of the fixture when acting.
func (f UserFixture) Principal() application.Principal {
	return f.Application().Principal()
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:             f.ID,
		EmployeeNumber: f.EmployeeNumber,
		Username:       f.Username,
		PasswordHash:   f.PasswordHash,
		TempPassword:   f.TempPassword,
		HireDate:       f.HireDate,
		Part:           f.Part,
		Roles:          f.Roles.String(),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// --------------------------- Vacation fixtures ---------------------------

// VacationFixture represents a deterministic vacation request.
type VacationFixture struct {
	ID        string
	UserID    string
	Type      leave.VacationType
	Start     time.Time
	End       time.Time
	Reason    string
	Status    leave.Status
	CreatedAt time.Time
}

// VacationOption configures the generated vacation fixture.
type VacationOption func(*VacationFixture)

// NewVacationFixture returns a one day annual request a week after
// ReferenceTime awaiting the part leader.
func NewVacationFixture(userID string, opts ...VacationOption) VacationFixture {
	idx := atomic.AddUint64(&vacationCounter, 1)
	day := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	fixture := VacationFixture{
		ID:        fmt.Sprintf("vacation-%03d", idx),
		UserID:    userID,
		Type:      leave.TypeAnnual,
		Start:     day,
		End:       day,
		Reason:    "personal",
		Status:    leave.StatusPendingPartLeader,
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithVacationID overrides the generated request ID.
func WithVacationID(id string) VacationOption {
	return func(f *VacationFixture) {
		f.ID = id
	}
}

// WithVacationType sets the leave type.
func WithVacationType(t leave.VacationType) VacationOption {
	return func(f *VacationFixture) {
		f.Type = t
	}
}

// WithVacationDates sets the inclusive range from YYYY-MM-DD strings.
func WithVacationDates(start, end string) VacationOption {
	return func(f *VacationFixture) {
		f.Start = MustDate(start)
		f.End = MustDate(end)
	}
}

// WithVacationStatus sets the stored status.
func WithVacationStatus(status leave.Status) VacationOption {
	return func(f *VacationFixture) {
		f.Status = status
	}
}

// Persistence returns the fixture as a persistence.VacationRequest value.
func (f VacationFixture) Persistence() persistence.VacationRequest {
	return persistence.VacationRequest{
		ID:        f.ID,
		UserID:    f.UserID,
		Type:      string(f.Type),
		StartDate: f.Start,
		EndDate:   f.End,
		Reason:    f.Reason,
		Status:    string(f.Status),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.CreatedAt,
	}
}

// Application returns the fixture as an application.VacationRequest value.
func (f VacationFixture) Application() application.VacationRequest {
	return application.VacationRequest{
		ID:        f.ID,
		UserID:    f.UserID,
		Type:      f.Type,
		Start:     f.Start,
		End:       f.End,
		Reason:    f.Reason,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.CreatedAt,
	}
}

// MustDate parses a YYYY-MM-DD date and panics on malformed input.
func MustDate(value string) time.Time {
	t, err := leave.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return t
}
