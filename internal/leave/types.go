package leave

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// VacationType identifies the kind of leave being requested.
type VacationType string

const (
	TypeAnnual    VacationType = "annual"
	TypeAMHalfDay VacationType = "am_half_day"
	TypePMHalfDay VacationType = "pm_half_day"
	TypeSick      VacationType = "sick"
	TypeSpecial   VacationType = "special"
)

// Valid reports whether t is one of the recognised vacation types.
func (t VacationType) Valid() bool {
	switch t {
	case TypeAnnual, TypeAMHalfDay, TypePMHalfDay, TypeSick, TypeSpecial:
		return true
	}
	return false
}

// IsHalfDay reports whether the type always counts as half a day.
func (t VacationType) IsHalfDay() bool {
	return t == TypeAMHalfDay || t == TypePMHalfDay
}

// ConsumesBalance reports whether requests of this type are debited against annual leave.
func (t VacationType) ConsumesBalance() bool {
	return t == TypeAnnual || t.IsHalfDay()
}

// Status is the workflow state of a vacation request.
type Status string

const (
	StatusPendingPartLeader Status = "pending_part_leader"
	StatusPendingTeamLeader Status = "pending_team_leader"
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingPartLeader, StatusPendingTeamLeader, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsPending reports whether the request still awaits a decision.
func (s Status) IsPending() bool {
	return s == StatusPendingPartLeader || s == StatusPendingTeamLeader
}

// IsFinal reports whether the request reached a terminal state.
func (s Status) IsFinal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Blocks reports whether a request in this status occupies dates and balance.
func (s Status) Blocks() bool {
	return s.IsPending() || s == StatusApproved
}

// Role is an organisational role tag held by a user.
type Role string

const (
	RoleTeamLeader Role = "team_leader"
	RolePartLeader Role = "part_leader"
	RoleMember     Role = "member"
)

var roleOrder = map[Role]int{
	RoleTeamLeader: 0,
	RolePartLeader: 1,
	RoleMember:     2,
}

// RoleSet is the set of roles a user holds. The zero value is empty.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// ParseRoles parses a comma separated role list such as "team_leader,part_leader".
func ParseRoles(value string) (RoleSet, error) {
	set := RoleSet{}
	for _, part := range strings.Split(value, ",") {
		tag := Role(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, ok := roleOrder[tag]; !ok {
			return nil, fmt.Errorf("leave: unknown role %q", tag)
		}
		set[tag] = struct{}{}
	}
	return set, nil
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// IsApprover reports whether the holder may act on approvals at all.
func (s RoleSet) IsApprover() bool {
	return s.Has(RoleTeamLeader) || s.Has(RolePartLeader)
}

// Slice returns the roles in a stable order.
func (s RoleSet) Slice() []Role {
	roles := make([]Role, 0, len(s))
	for r := range s {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roleOrder[roles[i]] < roleOrder[roles[j]] })
	return roles
}

// String renders the set in its comma separated storage form.
func (s RoleSet) String() string {
	roles := s.Slice()
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Day strips the clock from t, keeping the calendar date as seen in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// FormatDate renders a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysInclusive counts calendar days from start through end.
func DaysInclusive(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours()/24) + 1
}

// Request is the workflow view of a persisted vacation request.
type Request struct {
	ID      string
	OwnerID string
	Type    VacationType
	Start   time.Time
	End     time.Time
	Status  Status
}
