package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/leave"
)

type seedStore interface {
	ListUsers(ctx context.Context) ([]application.User, error)
	CreateUser(ctx context.Context, user application.User, passwordHash string) error
}

type seedAccount struct {
	username string
	part     string
	roles    []leave.Role
	years    int
	months   int
}

// defaultOrganisation is one team: an administrator who leads the team and
// three parts, each with a part leader and members.
var defaultOrganisation = []seedAccount{
	{username: "admin", part: "Management", roles: []leave.Role{leave.RoleTeamLeader}, years: 5},
	{username: "dev_part_leader", part: "Development", roles: []leave.Role{leave.RolePartLeader}, years: 3},
	{username: "design_part_leader", part: "Design", roles: []leave.Role{leave.RolePartLeader}, years: 3},
	{username: "marketing_part_leader", part: "Marketing", roles: []leave.Role{leave.RolePartLeader}, years: 2},
	{username: "dev_john", part: "Development", roles: []leave.Role{leave.RoleMember}, years: 2},
	{username: "dev_sarah", part: "Development", roles: []leave.Role{leave.RoleMember}, years: 1},
	{username: "dev_mike", part: "Development", roles: []leave.Role{leave.RoleMember}, months: 8},
	{username: "design_emma", part: "Design", roles: []leave.Role{leave.RoleMember}, years: 2},
	{username: "design_chris", part: "Design", roles: []leave.Role{leave.RoleMember}, months: 2},
	{username: "marketing_tom", part: "Marketing", roles: []leave.Role{leave.RoleMember}, years: 1},
}

// seedOrganisation creates defaultOrganisation when no user exists yet and
// returns how many accounts were created. Every account starts on the
// temporary password.
func seedOrganisation(ctx context.Context, store seedStore, hash application.PasswordHasher, temporaryPassword string, ids func() string, now time.Time) (int, error) {
	existing, err := store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	if temporaryPassword == "" {
		temporaryPassword = application.DefaultTemporaryPassword
	}
	passwordHash, err := hash(temporaryPassword)
	if err != nil {
		return 0, fmt.Errorf("hash temporary password: %w", err)
	}

	for i, account := range defaultOrganisation {
		hired := now.AddDate(-account.years, -account.months, 0)
		year, month, day := hired.Date()
		user := application.User{
			ID:             ids(),
			EmployeeNumber: fmt.Sprintf("E%04d", i+1),
			Username:       account.username,
			HireDate:       time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
			Part:           account.part,
			Roles:          leave.NewRoleSet(account.roles...),
			TempPassword:   true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := store.CreateUser(ctx, user, passwordHash); err != nil {
			return i, fmt.Errorf("create %s: %w", account.username, err)
		}
	}
	return len(defaultOrganisation), nil
}
