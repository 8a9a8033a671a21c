package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/vacation-approval/internal/leave"
)

// UserService administers employee accounts. Every operation requires the
// team leader role.
type UserService struct {
	users             UserRepository
	hashPassword      PasswordHasher
	temporaryPassword string
	idGenerator       func() string
	now               func() time.Time
	logger            *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, hash PasswordHasher, temporaryPassword string, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, hash, temporaryPassword, idGenerator, now, nil)
}

// NewUserServiceWithLogger wires dependencies for the user service with a logger.
func NewUserServiceWithLogger(users UserRepository, hash PasswordHasher, temporaryPassword string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = HashPassword
	}
	if temporaryPassword == "" {
		temporaryPassword = DefaultTemporaryPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:             users,
		hashPassword:      hash,
		temporaryPassword: temporaryPassword,
		idGenerator:       idGenerator,
		now:               now,
		logger:            defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

func (s *UserService) authorize(principal Principal) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}
	if !principal.Roles.Has(leave.RoleTeamLeader) {
		return ErrUnauthorized
	}
	return nil
}

// CreateUser validates input and persists a new account holding the temporary password.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (user User, err error) {
	if err = s.authorize(params.Principal); err != nil {
		return User{}, err
	}
	logger := s.loggerWith(ctx, "CreateUser",
		"principal_id", params.Principal.UserID,
		"username", strings.TrimSpace(params.Input.Username),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user created", "user_id", user.ID)
	}()

	user, vErr := buildUser(params.Input)
	if vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := s.hashPassword(s.temporaryPassword)
	if err != nil {
		return User{}, fmt.Errorf("hash temporary password: %w", err)
	}

	user.ID = s.idGenerator()
	user.TempPassword = true
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt

	if err := s.users.CreateUser(ctx, user, hash); err != nil {
		return User{}, mapRepoError(err)
	}
	return user, nil
}

// UpdateUser replaces the editable attributes of an existing account.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (user User, err error) {
	if err = s.authorize(params.Principal); err != nil {
		return User{}, err
	}
	logger := s.loggerWith(ctx, "UpdateUser",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	existing, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return User{}, mapRepoError(err)
	}

	updated, vErr := buildUser(params.Input)
	if vErr.HasErrors() {
		return User{}, vErr
	}
	updated.ID = existing.ID
	updated.TempPassword = existing.TempPassword
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()

	if err := s.users.UpdateUser(ctx, updated); err != nil {
		return User{}, mapRepoError(err)
	}
	return updated, nil
}

// DeleteUser removes an account together with its requests and notifications.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) (err error) {
	if err = s.authorize(principal); err != nil {
		return err
	}
	logger := s.loggerWith(ctx, "DeleteUser", "principal_id", principal.UserID, "user_id", userID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user deleted")
	}()

	if userID == principal.UserID {
		return &ValidationError{FieldErrors: map[string]string{"user_id": "you cannot delete your own account"}}
	}
	return mapRepoError(s.users.DeleteUser(ctx, userID))
}

// ListUsers returns every account ordered by employee number.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]User, len(users))
	copy(out, users)
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeNumber == out[j].EmployeeNumber {
			return out[i].ID < out[j].ID
		}
		return out[i].EmployeeNumber < out[j].EmployeeNumber
	})
	return out, nil
}

// ResetPassword restores the temporary password and forces a change at next login.
func (s *UserService) ResetPassword(ctx context.Context, principal Principal, userID string) (err error) {
	if err = s.authorize(principal); err != nil {
		return err
	}
	logger := s.loggerWith(ctx, "ResetPassword", "principal_id", principal.UserID, "user_id", userID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "password reset failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "password reset")
	}()

	hash, err := s.hashPassword(s.temporaryPassword)
	if err != nil {
		return fmt.Errorf("hash temporary password: %w", err)
	}
	return mapRepoError(s.users.UpdatePassword(ctx, userID, hash, true, s.now()))
}

func buildUser(input UserInput) (User, *ValidationError) {
	vErr := &ValidationError{}
	user := User{
		EmployeeNumber: strings.TrimSpace(input.EmployeeNumber),
		Username:       strings.TrimSpace(input.Username),
		Part:           strings.TrimSpace(input.Part),
	}

	if user.EmployeeNumber == "" {
		vErr.add("employee_number", "employee number is required")
	}
	if user.Username == "" {
		vErr.add("username", "username is required")
	}
	if user.Part == "" {
		vErr.add("part", "part is required")
	}

	hire, err := leave.ParseDate(input.HireDate)
	if err != nil {
		vErr.add("hire_date", "hire date must use YYYY-MM-DD")
	}
	user.HireDate = hire

	roles, err := leave.ParseRoles(input.Roles)
	switch {
	case err != nil:
		vErr.add("roles", strings.TrimPrefix(err.Error(), "leave: "))
	case len(roles) == 0:
		roles = leave.NewRoleSet(leave.RoleMember)
	}
	user.Roles = roles

	return user, vErr
}
