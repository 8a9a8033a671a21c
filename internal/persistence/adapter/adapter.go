// Package adapter exposes persistence stores through the repository
// interfaces declared by the application package.
package adapter

import (
	"context"
	"time"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/leave"
	"github.com/example/vacation-approval/internal/persistence"
)

// Backend is a store that can also open transactions.
type Backend interface {
	persistence.Store
	persistence.Transactor
}

// Store adapts a persistence Backend to the application repositories.
type Store struct {
	repos
	tx persistence.Transactor
}

var (
	_ application.VacationStore          = (*Store)(nil)
	_ application.CredentialStore        = (*Store)(nil)
	_ application.NotificationRepository = (*Store)(nil)
)

// New wraps backend.
func New(backend Backend) *Store {
	return &Store{repos: repos{store: backend}, tx: backend}
}

// WithinTx runs fn against repositories bound to one transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(application.Repositories) error) error {
	return s.tx.WithinTx(ctx, func(store persistence.Store) error {
		return fn(repos{store: store})
	})
}

type repos struct {
	store persistence.Store
}

// --- users ---

func (r repos) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := r.store.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (r repos) GetUserCredentials(ctx context.Context, username string) (application.UserCredentials, error) {
	stored, err := r.store.GetUserByUsername(ctx, username)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (r repos) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := r.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationUsers(models), nil
}

func (r repos) ListUsersByRole(ctx context.Context, role leave.Role, part string) ([]application.User, error) {
	models, err := r.store.ListUsersByRole(ctx, string(role), part)
	if err != nil {
		return nil, err
	}
	return toApplicationUsers(models), nil
}

func (r repos) CreateUser(ctx context.Context, user application.User, passwordHash string) error {
	return r.store.CreateUser(ctx, toPersistenceUser(user, passwordHash))
}

func (r repos) UpdateUser(ctx context.Context, user application.User) error {
	current, err := r.store.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}
	return r.store.UpdateUser(ctx, toPersistenceUser(user, current.PasswordHash))
}

func (r repos) UpdatePassword(ctx context.Context, userID, passwordHash string, temporary bool, updatedAt time.Time) error {
	current, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	current.PasswordHash = passwordHash
	current.TempPassword = temporary
	current.UpdatedAt = updatedAt
	return r.store.UpdateUser(ctx, current)
}

func (r repos) DeleteUser(ctx context.Context, id string) error {
	return r.store.DeleteUser(ctx, id)
}

func (r repos) LockUser(ctx context.Context, id string) error {
	return r.store.LockUser(ctx, id)
}

// --- vacations ---

func (r repos) CreateVacation(ctx context.Context, request application.VacationRequest) error {
	return r.store.CreateVacation(ctx, toPersistenceVacation(request))
}

func (r repos) GetVacation(ctx context.Context, id string) (application.VacationRequest, error) {
	stored, err := r.store.GetVacation(ctx, id)
	if err != nil {
		return application.VacationRequest{}, err
	}
	return toApplicationVacation(stored), nil
}

func (r repos) ListVacationsByUser(ctx context.Context, userID string) ([]application.VacationRequest, error) {
	return toApplicationVacations(r.store.ListVacationsByUser(ctx, userID))
}

func (r repos) ListVacationsByStatus(ctx context.Context, status leave.Status) ([]application.VacationRequest, error) {
	return toApplicationVacations(r.store.ListVacationsByStatus(ctx, string(status)))
}

func (r repos) ListVacationsByStatusAndPart(ctx context.Context, status leave.Status, part string) ([]application.VacationRequest, error) {
	return toApplicationVacations(r.store.ListVacationsByStatusAndPart(ctx, string(status), part))
}

func (r repos) UpdateVacationStatus(ctx context.Context, id string, expected, next leave.Status, updatedAt time.Time) error {
	return r.store.UpdateVacationStatus(ctx, id, string(expected), string(next), updatedAt)
}

func (r repos) DeleteVacation(ctx context.Context, id string, expected ...leave.Status) error {
	statuses := make([]string, len(expected))
	for i, status := range expected {
		statuses[i] = string(status)
	}
	return r.store.DeleteVacation(ctx, id, statuses...)
}

// --- notifications ---

func (r repos) CreateNotification(ctx context.Context, n application.Notification) error {
	return r.store.CreateNotification(ctx, persistence.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	})
}

func (r repos) ListNotifications(ctx context.Context, userID string) ([]application.Notification, error) {
	models, err := r.store.ListNotificationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]application.Notification, len(models))
	for i, n := range models {
		out[i] = application.Notification{
			ID:        n.ID,
			UserID:    n.UserID,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	return out, nil
}

func (r repos) CountUnread(ctx context.Context, userID string) (int, error) {
	return r.store.CountUnreadNotifications(ctx, userID)
}

func (r repos) MarkAllRead(ctx context.Context, userID string) error {
	return r.store.MarkNotificationsRead(ctx, userID)
}

func (r repos) MarkRead(ctx context.Context, id, userID string) error {
	return r.store.MarkNotificationRead(ctx, id, userID)
}

// --- conversions ---

func toApplicationUser(model persistence.User) application.User {
	// Roles are validated on write; an unreadable list degrades to member.
	roles, err := leave.ParseRoles(model.Roles)
	if err != nil || len(roles) == 0 {
		roles = leave.NewRoleSet(leave.RoleMember)
	}
	return application.User{
		ID:             model.ID,
		EmployeeNumber: model.EmployeeNumber,
		Username:       model.Username,
		HireDate:       model.HireDate,
		Part:           model.Part,
		Roles:          roles,
		TempPassword:   model.TempPassword,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func toApplicationUsers(models []persistence.User) []application.User {
	if len(models) == 0 {
		return nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:             user.ID,
		EmployeeNumber: user.EmployeeNumber,
		Username:       user.Username,
		PasswordHash:   passwordHash,
		TempPassword:   user.TempPassword,
		HireDate:       user.HireDate,
		Part:           user.Part,
		Roles:          user.Roles.String(),
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func toApplicationVacation(model persistence.VacationRequest) application.VacationRequest {
	return application.VacationRequest{
		ID:        model.ID,
		UserID:    model.UserID,
		Type:      leave.VacationType(model.Type),
		Start:     model.StartDate,
		End:       model.EndDate,
		Reason:    model.Reason,
		Backup:    model.Backup,
		Status:    leave.Status(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toApplicationVacations(models []persistence.VacationRequest, err error) ([]application.VacationRequest, error) {
	if err != nil {
		return nil, err
	}
	requests := make([]application.VacationRequest, len(models))
	for i, model := range models {
		requests[i] = toApplicationVacation(model)
	}
	return requests, nil
}

func toPersistenceVacation(request application.VacationRequest) persistence.VacationRequest {
	return persistence.VacationRequest{
		ID:        request.ID,
		UserID:    request.UserID,
		Type:      string(request.Type),
		StartDate: request.Start,
		EndDate:   request.End,
		Reason:    request.Reason,
		Backup:    request.Backup,
		Status:    string(request.Status),
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}
