package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListUsersByRole(ctx context.Context, role string, part string) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
	// LockUser serialises writers acting on behalf of the user until the
	// surrounding transaction ends.
	LockUser(ctx context.Context, id string) error
}

// VacationRepository stores vacation requests.
type VacationRepository interface {
	CreateVacation(ctx context.Context, request VacationRequest) error
	GetVacation(ctx context.Context, id string) (VacationRequest, error)
	ListVacationsByUser(ctx context.Context, userID string) ([]VacationRequest, error)
	ListVacationsByStatus(ctx context.Context, status string) ([]VacationRequest, error)
	ListVacationsByStatusAndPart(ctx context.Context, status, part string) ([]VacationRequest, error)
	// UpdateVacationStatus moves a request from expected to next. It returns
	// ErrStatusConflict when the stored status differs from expected.
	UpdateVacationStatus(ctx context.Context, id, expected, next string, updatedAt time.Time) error
	// DeleteVacation removes a request whose status is one of expected.
	DeleteVacation(ctx context.Context, id string, expected ...string) error
}

// NotificationRepository stores user notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	ListNotificationsByUser(ctx context.Context, userID string) ([]Notification, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	MarkNotificationsRead(ctx context.Context, userID string) error
	MarkNotificationRead(ctx context.Context, id, userID string) error
}

// Store bundles every repository behind one handle.
type Store interface {
	UserRepository
	VacationRepository
	NotificationRepository
}

// Transactor runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Store) error) error
}
