package application

import (
	"context"
	"time"

	"github.com/example/vacation-approval/internal/leave"
)

// UserRepository captures the user persistence operations needed by the services.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (User, error)
	GetUserCredentials(ctx context.Context, username string) (UserCredentials, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListUsersByRole(ctx context.Context, role leave.Role, part string) ([]User, error)
	CreateUser(ctx context.Context, user User, passwordHash string) error
	UpdateUser(ctx context.Context, user User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, temporary bool, updatedAt time.Time) error
	DeleteUser(ctx context.Context, id string) error
	// LockUser serialises writers acting for the user until the transaction ends.
	LockUser(ctx context.Context, id string) error
}

// VacationRepository captures the request persistence operations needed by the workflow.
type VacationRepository interface {
	CreateVacation(ctx context.Context, request VacationRequest) error
	GetVacation(ctx context.Context, id string) (VacationRequest, error)
	ListVacationsByUser(ctx context.Context, userID string) ([]VacationRequest, error)
	ListVacationsByStatus(ctx context.Context, status leave.Status) ([]VacationRequest, error)
	ListVacationsByStatusAndPart(ctx context.Context, status leave.Status, part string) ([]VacationRequest, error)
	UpdateVacationStatus(ctx context.Context, id string, expected, next leave.Status, updatedAt time.Time) error
	DeleteVacation(ctx context.Context, id string, expected ...leave.Status) error
}

// NotificationRepository captures inbox persistence.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) error
	MarkRead(ctx context.Context, id, userID string) error
}

// Repositories is the set of repositories bound to one transaction.
type Repositories interface {
	UserRepository
	VacationRepository
}

// Transactor runs fn atomically. fn's writes commit when it returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

// VacationStore is the storage used by VacationService.
type VacationStore interface {
	Repositories
	Transactor
}

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}
