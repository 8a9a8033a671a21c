package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// NotificationService stores workflow messages and serves each user's inbox.
// It implements Notifier.
type NotificationService struct {
	notifications NotificationRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

var _ Notifier = (*NotificationService)(nil)

// NewNotificationService wires dependencies for the notification service.
func NewNotificationService(notifications NotificationRepository, idGenerator func() string, now func() time.Time) *NotificationService {
	return NewNotificationServiceWithLogger(notifications, idGenerator, now, nil)
}

// NewNotificationServiceWithLogger wires dependencies for the notification service with a logger.
func NewNotificationServiceWithLogger(notifications NotificationRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		notifications: notifications,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *NotificationService) ready() error {
	if s == nil {
		return fmt.Errorf("NotificationService is nil")
	}
	if s.notifications == nil {
		return fmt.Errorf("notification repository not configured")
	}
	return nil
}

// Notify records message in the inbox of userID.
func (s *NotificationService) Notify(ctx context.Context, userID, message string) error {
	if err := s.ready(); err != nil {
		return err
	}
	message = strings.TrimSpace(message)
	if userID == "" || message == "" {
		return &ValidationError{FieldErrors: map[string]string{"notification": "recipient and message are required"}}
	}

	notification := Notification{
		ID:        s.idGenerator(),
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.notifications.CreateNotification(ctx, notification); err != nil {
		return mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "NotificationService", "Notify",
		"recipient_id", userID,
		"notification_id", notification.ID,
	).DebugContext(ctx, "notification stored")
	return nil
}

// Inbox returns the principal's notifications, newest first, and marks the
// listed ones read. Notifications stored after the listing stay unread.
// Unread reflects the count before marking.
func (s *NotificationService) Inbox(ctx context.Context, principal Principal) (Inbox, error) {
	if err := s.ready(); err != nil {
		return Inbox{}, err
	}
	if principal.UserID == "" {
		return Inbox{}, ErrUnauthorized
	}

	notifications, err := s.notifications.ListNotifications(ctx, principal.UserID)
	if err != nil {
		return Inbox{}, mapRepoError(err)
	}
	unread := 0
	for _, n := range notifications {
		if n.Read {
			continue
		}
		unread++
		if err := mapRepoError(s.notifications.MarkRead(ctx, n.ID, principal.UserID)); err != nil && !errors.Is(err, ErrNotFound) {
			return Inbox{}, err
		}
	}
	return Inbox{Notifications: notifications, Unread: unread}, nil
}

// UnreadCount reports how many of the principal's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, principal Principal) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if principal.UserID == "" {
		return 0, ErrUnauthorized
	}
	count, err := s.notifications.CountUnread(ctx, principal.UserID)
	if err != nil {
		return 0, mapRepoError(err)
	}
	return count, nil
}

// MarkAllRead flags every notification of the principal as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, principal Principal) error {
	if err := s.ready(); err != nil {
		return err
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}
	return mapRepoError(s.notifications.MarkAllRead(ctx, principal.UserID))
}

// MarkRead flags one notification as read. Notifications of other users are
// reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, principal Principal, notificationID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}
	return mapRepoError(s.notifications.MarkRead(ctx, notificationID, principal.UserID))
}
