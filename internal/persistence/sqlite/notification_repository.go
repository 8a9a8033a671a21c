package sqlite

import (
	"context"
	"fmt"

	"github.com/example/vacation-approval/internal/persistence"
)

// CreateNotification inserts a notification.
func (s *Store) CreateNotification(ctx context.Context, n persistence.Notification) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, message, is_read, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Message, boolToInt(n.Read), formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("create notification: %w", mapError(err))
	}
	return nil
}

// ListNotificationsByUser returns the user's notifications, newest first.
func (s *Store) ListNotificationsByUser(ctx context.Context, userID string) ([]persistence.Notification, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, message, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", mapError(err))
	}
	defer rows.Close()

	var notifications []persistence.Notification
	for rows.Next() {
		var (
			n       persistence.Notification
			read    int
			created string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &read, &created); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Read = read != 0
		if n.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// CountUnreadNotifications counts the user's unread notifications.
func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", mapError(err))
	}
	return count, nil
}

// MarkNotificationsRead flags every notification of the user as read.
func (s *Store) MarkNotificationsRead(ctx context.Context, userID string) error {
	if _, err := s.q.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID); err != nil {
		return fmt.Errorf("mark notifications read: %w", mapError(err))
	}
	return nil
}

// MarkNotificationRead flags one notification as read if it belongs to userID.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", mapError(err))
	}
	return expectAffected(result)
}
