package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/vacation-approval/internal/persistence"
)

const vacationColumns = `v.id, v.user_id, v.vacation_type, v.start_date, v.end_date, v.reason, v.backup, v.status, v.created_at, v.updated_at`

// CreateVacation inserts a new request.
func (s *Store) CreateVacation(ctx context.Context, request persistence.VacationRequest) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO vacation_requests (id, user_id, vacation_type, start_date, end_date, reason, backup, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.UserID,
		request.Type,
		formatDate(request.StartDate),
		formatDate(request.EndDate),
		request.Reason,
		request.Backup,
		request.Status,
		formatTime(request.CreatedAt),
		formatTime(request.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create vacation: %w", mapError(err))
	}
	return nil
}

// GetVacation retrieves a request by ID.
func (s *Store) GetVacation(ctx context.Context, id string) (persistence.VacationRequest, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+vacationColumns+` FROM vacation_requests v WHERE v.id = ?`, id)
	return scanVacation(row)
}

// ListVacationsByUser returns the user's requests, latest start date first.
func (s *Store) ListVacationsByUser(ctx context.Context, userID string) ([]persistence.VacationRequest, error) {
	return s.queryVacations(ctx, `
		SELECT `+vacationColumns+` FROM vacation_requests v
		WHERE v.user_id = ?
		ORDER BY v.start_date DESC, v.id`, userID)
}

// ListVacationsByStatus returns every request in status ordered by start date.
func (s *Store) ListVacationsByStatus(ctx context.Context, status string) ([]persistence.VacationRequest, error) {
	return s.queryVacations(ctx, `
		SELECT `+vacationColumns+` FROM vacation_requests v
		WHERE v.status = ?
		ORDER BY v.start_date, v.id`, status)
}

// ListVacationsByStatusAndPart returns requests in status whose owner belongs to part.
func (s *Store) ListVacationsByStatusAndPart(ctx context.Context, status, part string) ([]persistence.VacationRequest, error) {
	return s.queryVacations(ctx, `
		SELECT `+vacationColumns+` FROM vacation_requests v
		JOIN users u ON u.id = v.user_id
		WHERE v.status = ? AND u.part = ?
		ORDER BY v.start_date, v.id`, status, part)
}

// UpdateVacationStatus performs a compare-and-set on the status column.
func (s *Store) UpdateVacationStatus(ctx context.Context, id, expected, next string, updatedAt time.Time) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE vacation_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		next, formatTime(updatedAt), id, expected)
	if err != nil {
		return fmt.Errorf("update vacation status: %w", mapError(err))
	}
	return s.guardAffected(ctx, result, id)
}

// DeleteVacation removes the request only while its status is one of expected.
func (s *Store) DeleteVacation(ctx context.Context, id string, expected ...string) error {
	if len(expected) == 0 {
		return errors.New("delete vacation: expected statuses required")
	}
	args := make([]any, 0, len(expected)+1)
	args = append(args, id)
	for _, status := range expected {
		args = append(args, status)
	}

	result, err := s.q.ExecContext(ctx,
		`DELETE FROM vacation_requests WHERE id = ? AND status IN (`+placeholders(len(expected))+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete vacation: %w", mapError(err))
	}
	return s.guardAffected(ctx, result, id)
}

// guardAffected distinguishes a missing request from one whose status moved on.
func (s *Store) guardAffected(ctx context.Context, result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = s.q.QueryRowContext(ctx, `SELECT 1 FROM vacation_requests WHERE id = ?`, id).Scan(&exists)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return persistence.ErrNotFound
	case err != nil:
		return fmt.Errorf("check vacation: %w", err)
	default:
		return persistence.ErrStatusConflict
	}
}

func (s *Store) queryVacations(ctx context.Context, query string, args ...any) ([]persistence.VacationRequest, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vacations: %w", mapError(err))
	}
	defer rows.Close()

	var requests []persistence.VacationRequest
	for rows.Next() {
		request, err := scanVacation(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vacations: %w", err)
	}
	return requests, nil
}

func scanVacation(row rowScanner) (persistence.VacationRequest, error) {
	var (
		request                      persistence.VacationRequest
		start, end, created, updated string
	)
	err := row.Scan(&request.ID, &request.UserID, &request.Type, &start, &end,
		&request.Reason, &request.Backup, &request.Status, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.VacationRequest{}, persistence.ErrNotFound
		}
		return persistence.VacationRequest{}, fmt.Errorf("scan vacation: %w", err)
	}

	if request.StartDate, err = parseDate(start); err != nil {
		return persistence.VacationRequest{}, err
	}
	if request.EndDate, err = parseDate(end); err != nil {
		return persistence.VacationRequest{}, err
	}
	if request.CreatedAt, err = parseTime(created); err != nil {
		return persistence.VacationRequest{}, err
	}
	if request.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.VacationRequest{}, err
	}
	return request, nil
}
