package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/vacation-approval/internal/persistence"
)

const userColumns = `id, employee_number, username, password_hash, temp_password, hire_date, part, roles, created_at, updated_at`

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		strings.TrimSpace(user.EmployeeNumber),
		strings.TrimSpace(user.Username),
		user.PasswordHash,
		boolToInt(user.TempPassword),
		formatDate(user.HireDate),
		user.Part,
		user.Roles,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", mapError(err))
	}
	return nil
}

// UpdateUser replaces every mutable column of an existing user.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE users
		SET employee_number = ?, username = ?, password_hash = ?, temp_password = ?,
		    hire_date = ?, part = ?, roles = ?, updated_at = ?
		WHERE id = ?`,
		strings.TrimSpace(user.EmployeeNumber),
		strings.TrimSpace(user.Username),
		user.PasswordHash,
		boolToInt(user.TempPassword),
		formatDate(user.HireDate),
		user.Part,
		user.Roles,
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", mapError(err))
	}
	return expectAffected(result)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by login name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, strings.TrimSpace(username))
	return scanUser(row)
}

// ListUsers returns all users ordered by employee number.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY employee_number, id`)
}

// ListUsersByRole returns users holding role, limited to part when part is not empty.
func (s *Store) ListUsersByRole(ctx context.Context, role, part string) ([]persistence.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE instr(',' || roles || ',', ?) > 0`
	args := []any{"," + role + ","}
	if part != "" {
		query += ` AND part = ?`
		args = append(args, part)
	}
	query += ` ORDER BY employee_number, id`
	return s.queryUsers(ctx, query, args...)
}

// DeleteUser removes a user; requests and notifications cascade.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", mapError(err))
	}
	return expectAffected(result)
}

// LockUser takes the write lock on the user's row. Combined with BEGIN
// IMMEDIATE this serialises submissions made for the same user.
func (s *Store) LockUser(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, `UPDATE users SET updated_at = updated_at WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("lock user: %w", mapError(err))
	}
	return expectAffected(result)
}

func (s *Store) queryUsers(ctx context.Context, query string, args ...any) ([]persistence.User, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", mapError(err))
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                   persistence.User
		temp                   int
		hire, created, updated string
	)
	err := row.Scan(&user.ID, &user.EmployeeNumber, &user.Username, &user.PasswordHash, &temp,
		&hire, &user.Part, &user.Roles, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, fmt.Errorf("scan user: %w", err)
	}
	user.TempPassword = temp != 0

	if user.HireDate, err = parseDate(hire); err != nil {
		return persistence.User{}, err
	}
	if user.CreatedAt, err = parseTime(created); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

func expectAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
