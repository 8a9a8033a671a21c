package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/vacation-approval/internal/persistence"
	"github.com/example/vacation-approval/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	dateLayout      = "2006-01-02"
	// timestampLayout is fixed width so stored values sort chronologically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements persistence.Store on top of SQLite. A Store returned by
// WithinTx is bound to that transaction.
type Store struct {
	pool *ConnectionPool
	q    queryer
}

var (
	_ persistence.Store      = (*Store)(nil)
	_ persistence.Transactor = (*Store)(nil)
)

// Open connects to the database described by cfg.
func Open(cfg Config) (*Store, error) {
	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(pool), nil
}

// NewStore builds a Store over an existing pool.
func NewStore(pool *ConnectionPool) *Store {
	return &Store{pool: pool, q: pool.DB()}
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewManager(
		migration.NewFSScanner(migrationsFS, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		logger,
	)
	return manager.Run(ctx)
}

// WithinTx runs fn inside a single transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(persistence.Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(&Store{pool: s.pool, q: tx})
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: invalid timestamp %q: %w", value, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: invalid date %q: %w", value, err)
	}
	return t, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
