package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/vacation-approval/internal/persistence"
	"github.com/example/vacation-approval/internal/persistence/adapter"
	"github.com/example/vacation-approval/internal/persistence/sqlite"
)

// NamedBackend labels a storage implementation for table driven tests.
type NamedBackend struct {
	Name    string
	Backend adapter.Backend
}

// NewSQLiteBackend opens a migrated SQLite database in a temporary directory.
// The database is closed when the test ends.
func NewSQLiteBackend(tb testing.TB) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "vacation.db")
	store, err := sqlite.Open(sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return store
}

// Backends returns fresh instances of every storage implementation.
func Backends(tb testing.TB) []NamedBackend {
	tb.Helper()
	return []NamedBackend{
		{Name: "memory", Backend: sqlite.NewMemory()},
		{Name: "sqlite", Backend: NewSQLiteBackend(tb)},
	}
}

// SeedUsers stores the fixtures, failing the test on error.
func SeedUsers(tb testing.TB, repo persistence.UserRepository, users ...UserFixture) {
	tb.Helper()
	for _, u := range users {
		if err := repo.CreateUser(context.Background(), u.Persistence()); err != nil {
			tb.Fatalf("seed user %s: %v", u.ID, err)
		}
	}
}

// SeedVacations stores the fixtures, failing the test on error.
func SeedVacations(tb testing.TB, repo persistence.VacationRepository, requests ...VacationFixture) {
	tb.Helper()
	for _, r := range requests {
		if err := repo.CreateVacation(context.Background(), r.Persistence()); err != nil {
			tb.Fatalf("seed vacation %s: %v", r.ID, err)
		}
	}
}
