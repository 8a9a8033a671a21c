package migration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScanner struct {
	migrations []Migration
	err        error
}

func (s stubScanner) ScanMigrations() ([]Migration, error) {
	return s.migrations, s.err
}

type stubExecutor struct {
	applied  []AppliedMigration
	executed []string
	failOn   string
}

func (e *stubExecutor) InitializeVersionTable(context.Context) error { return nil }

func (e *stubExecutor) GetAppliedVersions(context.Context) ([]AppliedMigration, error) {
	return e.applied, nil
}

func (e *stubExecutor) ExecuteMigration(_ context.Context, m Migration) error {
	if m.Version == e.failOn {
		return errors.New("boom")
	}
	e.executed = append(e.executed, m.Version)
	e.applied = append(e.applied, AppliedMigration{Version: m.Version, Checksum: m.Checksum})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_Run(t *testing.T) {
	t.Parallel()

	available := []Migration{
		{Version: "001", Checksum: "one"},
		{Version: "002", Checksum: "two"},
		{Version: "003", Checksum: "three"},
	}

	t.Run("applies only pending migrations", func(t *testing.T) {
		t.Parallel()
		executor := &stubExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "one"}}}
		manager := NewManager(stubScanner{migrations: available}, executor, discardLogger())

		require.NoError(t, manager.Run(context.Background()))
		assert.Equal(t, []string{"002", "003"}, executor.executed)

		require.NoError(t, manager.Run(context.Background()))
		assert.Equal(t, []string{"002", "003"}, executor.executed, "second run is a no-op")

		status, err := manager.Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "003", status.CurrentVersion)
		assert.Empty(t, status.PendingMigrations)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		t.Parallel()
		executor := &stubExecutor{failOn: "002"}
		err := NewManager(stubScanner{migrations: available}, executor, discardLogger()).Run(context.Background())
		assert.ErrorIs(t, err, ErrMigrationFailed)
		assert.Equal(t, []string{"001"}, executor.executed)
	})

	t.Run("detects edited migrations", func(t *testing.T) {
		t.Parallel()
		executor := &stubExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "changed"}}}
		err := NewManager(stubScanner{migrations: available}, executor, discardLogger()).Run(context.Background())
		assert.ErrorIs(t, err, ErrChecksumMismatch)
		assert.Empty(t, executor.executed)
	})

	t.Run("detects applied versions without files", func(t *testing.T) {
		t.Parallel()
		executor := &stubExecutor{applied: []AppliedMigration{{Version: "009"}}}
		err := NewManager(stubScanner{migrations: available}, executor, discardLogger()).Run(context.Background())
		assert.ErrorIs(t, err, ErrVersionConflict)
	})
}
