package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteExecutor_ExecuteMigration(t *testing.T) {
	t.Parallel()

	migration := Migration{
		Version:  "001",
		SQL:      "CREATE TABLE users (id TEXT);\nCREATE TABLE notes (id TEXT);",
		FilePath: "migrations/001_initial.sql",
		Checksum: "abc",
	}

	t.Run("commits statements and version record together", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE users").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE notes").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs("001", sqlmock.AnyArg(), "abc", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, NewSQLiteExecutor(db).ExecuteMigration(context.Background(), migration))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when a statement fails", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		boom := errors.New("syntax error")
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE users").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE notes").WillReturnError(boom)
		mock.ExpectRollback()

		err = NewSQLiteExecutor(db).ExecuteMigration(context.Background(), migration)
		require.ErrorIs(t, err, boom)
		var dbErr *DatabaseError
		require.True(t, errors.As(err, &dbErr))
		assert.Equal(t, "001", dbErr.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses migrations without statements", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		err = NewSQLiteExecutor(db).ExecuteMigration(context.Background(), Migration{Version: "002", SQL: "-- nothing"})
		assert.ErrorIs(t, err, ErrInvalidMigrationFile)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
