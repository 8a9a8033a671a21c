// Package migration applies versioned schema changes to a SQLite database.
//
// Migrations are read from an fs.FS (normally an embed.FS compiled into the
// binary) and follow the naming convention {version}_{description}.sql, e.g.
// "001_initial_schema.sql". Each migration runs in its own transaction and is
// recorded in the schema_migrations table together with its checksum, so an
// applied file that is later edited is reported instead of silently skipped.
//
// Example usage:
//
//	manager := migration.NewManager(
//		migration.NewFSScanner(migrationsFS, "migrations"),
//		migration.NewSQLiteExecutor(db),
//		logger,
//	)
//	if err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
