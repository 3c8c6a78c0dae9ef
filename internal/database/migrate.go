// migrate.go handles database migration using golang-migrate.
//
// Migrations are SQL files embedded from migrations/<dialect>/. Each migration
// has an "up" (apply) and "down" (rollback) file. The migrate library
// tracks which migrations have been applied in a schema_migrations table.
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// RunMigrations applies all pending database migrations and returns the
// resulting schema version.
// This is called at application startup to ensure the schema is up to date.
func (db *DB) RunMigrations() (uint, error) {
	var (
		driver database.Driver
		err    error
	)
	switch db.dialect {
	case Postgres:
		driver, err = postgres.WithInstance(db.DB.DB, &postgres.Config{})
	case SQLite:
		driver, err = sqlite.WithInstance(db.DB.DB, &sqlite.Config{})
	default:
		return 0, fmt.Errorf("unknown dialect %q", db.dialect)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "migrations/"+string(db.dialect))
	if err != nil {
		return 0, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(db.dialect), driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrator: %w", err)
	}

	// Run all pending migrations
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
