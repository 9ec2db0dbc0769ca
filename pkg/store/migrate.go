package store

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// migrationSet returns the goose dialect and migration directory for a dialect.
func migrationSet(d Dialect) (gooseDialect, dir string) {
	if d == DialectSQLite {
		return "sqlite3", "migrations/sqlite"
	}
	return "postgres", "migrations/postgres"
}

func setupGoose(d Dialect) (string, error) {
	gooseDialect, dir := migrationSet(d)
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return "", fmt.Errorf("failed to set dialect: %w", err)
	}
	return dir, nil
}

// Migrate runs all pending migrations.
func Migrate(db *sql.DB, d Dialect) error {
	dir, err := setupGoose(d)
	if err != nil {
		return err
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(db *sql.DB, d Dialect) error {
	dir, err := setupGoose(d)
	if err != nil {
		return err
	}
	if err := goose.Down(db, dir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationStatus prints the applied state of every migration through goose's logger.
func MigrationStatus(db *sql.DB, d Dialect) error {
	dir, err := setupGoose(d)
	if err != nil {
		return err
	}
	return goose.Status(db, dir)
}

// MigrationVersion returns the current migration version.
func MigrationVersion(db *sql.DB, d Dialect) (int64, error) {
	if _, err := setupGoose(d); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db)
}
