package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/bookcircle/bookcircle-api/migrations"
)

// runMigrations applies any pending schema migrations embedded in the
// binary. Running at startup keeps the schema in lockstep with the code.
func runMigrations(db *sql.DB, appLogger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	appLogger.Info("Database migrations applied", "version", version)
	return nil
}
