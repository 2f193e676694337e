package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var fs embed.FS

func setup() error {
	goose.SetBaseFS(fs)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	return nil
}

// Run applies all pending migrations against db.
func Run(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Reset rolls back every applied migration.
func Reset(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.Reset(db, "."); err != nil {
		return fmt.Errorf("resetting migrations: %w", err)
	}
	return nil
}
