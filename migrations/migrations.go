// Package migrations embeds the listings database schema and applies it
// with goose. The migration set includes the reference-table seeds the
// crawl pipeline resolves at run start.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS contains the embedded migration files.
//
//go:embed *.sql
var FS embed.FS

// Run brings the database up to the latest schema version.
func Run(db *sql.DB) error {
	goose.SetBaseFS(FS)

	// modernc driver, goose only knows the sqlite3 dialect name.
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
