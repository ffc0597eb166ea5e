// Command migrate manages the listings database schema from the command
// line, driving the same embedded migration set the crawler applies on
// startup.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"rentwatch/migrations"
)

var commands = map[string]func(*sql.DB, string, ...goose.OptionsFunc) error{
	"up":      goose.Up,
	"up-one":  goose.UpByOne,
	"down":    goose.Down,
	"status":  goose.Status,
	"version": goose.Version,
	"reset":   goose.Reset,
}

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/rentwatch.db"), "path to the listings database")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cmd := args[0]
	run, ok := commands[cmd]
	if !ok {
		log.Fatalf("unknown command: %s", cmd)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatalf("set goose dialect: %v", err)
	}

	if err := run(db, "."); err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [-db path] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  up        Apply all pending migrations")
	fmt.Fprintln(os.Stderr, "  up-one    Apply the next pending migration")
	fmt.Fprintln(os.Stderr, "  down      Roll back the last migration")
	fmt.Fprintln(os.Stderr, "  status    Show migration status")
	fmt.Fprintln(os.Stderr, "  version   Show the current schema version")
	fmt.Fprintln(os.Stderr, "  reset     Roll back everything")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
