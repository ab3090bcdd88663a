package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrNotFound = errors.New("not found")

// DB wraps the projects/clients/timesheet_entries tables. Queries are
// written with '?' placeholders and rebound for Postgres.
type DB struct {
	*sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the given driver. For SQLite an empty dsn resolves to
// ~/.config/hourly/hourly.db and the schema is migrated on open; Postgres
// schemas are owned by the hosted project and only migrated on request.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var sqlDriver string
	switch driver {
	case DriverPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, fmt.Errorf("postgres DSN is empty; set database.dsn or DATABASE_URL")
		}
		sqlDriver = "pgx"
	case DriverSQLite:
		if dsn == "" {
			path, err := defaultSQLitePath()
			if err != nil {
				return nil, err
			}
			dsn = path
		}
		dsn = dsn + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
		sqlDriver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := &DB{DB: db, driver: driver, logger: logger}
	if driver == DriverSQLite {
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	logger.Debug("database opened", "driver", driver)
	return store, nil
}

func defaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	dir := filepath.Join(home, ".config", "hourly")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(dir, "hourly.db"), nil
}

// Driver reports which backend the DB talks to.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate creates the tables if they do not exist. The DDL sticks to types
// both SQLite and Postgres accept.
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			job_number TEXT,
			client_id TEXT REFERENCES clients(id)
		)`,
		`CREATE TABLE IF NOT EXISTS timesheet_entries (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			project_id TEXT REFERENCES projects(id),
			hours NUMERIC NOT NULL,
			date DATE NOT NULL,
			billable BOOLEAN NOT NULL DEFAULT TRUE,
			description TEXT NOT NULL,
			task_type TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS timesheet_entries_user_date_idx
			ON timesheet_entries (user_id, date DESC)`,
	}

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

// rebind rewrites '?' placeholders to '$n' for Postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
