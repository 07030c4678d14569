// Package sqlite stores contacts in a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/prior-it/directory/core"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DB is a SQLite database handle.
type DB struct {
	*sql.DB
	path string
}

// NewDB opens or creates the database file at path.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	slog.Info("Opening sqlite database", "path", path)
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return &DB{DB: db, path: path}, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Ping implements core.Pinger.
func (db *DB) Ping(ctx context.Context) error {
	return convertSqliteError(db.PingContext(ctx))
}

func (db *DB) createGooseProvider() (*goose.Provider, error) {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("cannot get embedFS migrations folder: %w", err)
	}
	return goose.NewProvider(goose.DialectSQLite3, db.DB, migrations)
}

// Migrate the database to the latest version of the embedded migrations.
func (db *DB) Migrate(ctx context.Context) error {
	provider, err := db.createGooseProvider()
	if err != nil {
		return fmt.Errorf("cannot create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("cannot run database migrations: %w", err)
	}
	for _, result := range results {
		slog.Debug("Applied sqlite migration", "source", result.Source.Path, "duration", result.Duration)
	}
	return nil
}

// Migrate the database down a single step.
func (db *DB) MigrateDown(ctx context.Context) error {
	provider, err := db.createGooseProvider()
	if err != nil {
		return fmt.Errorf("cannot create goose provider: %w", err)
	}
	if _, err := provider.Down(ctx); err != nil {
		return fmt.Errorf("cannot run database down migrations: %w", err)
	}
	return nil
}

// convertSqliteError will convert known sqlite errors to their core variant.
// Unknown or unhandled errors will be returned as-is.
func convertSqliteError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *driver.Error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errors.Join(core.ErrNotFound, err)
	case errors.Is(err, sql.ErrConnDone):
		return errors.Join(core.ErrStoreUnavailable, err)
	case errors.As(err, &sqliteErr):
		code := sqliteErr.Code()
		switch code & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
				return errors.Join(core.ErrConflict, err)
			}
			return errors.Join(core.ErrValidation, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return errors.Join(core.ErrStoreUnavailable, err)
		}
	}
	return err
}
