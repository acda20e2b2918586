package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteDialect stores scenes in a single file through modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Type() DialectType { return DialectSQLite }

func (d *SQLiteDialect) DriverName() string { return "sqlite" }

// DataSource creates the parent directory of the database file.
func (d *SQLiteDialect) DataSource(cfg Config) (string, error) {
	if cfg.SQLitePath == "" {
		return "", errors.New("sqlite_path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return cfg.SQLitePath, nil
}

// Tune keeps the database/sql defaults; WAL mode lets the CLI and the
// control server share the file.
func (d *SQLiteDialect) Tune(db *sql.DB, cfg Config) {}

func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *SQLiteDialect) Placeholder(position int) string { return "?" }

func (d *SQLiteDialect) SerialPrimaryKey() string { return "INTEGER PRIMARY KEY AUTOINCREMENT" }

func (d *SQLiteDialect) CaseInsensitiveText() string { return "TEXT COLLATE NOCASE" }

func (d *SQLiteDialect) FloatType() string { return "REAL" }

// IsDuplicateKeyError matches the extended UNIQUE and PRIMARY KEY codes.
func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
