package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// Dialect is everything the scene store needs to know about a backend:
// how to reach it, how to spell its column types and how to recognise its
// constraint errors.
type Dialect interface {
	Type() DialectType

	// DriverName is the name registered with database/sql.
	DriverName() string

	// DataSource prepares the backend described by cfg and returns the DSN.
	DataSource(cfg Config) (string, error)

	// Tune applies pool settings after sql.Open.
	Tune(db *sql.DB, cfg Config)

	// InitStatements run once on every new database handle.
	InitStatements() []string

	// Placeholder is the bind parameter for the 1-indexed position.
	Placeholder(position int) string

	SerialPrimaryKey() string
	CaseInsensitiveText() string
	FloatType() string

	// IsDuplicateKeyError reports a unique constraint violation.
	IsDuplicateKeyError(err error) bool
}

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// ParseDialectType normalises a configured driver name. Empty means SQLite.
func ParseDialectType(driver string) (DialectType, error) {
	switch t := DialectType(strings.ToLower(strings.TrimSpace(driver))); t {
	case "", DialectSQLite:
		return DialectSQLite, nil
	case DialectPostgres, "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewDialect returns the dialect for a configured driver name.
func NewDialect(driver string) (Dialect, error) {
	t, err := ParseDialectType(driver)
	if err != nil {
		return nil, err
	}
	if t == DialectPostgres {
		return &PostgresDialect{}, nil
	}
	return &SQLiteDialect{}, nil
}
