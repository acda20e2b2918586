package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// PostgresDialect stores scenes in PostgreSQL through lib/pq.
type PostgresDialect struct{}

func (d *PostgresDialect) Type() DialectType { return DialectPostgres }

func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) DataSource(cfg Config) (string, error) {
	if cfg.Postgres.Host == "" || cfg.Postgres.Database == "" {
		return "", errors.New("postgres host and database are required")
	}
	return cfg.Postgres.DSN(), nil
}

func (d *PostgresDialect) Tune(db *sql.DB, cfg Config) {
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
}

// InitStatements enables citext for case-insensitive preset names.
func (d *PostgresDialect) InitStatements() []string {
	return []string{"CREATE EXTENSION IF NOT EXISTS citext"}
}

func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func (d *PostgresDialect) SerialPrimaryKey() string { return "BIGSERIAL PRIMARY KEY" }

func (d *PostgresDialect) CaseInsensitiveText() string { return "CITEXT" }

func (d *PostgresDialect) FloatType() string { return "DOUBLE PRECISION" }

func (d *PostgresDialect) IsDuplicateKeyError(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
