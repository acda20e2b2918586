// Package database persists scene history in SQLite or PostgreSQL.
package database

import (
	"database/sql"
	"fmt"

	"github.com/lawnchairsociety/lighthouse/internal/logger"
)

// Database wraps a connection with its dialect.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig connects using cfg and runs migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	dialect, err := NewDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := dialect.DataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", dialect.Type(), err)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	dialect.Tune(db, cfg)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database (%s): %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("Database opened", "driver", dialect.DriverName())
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scenes (
			seq ` + d.dialect.SerialPrimaryKey() + `,
			id TEXT UNIQUE NOT NULL,
			preset ` + d.dialect.CaseInsensitiveText() + ` NOT NULL,
			quality TEXT NOT NULL,
			seed BIGINT NOT NULL,
			cliff_vertices INTEGER NOT NULL,
			cliff_faces INTEGER NOT NULL,
			tower_vertices INTEGER NOT NULL,
			tower_faces INTEGER NOT NULL,
			cliff_fingerprint TEXT NOT NULL,
			tower_fingerprint TEXT NOT NULL,
			translation_x ` + d.dialect.FloatType() + ` NOT NULL,
			translation_y ` + d.dialect.FloatType() + ` NOT NULL,
			translation_z ` + d.dialect.FloatType() + ` NOT NULL,
			created_at TIMESTAMP NOT NULL,
			removed_at TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_scenes_removed_at ON scenes(removed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_scenes_preset ON scenes(preset)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// Dialect returns the dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}
