package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/scene"
)

// ErrDuplicateScene is scene.ErrDuplicateScene, so callers can match either.
var ErrDuplicateScene = scene.ErrDuplicateScene

const sceneColumns = `id, preset, quality, seed,
	cliff_vertices, cliff_faces, tower_vertices, tower_faces,
	cliff_fingerprint, tower_fingerprint,
	translation_x, translation_y, translation_z,
	created_at, removed_at`

// SceneStore is a scene.Binding backed by the scenes table.
type SceneStore struct {
	d *Database
}

// NewSceneStore creates a store on an open database.
func NewSceneStore(d *Database) *SceneStore {
	return &SceneStore{d: d}
}

// Materialize inserts r as a live scene. An empty id is filled in.
func (s *SceneStore) Materialize(ctx context.Context, r scene.Record) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	query := s.d.qb.Build(`
		INSERT INTO scenes (id, preset, quality, seed,
			cliff_vertices, cliff_faces, tower_vertices, tower_faces,
			cliff_fingerprint, tower_fingerprint,
			translation_x, translation_y, translation_z, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.d.db.ExecContext(ctx, query,
		r.ID, r.Preset, string(r.Quality), r.Seed,
		r.CliffVertices, r.CliffFaces, r.TowerVertices, r.TowerFaces,
		r.CliffFingerprint, r.TowerFingerprint,
		r.Translation[0], r.Translation[1], r.Translation[2], r.CreatedAt,
	)
	if err != nil {
		if s.d.dialect.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %s", ErrDuplicateScene, r.ID)
		}
		return "", fmt.Errorf("failed to insert scene: %w", err)
	}

	return r.ID, nil
}

// Cleanup marks every live scene as removed.
func (s *SceneStore) Cleanup(ctx context.Context) (int, error) {
	result, err := s.d.db.ExecContext(ctx,
		s.d.qb.Build(`UPDATE scenes SET removed_at = ? WHERE removed_at IS NULL`),
		time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up scenes: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed scenes: %w", err)
	}
	return int(n), nil
}

// Live returns the scenes not yet cleaned up, oldest first.
func (s *SceneStore) Live(ctx context.Context) ([]scene.Record, error) {
	return s.query(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE removed_at IS NULL ORDER BY seq`)
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *SceneStore) List(ctx context.Context, limit int) ([]scene.Record, error) {
	if limit > 0 {
		return s.query(ctx, `SELECT `+sceneColumns+` FROM scenes ORDER BY seq DESC LIMIT ?`, limit)
	}
	return s.query(ctx, `SELECT `+sceneColumns+` FROM scenes ORDER BY seq DESC`)
}

// ListByPreset returns the history of one preset, newest first. The name
// matches without case.
func (s *SceneStore) ListByPreset(ctx context.Context, name string, limit int) ([]scene.Record, error) {
	if limit > 0 {
		return s.query(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE preset = ? ORDER BY seq DESC LIMIT ?`, name, limit)
	}
	return s.query(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE preset = ? ORDER BY seq DESC`, name)
}

// Get returns one record by id.
func (s *SceneStore) Get(ctx context.Context, id string) (*scene.Record, error) {
	records, err := s.query(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Count returns the number of stored scenes, live and removed.
func (s *SceneStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count scenes: %w", err)
	}
	return n, nil
}

func (s *SceneStore) query(ctx context.Context, query string, args ...any) ([]scene.Record, error) {
	rows, err := s.d.db.QueryContext(ctx, s.d.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenes: %w", err)
	}
	defer rows.Close()

	var records []scene.Record
	for rows.Next() {
		var (
			r         scene.Record
			quality   string
			removedAt sql.NullTime
		)
		if err := rows.Scan(
			&r.ID, &r.Preset, &quality, &r.Seed,
			&r.CliffVertices, &r.CliffFaces, &r.TowerVertices, &r.TowerFaces,
			&r.CliffFingerprint, &r.TowerFingerprint,
			&r.Translation[0], &r.Translation[1], &r.Translation[2],
			&r.CreatedAt, &removedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		r.Quality = geometry.Quality(quality)
		if removedAt.Valid {
			t := removedAt.Time
			r.RemovedAt = &t
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scenes: %w", err)
	}

	return records, nil
}
