// Package scene materializes built lighthouse scenes into a host binding and
// tracks them so an iteration can be cleaned up before the next one.
package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/lighthouse"
	"github.com/lawnchairsociety/lighthouse/internal/logger"
	"github.com/lawnchairsociety/lighthouse/internal/preset"
)

// ErrDuplicateScene is returned by a Binding when a record id is already stored.
var ErrDuplicateScene = errors.New("scene already materialized")

// Record describes one materialized scene.
type Record struct {
	ID               string
	Preset           string
	Quality          geometry.Quality
	Seed             int64
	CliffVertices    int
	CliffFaces       int
	TowerVertices    int
	TowerFaces       int
	CliffFingerprint string
	TowerFingerprint string
	Translation      mgl64.Vec3
	CreatedAt        time.Time
	RemovedAt        *time.Time // nil while the scene is live
}

// Live reports whether the record has not been cleaned up.
func (r Record) Live() bool {
	return r.RemovedAt == nil
}

// Summary returns a one-line description of the record.
func (r Record) Summary() string {
	return fmt.Sprintf("%s preset=%s quality=%s seed=%d cliff=%dv/%df tower=%dv/%df at (%.3f, %.3f, %.3f)",
		shortID(r.ID), r.Preset, r.Quality, r.Seed,
		r.CliffVertices, r.CliffFaces, r.TowerVertices, r.TowerFaces,
		r.Translation[0], r.Translation[1], r.Translation[2])
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// NewRecord describes scene s built from preset name at quality q.
func NewRecord(name string, q geometry.Quality, seed int64, s *lighthouse.Scene) Record {
	return Record{
		ID:               uuid.NewString(),
		Preset:           name,
		Quality:          q,
		Seed:             seed,
		CliffVertices:    s.Cliff.VertexCount(),
		CliffFaces:       s.Cliff.FaceCount(),
		TowerVertices:    s.Tower.VertexCount(),
		TowerFaces:       s.Tower.FaceCount(),
		CliffFingerprint: s.Cliff.Fingerprint(),
		TowerFingerprint: s.Tower.Fingerprint(),
		Translation:      s.TowerTransform.Translation,
		CreatedAt:        time.Now().UTC(),
	}
}

// Binding is where built scenes end up.
type Binding interface {
	// Materialize stores a live scene and returns its id.
	Materialize(ctx context.Context, r Record) (string, error)
	// Cleanup removes every live scene this binding created and returns how
	// many were removed. Removed scenes stay in the history.
	Cleanup(ctx context.Context) (int, error)
	// Live returns the scenes not yet cleaned up.
	Live(ctx context.Context) ([]Record, error)
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Record, error)
}

// Result is the outcome of Service.Build.
type Result struct {
	Scene   *lighthouse.Scene
	Record  Record
	Removed int // scenes cleaned up from the previous iteration
}

// Service wires presets, the builder and a binding together. Builds are
// serialized so cleanup and materialize of one iteration never interleave
// with another.
type Service struct {
	registry *preset.Registry
	binding  Binding
	mu       sync.Mutex
}

// NewService creates a service. A nil registry means the built-in presets.
func NewService(registry *preset.Registry, binding Binding) *Service {
	if registry == nil {
		registry = preset.Default()
	}
	return &Service{registry: registry, binding: binding}
}

// Registry returns the presets the service builds from.
func (s *Service) Registry() *preset.Registry {
	return s.registry
}

// Presets returns the preset names in registry order.
func (s *Service) Presets() []string {
	return s.registry.List()
}

// Build builds the named preset, cleans up the previous iteration and
// materializes the new scene.
func (s *Service) Build(ctx context.Context, presetName string, q geometry.Quality) (*Result, error) {
	return s.build(ctx, presetName, q, nil)
}

// BuildSeeded is Build with the preset's cliff seed replaced.
func (s *Service) BuildSeeded(ctx context.Context, presetName string, q geometry.Quality, seed int64) (*Result, error) {
	return s.build(ctx, presetName, q, &seed)
}

func (s *Service) build(ctx context.Context, presetName string, q geometry.Quality, seed *int64) (*Result, error) {
	p, err := s.registry.Get(presetName)
	if err != nil {
		return nil, err
	}

	params := p.Params(q)
	if seed != nil {
		params.Cliff.Seed = *seed
	}

	start := time.Now()
	built, err := lighthouse.BuildWithPlacement(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build preset %s: %w", p.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	removed, err := s.binding.Cleanup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clean up previous scene: %w", err)
	}

	rec := NewRecord(p.Name, q, params.Cliff.Seed, built)
	id, err := s.binding.Materialize(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize scene: %w", err)
	}
	rec.ID = id

	logger.Info("Built lighthouse",
		"preset", p.Name,
		"quality", q,
		"seed", rec.Seed,
		"cliff_vertices", rec.CliffVertices,
		"tower_vertices", rec.TowerVertices,
		"removed", removed,
		"duration", time.Since(start))

	return &Result{Scene: built, Record: rec, Removed: removed}, nil
}

// Cleanup removes the live scenes from the binding.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.binding.Cleanup(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up scenes: %w", err)
	}
	logger.Info("Cleaned up scenes", "removed", n)
	return n, nil
}

// History returns up to limit records, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]Record, error) {
	return s.binding.List(ctx, limit)
}
