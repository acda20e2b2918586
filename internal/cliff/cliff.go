// Package cliff builds the noise-displaced terrain the lighthouse stands on.
package cliff

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/noise"
)

// Grid density per quality tier (vertices per side).
const (
	DraftResolution = 24
	HighResolution  = 64
	MaxResolution   = 2048
)

// MeshName is the name given to built cliff meshes.
const MeshName = "cliff_GEO"

var up = mgl64.Vec3{0, 1, 0}

// Params contains parameters for cliff generation
type Params struct {
	Resolution int        `yaml:"resolution"` // Vertices per side of the base grid
	Seed       int64      `yaml:"seed"`       // Reproducibility key
	Amplitude  float64    `yaml:"amplitude"`  // Maximum displacement
	Frequency  float64    `yaml:"frequency"`  // Noise sampling frequency
	Radius     float64    `yaml:"radius"`     // Half the grid extent
	Height     float64    `yaml:"height"`     // Plateau elevation before displacement
	Noise      noise.Kind `yaml:"noise"`      // simplex (default) or perlin
}

// ResolutionFor returns the grid density for a quality tier.
func ResolutionFor(q geometry.Quality) int {
	if q == geometry.QualityHigh {
		return HighResolution
	}
	return DraftResolution
}

// Validate checks p without building anything.
func (p Params) Validate() error {
	if p.Resolution < 2 || p.Resolution > MaxResolution {
		return invalid("resolution must be between 2 and %d, got %d", MaxResolution, p.Resolution)
	}
	if !geometry.IsFinite(p.Radius) || p.Radius <= 0 {
		return invalid("radius must be positive, got %v", p.Radius)
	}
	if !geometry.IsFinite(p.Amplitude) || p.Amplitude < 0 {
		return invalid("amplitude must not be negative, got %v", p.Amplitude)
	}
	if !geometry.IsFinite(p.Frequency) || p.Frequency < 0 {
		return invalid("frequency must not be negative, got %v", p.Frequency)
	}
	if !geometry.IsFinite(p.Height) || p.Height < 0 {
		return invalid("height must not be negative, got %v", p.Height)
	}
	if _, err := noise.ParseKind(string(p.Noise)); err != nil {
		return fmt.Errorf("cliff: %w", err)
	}
	return nil
}

// Build creates the base grid and displaces every vertex along up.
func Build(p Params) (*geometry.Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	kind, _ := noise.ParseKind(string(p.Noise))
	deformer, err := noise.NewDeformer(kind, p.Seed)
	if err != nil {
		return nil, fmt.Errorf("cliff: %w", err)
	}

	m := geometry.Grid(MeshName, p.Resolution, p.Radius, p.Height)
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Add(deformer.Offset(v, up, p.Amplitude, p.Frequency))
	}

	return m, nil
}

// SampleHeight bilinearly interpolates the surface height of a cliff mesh
// built with the given resolution and radius at planar point (x, z).
// Points outside the grid are clamped to its edge.
func SampleHeight(m *geometry.Mesh, resolution int, radius, x, z float64) float64 {
	if resolution < 2 || len(m.Vertices) < resolution*resolution {
		return 0
	}

	last := float64(resolution - 1)
	fx := clamp((x+radius)/(2*radius)*last, 0, last)
	fz := clamp((z+radius)/(2*radius)*last, 0, last)

	c0 := int(math.Floor(fx))
	r0 := int(math.Floor(fz))
	c1 := min(c0+1, resolution-1)
	r1 := min(r0+1, resolution-1)
	tx := fx - float64(c0)
	tz := fz - float64(r0)

	h := func(r, c int) float64 { return m.Vertices[r*resolution+c][1] }

	top := h(r0, c0)*(1-tx) + h(r0, c1)*tx
	bottom := h(r1, c0)*(1-tx) + h(r1, c1)*tx
	return top*(1-tz) + bottom*tz
}

// TopHeight returns the mean height of the highest ratio fraction of
// vertices, ignoring isolated spikes. At least one vertex is always used.
func TopHeight(m *geometry.Mesh, ratio float64) float64 {
	if len(m.Vertices) == 0 {
		return 0
	}

	ys := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		ys[i] = v[1]
	}
	sort.Float64s(ys)

	count := int(float64(len(ys)) * ratio)
	if count < 1 {
		count = 1
	}
	if count > len(ys) {
		count = len(ys)
	}

	sum := 0.0
	for _, y := range ys[len(ys)-count:] {
		sum += y
	}
	return sum / float64(count)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: cliff: %s", geometry.ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
