// Package noise provides the seeded displacement function used to roughen
// generated terrain.
package noise

import (
	"fmt"
	"math"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"

	"github.com/lawnchairsociety/lighthouse/internal/geometry"
)

// Kind selects the underlying gradient noise.
type Kind string

const (
	KindSimplex Kind = "simplex"
	KindPerlin  Kind = "perlin"
)

// Perlin settings. The octave sum can leave [-1, 1], so results are clamped.
const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// offsetSpan bounds the seed-derived sampling offset on each axis.
const offsetSpan = 1024

// ParseKind converts a config string to a Kind. Empty means simplex.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindSimplex:
		return KindSimplex, nil
	case KindPerlin:
		return KindPerlin, nil
	default:
		return "", fmt.Errorf("%w: unknown noise kind %q", geometry.ErrInvalidParameter, s)
	}
}

// Deformer evaluates seeded 2D noise over the XZ plane.
// It is read-only after construction and safe for concurrent use.
type Deformer struct {
	kind   Kind
	seed   int64
	ox, oz float64 // seed-derived sampling offset, never on an integer lattice point
	eval   func(x, z float64) float64
}

// NewDeformer creates a deformer for the given kind and seed.
func NewDeformer(kind Kind, seed int64) (*Deformer, error) {
	d := &Deformer{kind: kind, seed: seed}
	d.ox, d.oz = seedOffset(seed)

	switch kind {
	case KindSimplex, "":
		d.kind = KindSimplex
		n := opensimplex.New(seed)
		d.eval = n.Eval2
	case KindPerlin:
		p := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)
		d.eval = p.Noise2D
	default:
		return nil, fmt.Errorf("%w: unknown noise kind %q", geometry.ErrInvalidParameter, kind)
	}

	return d, nil
}

// Kind returns the noise kind.
func (d *Deformer) Kind() Kind {
	return d.kind
}

// Seed returns the seed the deformer was built with.
func (d *Deformer) Seed() int64 {
	return d.seed
}

// Displace returns the scalar displacement for pos, in
// [-amplitude, amplitude]. Only the planar coordinates are sampled.
func (d *Deformer) Displace(pos mgl64.Vec3, amplitude, frequency float64) float64 {
	if amplitude == 0 {
		return 0
	}
	v := d.eval(pos[0]*frequency+d.ox, pos[2]*frequency+d.oz)
	return amplitude * clampUnit(v)
}

// Offset returns the displacement as a vector along up.
func (d *Deformer) Offset(pos, up mgl64.Vec3, amplitude, frequency float64) mgl64.Vec3 {
	return up.Mul(d.Displace(pos, amplitude, frequency))
}

// Displacement is the stateless form of Deformer.Displace using simplex
// noise. Builders evaluating many points should hold a Deformer instead.
func Displacement(pos mgl64.Vec3, seed int64, amplitude, frequency float64) float64 {
	if amplitude == 0 {
		return 0
	}
	d, _ := NewDeformer(KindSimplex, seed)
	return d.Displace(pos, amplitude, frequency)
}

// Origin returns the point in noise space that world (0, 0) samples.
func (d *Deformer) Origin() (x, z float64) {
	return d.ox, d.oz
}

// seedOffset spreads seeds over noise space. The fractional part of each
// coordinate stays in [0.2, 0.8) so frequency 0 or lattice-aligned grids
// never sample the zero crossings at integer points.
func seedOffset(seed int64) (float64, float64) {
	h1 := splitmix64(uint64(seed))
	h2 := splitmix64(h1)
	return axisOffset(h1), axisOffset(h2)
}

func axisOffset(h uint64) float64 {
	whole := float64(h % offsetSpan)
	frac := float64(h>>11) / (1 << 53)
	return whole + 0.2 + 0.6*frac
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
