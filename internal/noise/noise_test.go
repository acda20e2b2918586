package noise

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lawnchairsociety/lighthouse/internal/geometry"
)

func samplePoints() []mgl64.Vec3 {
	var pts []mgl64.Vec3
	for i := 0; i < 20; i++ {
		pts = append(pts, mgl64.Vec3{float64(i)*1.37 - 9.1, 0, float64(i)*0.83 + 0.29})
	}
	return pts
}

func TestDisplacementDeterministic(t *testing.T) {
	for _, p := range samplePoints() {
		a := Displacement(p, 42, 2.0, 0.5)
		b := Displacement(p, 42, 2.0, 0.5)
		if a != b {
			t.Errorf("Displacement(%v) not deterministic: %v != %v", p, a, b)
		}
	}
}

func TestDisplacementWithinAmplitude(t *testing.T) {
	for _, kind := range []Kind{KindSimplex, KindPerlin} {
		d, err := NewDeformer(kind, -7)
		if err != nil {
			t.Fatalf("NewDeformer(%s) failed: %v", kind, err)
		}
		for _, p := range samplePoints() {
			v := d.Displace(p, 1.5, 0.7)
			if v < -1.5 || v > 1.5 {
				t.Errorf("%s: Displace(%v) = %f, outside [-1.5, 1.5]", kind, p, v)
			}
		}
	}
}

func TestDisplacementZeroAmplitude(t *testing.T) {
	for _, p := range samplePoints() {
		if v := Displacement(p, 3, 0, 0.5); v != 0 {
			t.Errorf("zero amplitude gave %f", v)
		}
	}
}

func TestDisplacementSeedSensitivity(t *testing.T) {
	differs := false
	for _, p := range samplePoints() {
		if Displacement(p, 1, 1, 0.5) != Displacement(p, 2, 1, 0.5) {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("different seeds produced identical displacement at every sample")
	}
}

func TestDisplacementIgnoresHeight(t *testing.T) {
	d, _ := NewDeformer(KindSimplex, 9)
	a := d.Displace(mgl64.Vec3{1.3, 0, 2.1}, 1, 1)
	b := d.Displace(mgl64.Vec3{1.3, 50, 2.1}, 1, 1)
	if a != b {
		t.Errorf("displacement depends on Y: %f vs %f", a, b)
	}
}

func TestOffsetAlongUp(t *testing.T) {
	d, _ := NewDeformer(KindSimplex, 5)
	p := mgl64.Vec3{2.5, 0, -1.25}
	off := d.Offset(p, mgl64.Vec3{0, 1, 0}, 2, 0.3)
	if off[0] != 0 || off[2] != 0 {
		t.Errorf("offset should be vertical only, got %v", off)
	}
	if off[1] != d.Displace(p, 2, 0.3) {
		t.Errorf("offset Y = %f, want %f", off[1], d.Displace(p, 2, 0.3))
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"", KindSimplex, false},
		{"simplex", KindSimplex, false},
		{"Perlin", KindPerlin, false},
		{"worley", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, geometry.ErrInvalidParameter) {
					t.Errorf("ParseKind(%q) error = %v, want ErrInvalidParameter", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewDeformerUnknownKind(t *testing.T) {
	if _, err := NewDeformer("cellular", 1); !errors.Is(err, geometry.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestOriginOffLattice(t *testing.T) {
	for _, seed := range []int64{0, 1, -1, 42, math.MaxInt64, math.MinInt64} {
		d, _ := NewDeformer(KindPerlin, seed)
		x, z := d.Origin()
		for _, c := range []float64{x, z} {
			frac := c - math.Floor(c)
			if c < 0 || c >= offsetSpan+1 || frac < 0.19 || frac > 0.81 {
				t.Errorf("seed %d: origin coordinate %f outside the sampling window", seed, c)
			}
		}
	}
}

func TestZeroFrequencyDependsOnSeed(t *testing.T) {
	p := mgl64.Vec3{3.5, 0, -7.25}
	for _, kind := range []Kind{KindSimplex, KindPerlin} {
		base, _ := NewDeformer(kind, 1)
		v := base.Displace(p, 2, 0)
		if v != base.Displace(mgl64.Vec3{-40, 0, 12}, 2, 0) {
			t.Errorf("%s: frequency 0 should give the same displacement everywhere", kind)
		}

		differs := false
		for seed := int64(2); seed <= 6; seed++ {
			d, _ := NewDeformer(kind, seed)
			if d.Displace(p, 2, 0) != v {
				differs = true
				break
			}
		}
		if !differs {
			t.Errorf("%s: frequency 0 displacement ignores the seed", kind)
		}
	}
}
