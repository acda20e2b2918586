// Package tower builds the tapered lighthouse tower: a lofted shell with
// horizontal detail bands, an entrance region and a lantern cap.
package tower

import (
	"fmt"
	"math"
	"sort"

	"github.com/lawnchairsociety/lighthouse/internal/geometry"
)

// MeshName is the name given to built tower meshes.
const MeshName = "tower_GEO"

// Face groups and loop labels written by Build.
const (
	GroupShell   = "shell"
	GroupBand    = "band"
	GroupDoor    = "door"
	GroupCap     = "cap"
	GroupLantern = "lantern"
)

// Subdivision limits.
const (
	MaxSegments  = 1024
	MaxRings     = 1024
	MaxBandCount = 64
)

// heightEpsilon merges ring heights closer than this.
const heightEpsilon = 1e-9

// Params contains parameters for tower generation
type Params struct {
	Height        float64 `yaml:"height"`         // Shell height, base at y=0
	BaseRadius    float64 `yaml:"base_radius"`    // Radius of the ground ring
	TopRadius     float64 `yaml:"top_radius"`     // Radius of the apex ring (taper)
	Segments      int     `yaml:"segments"`       // Vertices per ring
	Rings         int     `yaml:"rings"`          // Evenly spaced height spans
	BandCount     int     `yaml:"band_count"`     // Number of horizontal bands
	BandHeight    float64 `yaml:"band_height"`    // Vertical size of each band
	DoorHeight    float64 `yaml:"door_height"`    // 0 for no door
	DoorWidth     float64 `yaml:"door_width"`     // Chord width of the entrance
	LanternHeight float64 `yaml:"lantern_height"` // 0 for no lantern
	LanternRadius float64 `yaml:"lantern_radius"`
}

// DefaultParams returns a plain white-tower configuration.
func DefaultParams() Params {
	segments, rings := SubdivisionsFor(geometry.QualityHigh)
	return Params{
		Height:        28.0,
		BaseRadius:    4.0,
		TopRadius:     3.0,
		Segments:      segments,
		Rings:         rings,
		BandCount:     3,
		BandHeight:    0.6,
		DoorHeight:    3.0,
		DoorWidth:     1.6,
		LanternHeight: 3.0,
		LanternRadius: 2.2,
	}
}

// SubdivisionsFor returns (segments, rings) for a quality tier.
func SubdivisionsFor(q geometry.Quality) (int, int) {
	if q == geometry.QualityHigh {
		return 24, 10
	}
	return 16, 6
}

// RadiusAt returns the shell radius at height y, interpolated linearly from
// the base ring to the apex ring.
func (p Params) RadiusAt(y float64) float64 {
	t := y / p.Height
	t = math.Max(0, math.Min(1, t))
	return p.BaseRadius + (p.TopRadius-p.BaseRadius)*t
}

// BandSpan returns the bottom and top height of band i (0-based).
func (p Params) BandSpan(i int) (float64, float64) {
	centre := p.Height * float64(i+1) / float64(p.BandCount+1)
	return centre - p.BandHeight/2, centre + p.BandHeight/2
}

// Validate checks p without building anything.
func (p Params) Validate() error {
	if !positive(p.Height) {
		return invalid("height must be positive, got %v", p.Height)
	}
	if !positive(p.BaseRadius) {
		return invalid("base radius must be positive, got %v", p.BaseRadius)
	}
	if !positive(p.TopRadius) {
		return invalid("top radius must be positive, got %v", p.TopRadius)
	}
	if p.TopRadius > p.BaseRadius {
		return invalid("top radius %v exceeds base radius %v (inverted taper)", p.TopRadius, p.BaseRadius)
	}
	if p.Segments < 3 || p.Segments > MaxSegments {
		return invalid("segments must be between 3 and %d, got %d", MaxSegments, p.Segments)
	}
	if p.Rings < 1 || p.Rings > MaxRings {
		return invalid("rings must be between 1 and %d, got %d", MaxRings, p.Rings)
	}

	if err := p.validateDoor(); err != nil {
		return err
	}
	if err := p.validateBands(); err != nil {
		return err
	}

	if !optionalPair(p.LanternHeight, p.LanternRadius) {
		return invalid("lantern height and radius must both be positive or both zero, got %v and %v",
			p.LanternHeight, p.LanternRadius)
	}

	return nil
}

func (p Params) hasDoor() bool {
	return p.DoorHeight > 0
}

func (p Params) hasLantern() bool {
	return p.LanternHeight > 0
}

func (p Params) validateDoor() error {
	if !optionalPair(p.DoorHeight, p.DoorWidth) {
		return invalid("door height and width must both be positive or both zero, got %v and %v",
			p.DoorHeight, p.DoorWidth)
	}
	if !p.hasDoor() {
		return nil
	}
	if p.DoorHeight >= p.Height {
		return invalid("door height %v must be below tower height %v", p.DoorHeight, p.Height)
	}
	if p.DoorWidth > 2*p.BaseRadius {
		return invalid("door width %v exceeds base diameter %v", p.DoorWidth, 2*p.BaseRadius)
	}
	return nil
}

func (p Params) validateBands() error {
	if !geometry.IsFinite(p.BandHeight) || p.BandHeight < 0 {
		return invalid("band height must be finite and not negative, got %v", p.BandHeight)
	}
	if p.BandCount < 0 || p.BandCount > MaxBandCount {
		return invalid("band count must be between 0 and %d, got %d", MaxBandCount, p.BandCount)
	}
	if p.BandCount == 0 {
		return nil
	}
	if !positive(p.BandHeight) {
		return invalid("band height must be positive when bands are requested, got %v", p.BandHeight)
	}

	spacing := p.Height / float64(p.BandCount+1)
	if p.BandHeight >= spacing {
		return invalid("band height %v overlaps neighbouring bands (spacing %v)", p.BandHeight, spacing)
	}

	lo, _ := p.BandSpan(0)
	_, hi := p.BandSpan(p.BandCount - 1)
	if lo <= 0 || hi >= p.Height {
		return invalid("bands must lie inside the shell")
	}
	if p.hasDoor() && lo <= p.DoorHeight {
		return invalid("lowest band starts at %v, overlapping the door (height %v)", lo, p.DoorHeight)
	}
	return nil
}

// ringLevel is one shell loop height.
type ringLevel struct {
	y    float64
	band bool
}

// levels returns the sorted, de-duplicated shell ring heights: the regular
// spans, the band edges and the door lintel.
func (p Params) levels() []ringLevel {
	var out []ringLevel
	for k := 0; k <= p.Rings; k++ {
		out = append(out, ringLevel{y: p.Height * float64(k) / float64(p.Rings)})
	}
	for i := 0; i < p.BandCount; i++ {
		lo, hi := p.BandSpan(i)
		out = append(out, ringLevel{y: lo, band: true}, ringLevel{y: hi, band: true})
	}
	if p.hasDoor() {
		out = append(out, ringLevel{y: p.DoorHeight})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].y < out[j].y })

	merged := out[:0]
	for _, l := range out {
		if n := len(merged); n > 0 && l.y-merged[n-1].y < heightEpsilon {
			merged[n-1].band = merged[n-1].band || l.band
			continue
		}
		merged = append(merged, l)
	}
	return merged
}

// Build creates the tower mesh with its base centred on the origin.
func Build(p Params) (*geometry.Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := geometry.NewMesh(MeshName)
	levels := p.levels()

	loops := make([]geometry.Loop, len(levels))
	for i, l := range levels {
		label := GroupShell
		if l.band {
			label = GroupBand
		}
		loops[i] = geometry.Ring(m, label, p.Segments, p.RadiusAt(l.y), l.y)
	}

	doorHalfAngle := 0.0
	if p.hasDoor() {
		doorHalfAngle = math.Asin(math.Min(1, p.DoorWidth/(2*p.BaseRadius)))
	}

	for i := 0; i+1 < len(loops); i++ {
		lower, upper := loops[i], loops[i+1]
		inBand := p.insideBand(lower.Height, upper.Height)
		inDoor := p.hasDoor() && upper.Height <= p.DoorHeight+heightEpsilon

		faces := geometry.Bridge(m, lower, upper, GroupShell)
		for seg, fi := range faces {
			if inBand {
				m.Groups[GroupBand] = append(m.Groups[GroupBand], fi)
			}
			if inDoor && segmentInArc(seg, p.Segments, doorHalfAngle) {
				m.Groups[GroupDoor] = append(m.Groups[GroupDoor], fi)
			}
		}
	}

	geometry.Cap(m, loops[0], false, GroupCap)
	apex := loops[len(loops)-1]
	geometry.Cap(m, apex, true, GroupCap)

	if p.hasLantern() {
		p.addLantern(m, apex.Height)
	}

	return m, nil
}

// insideBand reports whether the span [lo, hi] lies within one band.
func (p Params) insideBand(lo, hi float64) bool {
	for i := 0; i < p.BandCount; i++ {
		bLo, bHi := p.BandSpan(i)
		if lo >= bLo-heightEpsilon && hi <= bHi+heightEpsilon {
			return true
		}
	}
	return false
}

// addLantern puts a short cylinder with a dome roof on the apex.
func (p Params) addLantern(m *geometry.Mesh, base float64) {
	lower := geometry.Ring(m, GroupLantern, p.Segments, p.LanternRadius, base)
	upper := geometry.Ring(m, GroupLantern, p.Segments, p.LanternRadius, base+p.LanternHeight)
	geometry.Bridge(m, lower, upper, GroupLantern)
	geometry.Dome(m, upper, p.LanternRadius, lanternStacks(p.Segments), GroupLantern)
}

// lanternStacks returns the dome ring count for a segment count.
func lanternStacks(segments int) int {
	return max(2, segments/4)
}

// segmentInArc reports whether ring segment seg overlaps the arc of the
// given half-angle centred on +Z.
func segmentInArc(seg, segments int, halfAngle float64) bool {
	a0 := normalizeAngle(geometry.AngleAt(seg, segments))
	a1 := a0 + 2*math.Pi/float64(segments)
	return a0 < halfAngle && a1 > -halfAngle
}

// normalizeAngle maps a to (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func positive(v float64) bool {
	return geometry.IsFinite(v) && v > 0
}

// optionalPair reports whether a and b are both zero or both positive.
func optionalPair(a, b float64) bool {
	if a == 0 && b == 0 {
		return true
	}
	return positive(a) && positive(b)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: tower: %s", geometry.ErrInvalidParameter, fmt.Sprintf(format, args...))
}
