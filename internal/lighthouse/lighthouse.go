// Package lighthouse composes a cliff and a tower into one placed scene.
package lighthouse

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lawnchairsociety/lighthouse/internal/cliff"
	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/tower"
)

// Anchor selects how the tower's base height is taken from the cliff.
type Anchor string

const (
	// AnchorCenter snaps to the cliff surface at the grid centre.
	AnchorCenter Anchor = "center"
	// AnchorTop uses the mean of the highest TopRatio of cliff vertices.
	AnchorTop Anchor = "top"
)

// Placement controls where the tower lands on the cliff.
type Placement struct {
	Anchor   Anchor  `yaml:"anchor"`
	TopRatio float64 `yaml:"top_ratio"` // Fraction of highest vertices averaged by AnchorTop
	YOffset  float64 `yaml:"y_offset"`  // Negative values sink the base into the rock
}

// DefaultPlacement sits the tower exactly on the surface at the centre.
func DefaultPlacement() Placement {
	return Placement{Anchor: AnchorCenter, TopRatio: 0.10}
}

// Validate checks the placement settings.
func (p Placement) Validate() error {
	switch Anchor(strings.ToLower(string(p.Anchor))) {
	case AnchorCenter, "":
	case AnchorTop:
		if !geometry.IsFinite(p.TopRatio) || p.TopRatio <= 0 || p.TopRatio > 1 {
			return fmt.Errorf("%w: placement: top ratio must be in (0, 1], got %v", geometry.ErrInvalidParameter, p.TopRatio)
		}
	default:
		return fmt.Errorf("%w: placement: unknown anchor %q", geometry.ErrInvalidParameter, p.Anchor)
	}
	if !geometry.IsFinite(p.YOffset) {
		return fmt.Errorf("%w: placement: y offset must be finite", geometry.ErrInvalidParameter)
	}
	return nil
}

// Params bundles everything needed to build a scene.
type Params struct {
	Cliff     cliff.Params `yaml:"cliff"`
	Tower     tower.Params `yaml:"tower"`
	Placement Placement    `yaml:"placement"`
}

// Validate checks all three parameter sets. The first failure is returned.
func (p Params) Validate() error {
	if err := p.Cliff.Validate(); err != nil {
		return err
	}
	if err := p.Tower.Validate(); err != nil {
		return err
	}
	return p.Placement.Validate()
}

// Transform is the placement applied to the tower. It is never baked into
// either mesh.
type Transform struct {
	Translation mgl64.Vec3
	Matrix      mgl64.Mat4
}

// Scene is the result of a build.
type Scene struct {
	Cliff          *geometry.Mesh
	Tower          *geometry.Mesh
	TowerTransform Transform
	Anchor         mgl64.Vec3 // Point on the cliff the tower base is aligned to
}

// PlacedTower returns a copy of the tower mesh in cliff space.
func (s *Scene) PlacedTower() *geometry.Mesh {
	return geometry.Transform(s.Tower, s.TowerTransform.Matrix)
}

// Build builds a scene with the default placement.
func Build(cliffParams cliff.Params, towerParams tower.Params) (*Scene, error) {
	return BuildWithPlacement(Params{
		Cliff:     cliffParams,
		Tower:     towerParams,
		Placement: DefaultPlacement(),
	})
}

// BuildWithPlacement validates p, builds the cliff and tower concurrently,
// then computes the tower placement. No partial result is returned.
func BuildWithPlacement(p Params) (*Scene, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		wg                   sync.WaitGroup
		cliffMesh, towerMesh *geometry.Mesh
		cliffErr, towerErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cliffMesh, cliffErr = cliff.Build(p.Cliff)
	}()
	go func() {
		defer wg.Done()
		towerMesh, towerErr = tower.Build(p.Tower)
	}()
	wg.Wait()

	if cliffErr != nil {
		return nil, cliffErr
	}
	if towerErr != nil {
		return nil, towerErr
	}

	anchor := AnchorPoint(cliffMesh, p.Cliff, p.Placement)
	return &Scene{
		Cliff:  cliffMesh,
		Tower:  towerMesh,
		Anchor: anchor,
		TowerTransform: Transform{
			Translation: anchor,
			Matrix:      mgl64.Translate3D(anchor[0], anchor[1], anchor[2]),
		},
	}, nil
}

// AnchorPoint returns where the tower base should sit on a cliff mesh
// built from cp. XZ is the centre of the cliff's bounds.
func AnchorPoint(m *geometry.Mesh, cp cliff.Params, pl Placement) mgl64.Vec3 {
	min, max := m.Bounds()
	cx := (min[0] + max[0]) / 2
	cz := (min[2] + max[2]) / 2

	var y float64
	if Anchor(strings.ToLower(string(pl.Anchor))) == AnchorTop {
		y = cliff.TopHeight(m, pl.TopRatio)
	} else {
		y = cliff.SampleHeight(m, cp.Resolution, cp.Radius, cx, cz)
	}

	return mgl64.Vec3{cx, y + pl.YOffset, cz}
}
