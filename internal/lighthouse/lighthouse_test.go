package lighthouse

import (
	"errors"
	"math"
	"testing"

	"github.com/lawnchairsociety/lighthouse/internal/cliff"
	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/tower"
)

func scenarioCliff() cliff.Params {
	return cliff.Params{
		Resolution: 10,
		Seed:       42,
		Amplitude:  2.0,
		Frequency:  0.5,
		Radius:     20,
	}
}

func scenarioTower() tower.Params {
	return tower.Params{
		Height:     30,
		BaseRadius: 4,
		TopRadius:  2,
		Segments:   16,
		Rings:      6,
		BandCount:  3,
		BandHeight: 1,
	}
}

func TestBuildEndToEnd(t *testing.T) {
	scene, err := Build(scenarioCliff(), scenarioTower())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if scene.Cliff.VertexCount() != 10*10 {
		t.Errorf("cliff vertices = %d, want 100", scene.Cliff.VertexCount())
	}

	// 7 regular rings + 3 bands * 2 edge rings, 16 vertices each, 2 cap centres
	if want := 13*16 + 2; scene.Tower.VertexCount() != want {
		t.Errorf("tower vertices = %d, want %d", scene.Tower.VertexCount(), want)
	}
	if got := len(scene.Tower.LoopsLabelled(tower.GroupBand)); got != 6 {
		t.Errorf("band loops = %d, want 6", got)
	}

	wantY := cliff.SampleHeight(scene.Cliff, 10, 20, 0, 0)
	tr := scene.TowerTransform.Translation
	if math.Abs(tr[1]-wantY) > 1e-9 {
		t.Errorf("translation Y = %f, want cliff height %f", tr[1], wantY)
	}
	if math.Abs(tr[0]) > 1e-9 || math.Abs(tr[2]) > 1e-9 {
		t.Errorf("translation XZ = (%f, %f), want centre", tr[0], tr[2])
	}
	if scene.Anchor != tr {
		t.Errorf("Anchor %v differs from translation %v", scene.Anchor, tr)
	}
}

func TestAnchorOnVertexForOddResolution(t *testing.T) {
	cp := scenarioCliff()
	cp.Resolution = 11
	scene, err := Build(cp, scenarioTower())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	centre := scene.Cliff.Vertices[5*11+5]
	if math.Abs(scene.TowerTransform.Translation[1]-centre[1]) > 1e-9 {
		t.Errorf("translation Y = %f, want centre vertex height %f", scene.TowerTransform.Translation[1], centre[1])
	}
}

func TestOrchestrationIndependence(t *testing.T) {
	scene, err := Build(scenarioCliff(), scenarioTower())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	direct, _ := cliff.Build(scenarioCliff())
	if !scene.Cliff.Equal(direct) {
		t.Error("orchestrated cliff differs from a direct build")
	}
	if scene.Cliff.Fingerprint() != direct.Fingerprint() {
		t.Error("orchestrated cliff fingerprint differs from a direct build")
	}

	directTower, _ := tower.Build(scenarioTower())
	if !scene.Tower.Equal(directTower) {
		t.Error("placement was baked into the tower mesh")
	}
}

func TestPlacedTower(t *testing.T) {
	scene, _ := Build(scenarioCliff(), scenarioTower())
	placed := scene.PlacedTower()

	min, _ := placed.Bounds()
	if math.Abs(min[1]-scene.Anchor[1]) > 1e-9 {
		t.Errorf("placed tower base at %f, want %f", min[1], scene.Anchor[1])
	}

	orig, _ := scene.Tower.Bounds()
	if orig[1] != 0 {
		t.Errorf("PlacedTower mutated the scene tower (base now %f)", orig[1])
	}
}

func TestAnchorTopWithOffset(t *testing.T) {
	p := Params{
		Cliff: scenarioCliff(),
		Tower: scenarioTower(),
		Placement: Placement{
			Anchor:   AnchorTop,
			TopRatio: 0.08,
			YOffset:  -0.35,
		},
	}
	scene, err := BuildWithPlacement(p)
	if err != nil {
		t.Fatalf("BuildWithPlacement failed: %v", err)
	}

	want := cliff.TopHeight(scene.Cliff, 0.08) - 0.35
	if math.Abs(scene.Anchor[1]-want) > 1e-9 {
		t.Errorf("anchor Y = %f, want %f", scene.Anchor[1], want)
	}
	_, max := scene.Cliff.Bounds()
	if scene.Anchor[1] > max[1] {
		t.Errorf("anchor %f above the highest cliff vertex %f", scene.Anchor[1], max[1])
	}
}

func TestBuildPropagatesInvalidParameter(t *testing.T) {
	badCliff := scenarioCliff()
	badCliff.Resolution = 0

	scene, err := Build(badCliff, scenarioTower())
	if !errors.Is(err, geometry.ErrInvalidParameter) {
		t.Errorf("cliff error = %v, want ErrInvalidParameter", err)
	}
	if scene != nil {
		t.Error("partial scene returned for invalid cliff")
	}

	badTower := scenarioTower()
	badTower.TopRadius = 5

	scene, err = Build(scenarioCliff(), badTower)
	if !errors.Is(err, geometry.ErrInvalidParameter) {
		t.Errorf("tower error = %v, want ErrInvalidParameter", err)
	}
	if scene != nil {
		t.Error("partial scene returned for invalid tower")
	}
}

func TestPlacementValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Placement
		wantErr bool
	}{
		{"default", DefaultPlacement(), false},
		{"empty anchor", Placement{}, false},
		{"top", Placement{Anchor: AnchorTop, TopRatio: 0.1}, false},
		{"top upper case", Placement{Anchor: "TOP", TopRatio: 1}, false},
		{"top zero ratio", Placement{Anchor: AnchorTop}, true},
		{"top ratio above one", Placement{Anchor: AnchorTop, TopRatio: 1.5}, true},
		{"unknown anchor", Placement{Anchor: "edge"}, true},
		{"NaN offset", Placement{YOffset: math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr && !errors.Is(err, geometry.ErrInvalidParameter) {
				t.Errorf("Validate() = %v, want ErrInvalidParameter", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
