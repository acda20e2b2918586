package preset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lawnchairsociety/lighthouse/internal/cliff"
	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/lighthouse"
	"github.com/lawnchairsociety/lighthouse/internal/tower"
)

func TestListBuiltins(t *testing.T) {
	want := []string{"Shutter", "Calm", "Storm"}
	if got := List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestListReturnsCopy(t *testing.T) {
	names := List()
	names[0] = "Changed"
	if List()[0] != Shutter {
		t.Error("mutating List() result changed the registry")
	}
}

func TestGetCaseInsensitive(t *testing.T) {
	for _, name := range []string{"Storm", "storm", "STORM", " storm "} {
		p, err := Get(name)
		if err != nil {
			t.Errorf("Get(%q) error = %v", name, err)
			continue
		}
		if p.Name != Storm {
			t.Errorf("Get(%q).Name = %q, want %q", name, p.Name, Storm)
		}
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := Get("foo")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Get(\"foo\") error = %v, want ErrUnknownPreset", err)
	}
}

func TestBuiltinsValidAtEveryQuality(t *testing.T) {
	for _, name := range List() {
		p, _ := Get(name)
		for _, q := range []geometry.Quality{geometry.QualityDraft, geometry.QualityHigh} {
			if err := p.Params(q).Validate(); err != nil {
				t.Errorf("%s/%s: Validate() = %v", name, q, err)
			}
		}
	}
}

func TestParamsQualityTiers(t *testing.T) {
	p, _ := Get(Calm)

	draft := p.Params(geometry.QualityDraft)
	high := p.Params(geometry.QualityHigh)

	if draft.Cliff.Resolution != cliff.DraftResolution || high.Cliff.Resolution != cliff.HighResolution {
		t.Errorf("resolutions = %d/%d, want %d/%d",
			draft.Cliff.Resolution, high.Cliff.Resolution, cliff.DraftResolution, cliff.HighResolution)
	}

	seg, rings := tower.SubdivisionsFor(geometry.QualityHigh)
	if high.Tower.Segments != seg || high.Tower.Rings != rings {
		t.Errorf("high tower subdivisions = %d/%d, want %d/%d", high.Tower.Segments, high.Tower.Rings, seg, rings)
	}

	// Quality changes detail only
	if draft.Cliff.Seed != high.Cliff.Seed || draft.Tower.Height != high.Tower.Height {
		t.Error("quality tier changed style parameters")
	}
	if p.Cliff.Resolution != 0 {
		t.Error("Params mutated the stored preset")
	}
}

func TestBuiltinsBuild(t *testing.T) {
	for _, name := range List() {
		p, _ := Get(name)
		scene, err := lighthouse.BuildWithPlacement(p.Params(geometry.QualityDraft))
		if err != nil {
			t.Errorf("%s: build failed: %v", name, err)
			continue
		}
		_, max := scene.Cliff.Bounds()
		if scene.Anchor[1] > max[1] {
			t.Errorf("%s: anchor %f above cliff top %f", name, scene.Anchor[1], max[1])
		}
	}
}

func TestNewRegistryRejects(t *testing.T) {
	valid, _ := Get(Calm)

	bad := valid
	bad.Name = "Bad"
	bad.Tower.TopRadius = bad.Tower.BaseRadius + 1

	tests := []struct {
		name    string
		presets []Preset
	}{
		{"empty name", []Preset{{Name: " ", Cliff: valid.Cliff, Tower: valid.Tower}}},
		{"duplicate", []Preset{valid, {Name: "calm", Cliff: valid.Cliff, Tower: valid.Tower}}},
		{"invalid params", []Preset{bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newRegistry(tt.presets); err == nil {
				t.Error("newRegistry() succeeded, want error")
			}
		})
	}
}

const packYAML = `presets:
  - name: Harbour
    cliff:
      seed: 5
      amplitude: 0.8
      frequency: 0.1
      radius: 12
      height: 6
      noise: perlin
    tower:
      height: 18
      base_radius: 3
      top_radius: 2.5
      band_count: 1
      band_height: 0.5
    placement:
      anchor: top
      top_ratio: 0.2
      y_offset: -0.1
  - name: Beacon
    cliff:
      seed: 9
      amplitude: 1.2
      frequency: 0.2
      radius: 10
      height: 4
    tower:
      height: 12
      base_radius: 2
      top_radius: 2
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write presets file: %v", err)
	}
	return path
}

func TestLoadFromYAML(t *testing.T) {
	r, err := LoadFromYAML(writeFile(t, packYAML))
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}

	if got := r.List(); !reflect.DeepEqual(got, []string{"Harbour", "Beacon"}) {
		t.Errorf("List() = %v", got)
	}

	h, err := r.Get("harbour")
	if err != nil {
		t.Fatalf("Get(harbour) error = %v", err)
	}
	if h.Cliff.Seed != 5 || h.Tower.BaseRadius != 3 || h.Placement.Anchor != lighthouse.AnchorTop {
		t.Errorf("Harbour loaded as %+v", h)
	}

	b, _ := r.Get("Beacon")
	if b.Placement.Anchor != lighthouse.AnchorCenter {
		t.Errorf("Beacon anchor = %q, want default %q", b.Placement.Anchor, lighthouse.AnchorCenter)
	}

	// The built-in registry is untouched
	if _, err := Get("Harbour"); !errors.Is(err, ErrUnknownPreset) {
		t.Error("loading a pack changed the built-in registry")
	}
	if Default().Count() != 3 {
		t.Errorf("Default().Count() = %d, want 3", Default().Count())
	}
}

func TestLoadFromYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "presets: [\n"},
		{"empty", "presets: []\n"},
		{"duplicate", `presets:
  - name: A
    cliff: {radius: 5}
    tower: {height: 10, base_radius: 2, top_radius: 1}
  - name: a
    cliff: {radius: 5}
    tower: {height: 10, base_radius: 2, top_radius: 1}
`},
		{"inverted taper", `presets:
  - name: A
    cliff: {radius: 5}
    tower: {height: 10, base_radius: 1, top_radius: 2}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromYAML(writeFile(t, tt.content)); err == nil {
				t.Error("LoadFromYAML() succeeded, want error")
			}
		})
	}

	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFromYAML(missing) succeeded, want error")
	}
}
