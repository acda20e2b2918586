// Package preset holds the named style bundles the lighthouse tool offers.
package preset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/lighthouse/internal/cliff"
	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/lighthouse"
	"github.com/lawnchairsociety/lighthouse/internal/tower"
)

// ErrUnknownPreset is returned when a preset name is not registered.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named, fixed pairing of cliff, tower and placement settings.
// Cliff resolution and tower subdivisions come from the quality tier.
type Preset struct {
	Name      string
	Cliff     cliff.Params
	Tower     tower.Params
	Placement lighthouse.Placement
}

// Params resolves the preset into build parameters for a quality tier.
func (p Preset) Params(q geometry.Quality) lighthouse.Params {
	c := p.Cliff
	c.Resolution = cliff.ResolutionFor(q)

	t := p.Tower
	t.Segments, t.Rings = tower.SubdivisionsFor(q)

	return lighthouse.Params{Cliff: c, Tower: t, Placement: p.Placement}
}

// Registry is a read-only set of presets. It has no mutation API; a new
// registry must be built to change its contents.
type Registry struct {
	names   []string          // canonical names, in registration order
	presets map[string]Preset // lower-case name -> preset
}

// newRegistry validates presets and builds a registry from them.
func newRegistry(presets []Preset) (*Registry, error) {
	r := &Registry{
		names:   make([]string, 0, len(presets)),
		presets: make(map[string]Preset, len(presets)),
	}

	for _, p := range presets {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("preset with empty name")
		}
		key := strings.ToLower(name)
		if _, exists := r.presets[key]; exists {
			return nil, fmt.Errorf("duplicate preset %q", name)
		}
		if err := p.Params(geometry.QualityDraft).Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}

		p.Name = name
		r.names = append(r.names, name)
		r.presets[key] = p
	}

	return r, nil
}

// Get returns the preset with the given name, ignoring case.
func (r *Registry) Get(name string) (Preset, error) {
	p, ok := r.presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// List returns the preset names in registration order.
func (r *Registry) List() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Count returns the number of presets.
func (r *Registry) Count() int {
	return len(r.names)
}

// defaultRegistry is built once from the built-in presets.
var defaultRegistry = mustRegistry(builtin())

func mustRegistry(presets []Preset) *Registry {
	r, err := newRegistry(presets)
	if err != nil {
		panic(fmt.Sprintf("preset: invalid built-in presets: %v", err))
	}
	return r
}

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry
}

// Get looks a preset up in the built-in registry.
func Get(name string) (Preset, error) {
	return defaultRegistry.Get(name)
}

// List returns the built-in preset names.
func List() []string {
	return defaultRegistry.List()
}
