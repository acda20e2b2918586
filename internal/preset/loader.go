package preset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/lighthouse/internal/cliff"
	"github.com/lawnchairsociety/lighthouse/internal/lighthouse"
	"github.com/lawnchairsociety/lighthouse/internal/tower"
)

// PresetDefinition for YAML parsing
type PresetDefinition struct {
	Name      string               `yaml:"name"`
	Cliff     cliff.Params         `yaml:"cliff"`
	Tower     tower.Params         `yaml:"tower"`
	Placement lighthouse.Placement `yaml:"placement"`
}

// PresetsConfig represents the presets.yaml structure
type PresetsConfig struct {
	Presets []PresetDefinition `yaml:"presets"`
}

// LoadFromYAML builds a registry from a preset pack file. The built-in
// registry is not affected.
func LoadFromYAML(filename string) (*Registry, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}

	var config PresetsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse presets YAML: %w", err)
	}

	if len(config.Presets) == 0 {
		return nil, fmt.Errorf("presets file %s defines no presets", filename)
	}

	presets := make([]Preset, 0, len(config.Presets))
	for _, def := range config.Presets {
		placement := def.Placement
		if placement.Anchor == "" {
			placement = lighthouse.DefaultPlacement()
			placement.YOffset = def.Placement.YOffset
		}
		presets = append(presets, Preset{
			Name:      def.Name,
			Cliff:     def.Cliff,
			Tower:     def.Tower,
			Placement: placement,
		})
	}

	r, err := newRegistry(presets)
	if err != nil {
		return nil, fmt.Errorf("invalid presets file %s: %w", filename, err)
	}
	return r, nil
}
