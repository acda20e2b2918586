package preset

import (
	"github.com/lawnchairsociety/lighthouse/internal/cliff"
	"github.com/lawnchairsociety/lighthouse/internal/lighthouse"
	"github.com/lawnchairsociety/lighthouse/internal/noise"
	"github.com/lawnchairsociety/lighthouse/internal/tower"
)

// Built-in preset names.
const (
	Shutter = "Shutter"
	Calm    = "Calm"
	Storm   = "Storm"
)

// builtin returns the stock presets. Cliff radius is half the plateau width.
func builtin() []Preset {
	return []Preset{
		{
			Name: Shutter,
			Cliff: cliff.Params{
				Seed:      11,
				Amplitude: 1.8,
				Frequency: 0.12,
				Radius:    20.0,
				Height:    14.0,
				Noise:     noise.KindSimplex,
			},
			Tower: tower.Params{
				Height:        30.0,
				BaseRadius:    4.2,
				TopRadius:     2.8,
				BandCount:     3,
				BandHeight:    0.6,
				DoorHeight:    3.0,
				DoorWidth:     1.6,
				LanternHeight: 3.0,
				LanternRadius: 2.2,
			},
			Placement: lighthouse.Placement{Anchor: lighthouse.AnchorTop, TopRatio: 0.08, YOffset: -0.35},
		},
		{
			Name: Calm,
			Cliff: cliff.Params{
				Seed:      3,
				Amplitude: 1.0,
				Frequency: 0.08,
				Radius:    16.0,
				Height:    10.0,
				Noise:     noise.KindSimplex,
			},
			Tower: tower.Params{
				Height:        26.0,
				BaseRadius:    4.0,
				TopRadius:     3.5,
				BandCount:     2,
				BandHeight:    0.8,
				DoorHeight:    2.8,
				DoorWidth:     1.5,
				LanternHeight: 2.6,
				LanternRadius: 2.6,
			},
			Placement: lighthouse.Placement{Anchor: lighthouse.AnchorTop, TopRatio: 0.10, YOffset: -0.25},
		},
		{
			Name: Storm,
			Cliff: cliff.Params{
				Seed:      27,
				Amplitude: 2.2,
				Frequency: 0.18,
				Radius:    22.5,
				Height:    18.0,
				Noise:     noise.KindPerlin,
			},
			Tower: tower.Params{
				Height:        34.0,
				BaseRadius:    4.0,
				TopRadius:     2.5,
				BandCount:     4,
				BandHeight:    0.5,
				DoorHeight:    3.2,
				DoorWidth:     1.4,
				LanternHeight: 3.4,
				LanternRadius: 1.9,
			},
			Placement: lighthouse.Placement{Anchor: lighthouse.AnchorTop, TopRatio: 0.06, YOffset: -0.45},
		},
	}
}
