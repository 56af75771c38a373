package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/wavebuoy/internal/physics"
)

type Preset struct {
	Description string
	Geometry    physics.Geometry
}

var Presets = map[string]Preset{
	"reference": {
		Description: "8 m diameter, 6 m draft point absorber",
		Geometry:    physics.Geometry{Diameter: 8, Draft: 6, EtaPTO: 0.9},
	},
	"compact": {
		Description: "5 m diameter, 4 m draft nearshore buoy",
		Geometry:    physics.Geometry{Diameter: 5, Draft: 4, EtaPTO: 0.85},
	},
	"large": {
		Description: "12 m diameter, 8 m draft offshore buoy",
		Geometry:    physics.Geometry{Diameter: 12, Draft: 8, EtaPTO: 0.92},
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: unknown preset %q (have %v)", ErrInvalid, name, ListPresets())
	}
	c.Preset = name
	c.Geometry = p.Geometry
	return nil
}
