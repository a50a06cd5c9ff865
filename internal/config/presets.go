package config

import (
	"fmt"
	"sort"
	"time"
)

// Presets are named animation setups. Applying one replaces the whole
// animation section except Enabled and the startup timings.
var Presets = map[string]AnimationConfig{
	"drone-hover": {
		Variant: VariantCamera, FullLoopDuration: 200, TickSize: 5 * time.Millisecond,
		BearingAmplitude: 3, PitchAmplitude: 0.5,
	},
	"slow-orbit": {
		Variant: VariantCamera, FullLoopDuration: 1200, TickSize: 16 * time.Millisecond,
		BearingAmplitude: 25, PitchAmplitude: 4,
	},
	"light-sweep": {
		Variant: VariantLight, FullLoopDuration: 400, TickSize: 10 * time.Millisecond,
		LightAmplitude: 3,
	},
}

func GetPreset(name string) (AnimationConfig, bool) {
	p, ok := Presets[name]
	return p, ok
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
	p, ok := GetPreset(name)
	if !ok {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, ListPresets())
	}
	p.Enabled = c.Animation.Enabled
	p.StartDelay = c.Animation.StartDelay
	p.RetryDelay = c.Animation.RetryDelay
	p.BootstrapAttempts = c.Animation.BootstrapAttempts
	c.Animation = p
	return nil
}
