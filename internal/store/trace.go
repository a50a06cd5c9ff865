// Package store records orbit traces: one full cycle of the driver's output
// computed offline, saved as metadata plus a CSV of samples.
package store

import (
	"math"

	"github.com/san-kum/skyglow/internal/anim"
	"github.com/san-kum/skyglow/internal/view"
)

type Sample struct {
	Tick    int     `json:"tick"`
	Phase   float64 `json:"phase"`
	Bearing float64 `json:"bearing"`
	Pitch   float64 `json:"pitch"`
	LightX  float64 `json:"lightX"`
	LightY  float64 `json:"lightY"`
}

// Trace runs both orbits through one cycle, ticks 0 through
// FullLoopDuration, exactly as the driver would apply them but without any
// scheduling.
func Trace(cfg anim.Config, base view.ViewState, lights view.Lights) []Sample {
	vc := view.NewCellWith(base)
	lc := view.NewCellWith(lights)
	cam := anim.NewCameraOrbit(vc, cfg)
	light := anim.NewLightOrbit(lc, cfg)
	cam.Begin(true)
	light.Begin(true)

	samples := make([]Sample, 0, cfg.FullLoopDuration+1)
	for i := 0; i <= cfg.FullLoopDuration; i++ {
		t := anim.Tick{
			Index:      i,
			Phase:      anim.Phase(i, cfg.FullLoopDuration),
			Transition: cfg.TickSize,
		}
		cam.Apply(t)
		light.Apply(t)
		v, _, _ := vc.Load()
		l, _, _ := lc.Load()
		samples = append(samples, Sample{
			Tick:    i,
			Phase:   t.Phase,
			Bearing: v.Bearing,
			Pitch:   v.Pitch,
			LightX:  l.Primary.X(),
			LightY:  l.Primary.Y(),
		})
	}
	return samples
}

// Summarize returns the extent of each traced channel.
func Summarize(samples []Sample) map[string]float64 {
	m := map[string]float64{
		"bearing_min": math.Inf(1), "bearing_max": math.Inf(-1),
		"pitch_min": math.Inf(1), "pitch_max": math.Inf(-1),
		"light_x_min": math.Inf(1), "light_x_max": math.Inf(-1),
	}
	if len(samples) == 0 {
		return map[string]float64{}
	}
	for _, s := range samples {
		m["bearing_min"] = math.Min(m["bearing_min"], s.Bearing)
		m["bearing_max"] = math.Max(m["bearing_max"], s.Bearing)
		m["pitch_min"] = math.Min(m["pitch_min"], s.Pitch)
		m["pitch_max"] = math.Max(m["pitch_max"], s.Pitch)
		m["light_x_min"] = math.Min(m["light_x_min"], s.LightX)
		m["light_x_max"] = math.Max(m["light_x_max"], s.LightX)
	}
	return m
}
