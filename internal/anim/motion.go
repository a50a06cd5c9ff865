package anim

import (
	"math"
	"time"

	"github.com/san-kum/skyglow/internal/view"
)

// Tick is one scheduled update.
type Tick struct {
	Index      int
	Phase      float64
	Transition time.Duration
}

// Motion is what a driver animates.
type Motion interface {
	// Ready reports whether the state to animate has been supplied yet.
	Ready() bool
	// Begin prepares a cycle. fresh is true for the first cycle after Start;
	// later cycles continue from the previous one and return false if the
	// state was written by someone else in between.
	Begin(fresh bool) bool
	// Apply writes the state for t. It returns false, writing nothing, if
	// the state was changed by another writer since the last Apply.
	Apply(t Tick) bool
}

func Phase(tick, loop int) float64 {
	return 2 * math.Pi * float64(tick) / float64(loop)
}

// CameraOffsets returns the bearing and pitch deltas at phase. Pitch runs at
// twice the bearing frequency, tracing a figure-eight.
func CameraOffsets(phase, bearingAmp, pitchAmp float64) (bearing, pitch float64) {
	return math.Sin(phase) * bearingAmp, math.Sin(2*phase) * pitchAmp
}

// LightOffsets returns the primary light's horizontal components at phase.
func LightOffsets(phase, amp float64) (x, y float64) {
	return math.Sin(phase) * amp, math.Cos(phase) * amp
}

// CameraOrbit sways the camera's bearing and pitch around the pose it found
// when it started.
type CameraOrbit struct {
	cell       *view.Cell[view.ViewState]
	bearingAmp float64
	pitchAmp   float64

	base    view.ViewState
	version uint64
}

func NewCameraOrbit(cell *view.Cell[view.ViewState], cfg Config) *CameraOrbit {
	return &CameraOrbit{
		cell:       cell,
		bearingAmp: cfg.BearingAmplitude,
		pitchAmp:   cfg.PitchAmplitude,
	}
}

func (o *CameraOrbit) Ready() bool {
	_, _, ok := o.cell.Load()
	return ok
}

func (o *CameraOrbit) Begin(fresh bool) bool {
	v, ver, ok := o.cell.Load()
	if !ok {
		return false
	}
	if fresh {
		o.base = v
		o.version = ver
		return true
	}
	return ver == o.version
}

func (o *CameraOrbit) Apply(t Tick) bool {
	cur, ver, ok := o.cell.Load()
	if !ok || ver != o.version {
		return false
	}
	db, dp := CameraOffsets(t.Phase, o.bearingAmp, o.pitchAmp)
	next := cur
	next.Bearing = o.base.Bearing + db
	next.Pitch = o.base.Pitch + dp
	next.TransitionDuration = t.Transition

	nv, ok := o.cell.CompareAndStore(ver, next)
	if !ok {
		return false
	}
	o.version = nv
	return true
}

// LightOrbit swings the primary light around the vertical axis. Its z
// component and the secondary light stay where they are.
type LightOrbit struct {
	cell *view.Cell[view.Lights]
	amp  float64

	version uint64
}

func NewLightOrbit(cell *view.Cell[view.Lights], cfg Config) *LightOrbit {
	return &LightOrbit{cell: cell, amp: cfg.LightAmplitude}
}

func (o *LightOrbit) Ready() bool {
	_, _, ok := o.cell.Load()
	return ok
}

func (o *LightOrbit) Begin(fresh bool) bool {
	_, ver, ok := o.cell.Load()
	if !ok {
		return false
	}
	if fresh {
		o.version = ver
		return true
	}
	return ver == o.version
}

func (o *LightOrbit) Apply(t Tick) bool {
	cur, ver, ok := o.cell.Load()
	if !ok || ver != o.version {
		return false
	}
	x, y := LightOffsets(t.Phase, o.amp)
	next := cur
	next.Primary[0] = x
	next.Primary[1] = y

	nv, ok := o.cell.CompareAndStore(ver, next)
	if !ok {
		return false
	}
	o.version = nv
	return true
}
