package anim

import (
	"fmt"
	"time"
)

const (
	DefaultFullLoopDuration = 200
	DefaultTickSize         = 5 * time.Millisecond
	DefaultBearingAmplitude = 3.0
	DefaultPitchAmplitude   = 0.5
	DefaultLightAmplitude   = 3.0
	DefaultRetryDelay       = 10 * time.Millisecond
)

// Config is fixed for the life of a driver.
type Config struct {
	// FullLoopDuration is the number of ticks in one period.
	FullLoopDuration int
	// TickSize is the minimum spacing between ticks and the transition
	// duration requested for each emitted state.
	TickSize time.Duration

	BearingAmplitude float64
	PitchAmplitude   float64
	LightAmplitude   float64

	// RetryDelay spaces the readiness polls made before the first cycle.
	RetryDelay time.Duration
	// BootstrapAttempts caps those polls; zero polls until ready.
	BootstrapAttempts int
}

func DefaultConfig() Config {
	return Config{
		FullLoopDuration: DefaultFullLoopDuration,
		TickSize:         DefaultTickSize,
		BearingAmplitude: DefaultBearingAmplitude,
		PitchAmplitude:   DefaultPitchAmplitude,
		LightAmplitude:   DefaultLightAmplitude,
		RetryDelay:       DefaultRetryDelay,
	}
}

func (c Config) Validate() error {
	if c.FullLoopDuration <= 0 {
		return fmt.Errorf("anim: full loop duration must be positive, got %d", c.FullLoopDuration)
	}
	if c.TickSize <= 0 {
		return fmt.Errorf("anim: tick size must be positive, got %s", c.TickSize)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("anim: retry delay must be positive, got %s", c.RetryDelay)
	}
	if c.BootstrapAttempts < 0 {
		return fmt.Errorf("anim: bootstrap attempts must not be negative, got %d", c.BootstrapAttempts)
	}
	return nil
}
