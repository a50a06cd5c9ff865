package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMode matches any *InvalidModeError via errors.Is.
	ErrInvalidMode = errors.New("scene: invalid mode")

	// ErrBadTemplate indicates a tile template missing a {z}, {x} or {y} placeholder.
	ErrBadTemplate = errors.New("scene: tile template missing placeholder")
)

// InvalidModeError reports a mode name outside the six presets.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("scene: invalid mode %q (available: %v)", e.Mode, Modes())
}

func (e *InvalidModeError) Is(target error) bool {
	return target == ErrInvalidMode
}
