// Package view holds the mutable pose and light state shared between the
// animation driver, manual input and the rendering engine.
package view

import (
	"encoding/json"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// ViewState is the camera pose. The orbit only moves Pitch and Bearing; the
// rest belongs to the user's controller and is carried through untouched.
type ViewState struct {
	Longitude float64
	Latitude  float64
	Zoom      float64
	Pitch     float64
	Bearing   float64
	MaxZoom   float64

	// TransitionDuration asks the engine to interpolate to this pose rather
	// than jump to it.
	TransitionDuration time.Duration
}

type viewStateJSON struct {
	Longitude          float64 `json:"longitude"`
	Latitude           float64 `json:"latitude"`
	Zoom               float64 `json:"zoom"`
	Pitch              float64 `json:"pitch"`
	Bearing            float64 `json:"bearing"`
	MaxZoom            float64 `json:"maxZoom,omitempty"`
	TransitionDuration int64   `json:"transitionDuration,omitempty"`
}

func (v ViewState) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewStateJSON{
		Longitude:          v.Longitude,
		Latitude:           v.Latitude,
		Zoom:               v.Zoom,
		Pitch:              v.Pitch,
		Bearing:            v.Bearing,
		MaxZoom:            v.MaxZoom,
		TransitionDuration: v.TransitionDuration.Milliseconds(),
	})
}

func (v *ViewState) UnmarshalJSON(data []byte) error {
	var raw viewStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ViewState{
		Longitude:          raw.Longitude,
		Latitude:           raw.Latitude,
		Zoom:               raw.Zoom,
		Pitch:              raw.Pitch,
		Bearing:            raw.Bearing,
		MaxZoom:            raw.MaxZoom,
		TransitionDuration: time.Duration(raw.TransitionDuration) * time.Millisecond,
	}
	return nil
}

// Lights are the two directional light vectors of the lighting variant.
type Lights struct {
	Primary   mgl64.Vec3 `json:"primary"`
	Secondary mgl64.Vec3 `json:"secondary"`
}
