package scene

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

type AmbientLight struct {
	Color     colorful.Color
	Intensity float64
}

type DirectionalLight struct {
	Color     colorful.Color
	Intensity float64
	Direction mgl64.Vec3
}

// Lighting describes a deck.gl LightingEffect: one ambient light and any
// number of directional lights.
type Lighting struct {
	Ambient     AmbientLight
	Directional []DirectionalLight
}

// LightingStyle is the static part of the lighting: colours and intensities.
type LightingStyle struct {
	AmbientIntensity   float64
	PrimaryIntensity   float64
	SecondaryIntensity float64
}

func DefaultLightingStyle() LightingStyle {
	return LightingStyle{
		AmbientIntensity:   1.0,
		PrimaryIntensity:   2.0,
		SecondaryIntensity: 1.0,
	}
}

var white = colorful.Color{R: 1, G: 1, B: 1}

// LightingFor builds the effect for the two directional lights.
func LightingFor(primary, secondary mgl64.Vec3, style LightingStyle) Lighting {
	return Lighting{
		Ambient: AmbientLight{Color: white, Intensity: style.AmbientIntensity},
		Directional: []DirectionalLight{
			{Color: white, Intensity: style.PrimaryIntensity, Direction: primary},
			{Color: white, Intensity: style.SecondaryIntensity, Direction: secondary},
		},
	}
}

type lightProps struct {
	Color     [3]uint8    `json:"color"`
	Intensity float64     `json:"intensity"`
	Direction *mgl64.Vec3 `json:"direction,omitempty"`
}

func rgb(c colorful.Color) [3]uint8 {
	r, g, b := c.RGB255()
	return [3]uint8{r, g, b}
}

func (l Lighting) MarshalJSON() ([]byte, error) {
	out := struct {
		Type        string       `json:"type"`
		Ambient     lightProps   `json:"ambientLight"`
		Directional []lightProps `json:"directionalLights"`
	}{
		Type:    "LightingEffect",
		Ambient: lightProps{Color: rgb(l.Ambient.Color), Intensity: l.Ambient.Intensity},
	}
	for _, d := range l.Directional {
		dir := d.Direction
		out.Directional = append(out.Directional, lightProps{
			Color:     rgb(d.Color),
			Intensity: d.Intensity,
			Direction: &dir,
		})
	}
	return json.Marshal(out)
}
