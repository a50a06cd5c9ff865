package store

import (
	"fmt"
	"strings"
)

// Axis picks one coordinate of a sample.
type Axis func(Sample) float64

var (
	AxisBearing Axis = func(s Sample) float64 { return s.Bearing }
	AxisPitch   Axis = func(s Sample) float64 { return s.Pitch }
	AxisLightX  Axis = func(s Sample) float64 { return s.LightX }
	AxisLightY  Axis = func(s Sample) float64 { return s.LightY }
)

// PathSVG draws samples as a single path of x against y. The camera orbit
// traces a figure-eight in (bearing, pitch); the light orbit a circle in
// (light x, light y).
func PathSVG(samples []Sample, x, y Axis, width, height int, stroke string) string {
	if len(samples) < 2 {
		return ""
	}

	minX, maxX := x(samples[0]), x(samples[0])
	minY, maxY := y(samples[0]), y(samples[0])
	for _, s := range samples {
		minX, maxX = min(minX, x(s)), max(maxX, x(s))
		minY, maxY = min(minY, y(s)), max(maxY, y(s))
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0b1020"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, stroke)

	for i, s := range samples {
		px := (x(s) - minX) / rangeX * float64(width)
		py := float64(height) - (y(s)-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", px, py)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", px, py)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
