// Package scene turns a visualization mode into the declarative layer list
// handed to the rendering engine.
//
// The six modes pair a basemap with either a haze overlay (light pollution
// drawn as translucent grey tiles) or a bump-mapped terrain mesh whose
// elevation channel is the light pollution raster:
//
//	layers, err := scene.Compose(scene.HazyWatercolor)
//	// watercolor, tonerlabel, smog (bottom to top)
//
// Layers later in the list render on top. Composition is pure: the result
// depends only on the mode and the configured [Sources].
package scene
