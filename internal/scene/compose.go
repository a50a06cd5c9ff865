package scene

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// HazeMaxZoom is the deepest zoom level the haze raster was cut to.
	HazeMaxZoom = 7

	DefaultSpecular = "#ffc040"
)

// Sources holds the tile templates the compositions draw from.
type Sources struct {
	Haze       TileTemplate `yaml:"haze"`
	Globe      TileTemplate `yaml:"globe"`
	Watercolor TileTemplate `yaml:"watercolor"`
	Labels     TileTemplate `yaml:"labels"`
	Terrain    TileTemplate `yaml:"terrain"`
	WorkerURL  string       `yaml:"worker_url"`
}

func DefaultSources() Sources {
	return Sources{
		Haze:       "static/tiles/greys-{z}-{x}-{y}.png",
		Globe:      "static/tiles/globe-{z}-{x}-{y}.png",
		Watercolor: "static/stamen-tiles/watercolor/{z}/{x}/{y}.jpg",
		Labels:     "static/stamen-tiles/toner-labels/{z}/{x}/{y}.png",
		Terrain:    "static/stamen-tiles/terrain/{z}/{x}/{y}.png",
		WorkerURL:  "static/terrain-loader.worker.js",
	}
}

func (s Sources) Validate() error {
	for _, t := range []TileTemplate{s.Haze, s.Globe, s.Watercolor, s.Labels, s.Terrain} {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Composer builds layer lists from a fixed set of sources.
type Composer struct {
	sources  Sources
	specular colorful.Color
}

var defaultComposer = mustComposer(DefaultSources(), DefaultSpecular)

func NewComposer(src Sources, specular string) (*Composer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if specular == "" {
		specular = DefaultSpecular
	}
	c, err := colorful.Hex(specular)
	if err != nil {
		return nil, fmt.Errorf("scene: specular color: %w", err)
	}
	return &Composer{sources: src, specular: c}, nil
}

func mustComposer(src Sources, specular string) *Composer {
	c, err := NewComposer(src, specular)
	if err != nil {
		panic(err)
	}
	return c
}

// Compose returns the layers for mode using the default sources.
func Compose(mode Mode) ([]LayerSpec, error) {
	return defaultComposer.Compose(mode)
}

// Compose returns the layers for mode, bottom first. An unknown mode yields
// an *InvalidModeError and no layers.
func (c *Composer) Compose(mode Mode) ([]LayerSpec, error) {
	switch mode {
	case BumpyLight:
		return []LayerSpec{c.terrain("bumpyLight", c.sources.Globe)}, nil
	case BumpyTerrain:
		return []LayerSpec{c.terrain("bumpyTerrain", c.sources.Terrain)}, nil
	case BumpyWatercolor:
		return []LayerSpec{c.terrain("bumpyWatercolor", c.sources.Watercolor)}, nil
	case HazyTerrain:
		return []LayerSpec{c.greenhills(), c.smog()}, nil
	case HazyWatercolor:
		return []LayerSpec{c.watercolor(), c.tonerlabel(), c.smog()}, nil
	case HazyGouache:
		return []LayerSpec{c.watercolor(), c.smog()}, nil
	}
	return nil, &InvalidModeError{Mode: string(mode)}
}

func tiles(id string, t TileTemplate) LayerSpec {
	return LayerSpec{
		ID:      id,
		Kind:    TileLayer,
		Source:  Source{Tiles: t},
		Options: Options{WrapLongitude: true},
	}
}

func (c *Composer) smog() LayerSpec {
	l := tiles("smog", c.sources.Haze)
	l.Options.MaxZoom = HazeMaxZoom
	return l
}

func (c *Composer) watercolor() LayerSpec { return tiles("watercolor", c.sources.Watercolor) }
func (c *Composer) tonerlabel() LayerSpec { return tiles("tonerlabel", c.sources.Labels) }
func (c *Composer) greenhills() LayerSpec { return tiles("greenhills", c.sources.Terrain) }

// terrain drapes texture over a mesh whose height is the light pollution
// raster, decoded from the blue channel.
func (c *Composer) terrain(id string, texture TileTemplate) LayerSpec {
	return LayerSpec{
		ID:   id,
		Kind: TerrainLayer,
		Source: Source{
			Elevation: c.sources.Globe,
			Texture:   texture,
		},
		Options: Options{
			WrapLongitude:    true,
			ElevationDecoder: &ElevationDecoder{BScaler: 337},
			MeshMaxError:     1,
			WorkerURL:        c.sources.WorkerURL,
			Material: &Material{
				Ambient:       0.2,
				Diffuse:       1,
				Shininess:     128,
				SpecularColor: c.specular,
			},
		},
	}
}
