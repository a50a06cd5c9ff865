package scene

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type LayerKind string

const (
	TileLayer    LayerKind = "TileLayer"
	TerrainLayer LayerKind = "TerrainLayer"
)

// TileTemplate is a tile URL with {z}, {x} and {y} placeholders, e.g.
// "static/stamen-tiles/watercolor/{z}/{x}/{y}.jpg".
type TileTemplate string

func (t TileTemplate) Validate() error {
	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(string(t), p) {
			return fmt.Errorf("%w: %q has no %s", ErrBadTemplate, t, p)
		}
	}
	return nil
}

// Resolve substitutes the tile coordinates into the template.
func (t TileTemplate) Resolve(z, x, y int) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	)
	return r.Replace(string(t))
}

// Source locates a layer's data. Imagery layers set Tiles; terrain layers
// set the Elevation and Texture pair.
type Source struct {
	Tiles     TileTemplate
	Elevation TileTemplate
	Texture   TileTemplate
}

// ElevationDecoder maps a terrain tile's RGB channels to metres:
// r*RScaler + g*GScaler + b*BScaler + Offset.
type ElevationDecoder struct {
	RScaler float64 `json:"rScaler"`
	GScaler float64 `json:"gScaler"`
	BScaler float64 `json:"bScaler"`
	Offset  float64 `json:"offset"`
}

type Material struct {
	Ambient       float64
	Diffuse       float64
	Shininess     float64
	SpecularColor colorful.Color
}

func (m Material) MarshalJSON() ([]byte, error) {
	r, g, b := m.SpecularColor.RGB255()
	return json.Marshal(struct {
		Ambient       float64  `json:"ambient"`
		Diffuse       float64  `json:"diffuse"`
		Shininess     float64  `json:"shininess"`
		SpecularColor [3]uint8 `json:"specularColor"`
	}{m.Ambient, m.Diffuse, m.Shininess, [3]uint8{r, g, b}})
}

// Options is the engine-specific bag carried by each layer. Zero values are
// omitted from the encoded props.
type Options struct {
	WrapLongitude    bool
	MaxZoom          int
	ElevationDecoder *ElevationDecoder
	MeshMaxError     float64
	WorkerURL        string
	Material         *Material
}

// LayerSpec is one renderable layer.
type LayerSpec struct {
	ID      string
	Kind    LayerKind
	Source  Source
	Options Options
}

type layerProps struct {
	ID               string            `json:"id"`
	Type             LayerKind         `json:"type"`
	Data             TileTemplate      `json:"data,omitempty"`
	ElevationData    TileTemplate      `json:"elevationData,omitempty"`
	Texture          TileTemplate      `json:"texture,omitempty"`
	WrapLongitude    bool              `json:"wrapLongitude"`
	MaxZoom          int               `json:"maxZoom,omitempty"`
	ElevationDecoder *ElevationDecoder `json:"elevationDecoder,omitempty"`
	MeshMaxError     float64           `json:"meshMaxError,omitempty"`
	WorkerURL        string            `json:"workerUrl,omitempty"`
	Material         *Material         `json:"material,omitempty"`
}

// MarshalJSON encodes the layer as the flat prop object deck.gl expects.
func (l LayerSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(layerProps{
		ID:               l.ID,
		Type:             l.Kind,
		Data:             l.Source.Tiles,
		ElevationData:    l.Source.Elevation,
		Texture:          l.Source.Texture,
		WrapLongitude:    l.Options.WrapLongitude,
		MaxZoom:          l.Options.MaxZoom,
		ElevationDecoder: l.Options.ElevationDecoder,
		MeshMaxError:     l.Options.MeshMaxError,
		WorkerURL:        l.Options.WorkerURL,
		Material:         l.Options.Material,
	})
}
