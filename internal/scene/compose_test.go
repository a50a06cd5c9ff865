package scene

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func layerIDs(layers []LayerSpec) []string {
	ids := make([]string, len(layers))
	for i, l := range layers {
		ids[i] = l.ID
	}
	return ids
}

func TestComposeModes(t *testing.T) {
	tests := []struct {
		mode Mode
		ids  []string
	}{
		{BumpyLight, []string{"bumpyLight"}},
		{BumpyTerrain, []string{"bumpyTerrain"}},
		{BumpyWatercolor, []string{"bumpyWatercolor"}},
		{HazyTerrain, []string{"greenhills", "smog"}},
		{HazyWatercolor, []string{"watercolor", "tonerlabel", "smog"}},
		{HazyGouache, []string{"watercolor", "smog"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			layers, err := Compose(tt.mode)
			if err != nil {
				t.Fatalf("compose failed: %v", err)
			}
			got := layerIDs(layers)
			if strings.Join(got, ",") != strings.Join(tt.ids, ",") {
				t.Errorf("expected layers %v, got %v", tt.ids, got)
			}
		})
	}
}

func TestComposeCoversAllModes(t *testing.T) {
	if len(Modes()) != 6 {
		t.Fatalf("expected 6 modes, got %d", len(Modes()))
	}
	for _, m := range Modes() {
		layers, err := Compose(m)
		if err != nil {
			t.Errorf("mode %s: %v", m, err)
		}
		if len(layers) == 0 {
			t.Errorf("mode %s: no layers", m)
		}
		if m.Label() == "" {
			t.Errorf("mode %s: no label", m)
		}
	}
}

func TestComposeInvalidMode(t *testing.T) {
	layers, err := Compose(Mode("neon-noir"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if layers != nil {
		t.Errorf("expected no layers, got %v", layerIDs(layers))
	}
	if !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	var ime *InvalidModeError
	if !errors.As(err, &ime) || ime.Mode != "neon-noir" {
		t.Errorf("expected InvalidModeError for neon-noir, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("hazy-gouache")
	if err != nil || m != HazyGouache {
		t.Errorf("expected hazy-gouache, got %q (%v)", m, err)
	}
	if _, err := ParseMode(""); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode for empty name, got %v", err)
	}
}

func TestComposeIsPure(t *testing.T) {
	a, _ := Compose(HazyWatercolor)
	a[0].ID = "mutated"
	b, _ := Compose(HazyWatercolor)
	if b[0].ID != "watercolor" {
		t.Errorf("compose result shared between calls: %s", b[0].ID)
	}
}

func TestTerrainLayerOptions(t *testing.T) {
	layers, err := Compose(BumpyTerrain)
	if err != nil {
		t.Fatal(err)
	}
	l := layers[0]
	src := DefaultSources()

	if l.Kind != TerrainLayer {
		t.Errorf("expected terrain layer, got %s", l.Kind)
	}
	if l.Source.Elevation != src.Globe || l.Source.Texture != src.Terrain {
		t.Errorf("unexpected source %+v", l.Source)
	}
	if l.Options.ElevationDecoder == nil || l.Options.ElevationDecoder.BScaler != 337 {
		t.Errorf("unexpected decoder %+v", l.Options.ElevationDecoder)
	}
	if l.Options.MeshMaxError != 1 {
		t.Errorf("expected mesh max error 1, got %f", l.Options.MeshMaxError)
	}
	r, g, b := l.Options.Material.SpecularColor.RGB255()
	if r != 255 || g != 192 || b != 64 {
		t.Errorf("expected specular 255,192,64, got %d,%d,%d", r, g, b)
	}
}

func TestLayerJSON(t *testing.T) {
	layers, _ := Compose(HazyTerrain)
	data, err := json.Marshal(layers[1])
	if err != nil {
		t.Fatal(err)
	}

	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		t.Fatal(err)
	}
	if props["type"] != "TileLayer" || props["id"] != "smog" {
		t.Errorf("unexpected props %v", props)
	}
	if props["maxZoom"] != float64(HazeMaxZoom) {
		t.Errorf("expected maxZoom %d, got %v", HazeMaxZoom, props["maxZoom"])
	}
	if _, ok := props["elevationData"]; ok {
		t.Error("tile layer should not carry elevationData")
	}
}

func TestTileTemplate(t *testing.T) {
	tpl := TileTemplate("tiles/greys-{z}-{x}-{y}.png")
	if got := tpl.Resolve(3, 1, 2); got != "tiles/greys-3-1-2.png" {
		t.Errorf("unexpected resolve %s", got)
	}
	if err := TileTemplate("tiles/{z}/{x}.png").Validate(); !errors.Is(err, ErrBadTemplate) {
		t.Errorf("expected ErrBadTemplate, got %v", err)
	}
}

func TestNewComposerRejectsBadInput(t *testing.T) {
	src := DefaultSources()
	src.Haze = "tiles/haze.png"
	if _, err := NewComposer(src, ""); err == nil {
		t.Error("expected error for bad template")
	}
	if _, err := NewComposer(DefaultSources(), "not-a-color"); err == nil {
		t.Error("expected error for bad specular color")
	}
}

func TestLightingJSON(t *testing.T) {
	l := LightingFor(mgl64.Vec3{1, 2, -1}, mgl64.Vec3{3, -9, -1}, DefaultLightingStyle())
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Type        string `json:"type"`
		Directional []struct {
			Direction []float64 `json:"direction"`
		} `json:"directionalLights"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Type != "LightingEffect" {
		t.Errorf("unexpected type %s", out.Type)
	}
	if len(out.Directional) != 2 {
		t.Fatalf("expected 2 directional lights, got %d", len(out.Directional))
	}
	if d := out.Directional[0].Direction; len(d) != 3 || d[0] != 1 || d[2] != -1 {
		t.Errorf("unexpected primary direction %v", d)
	}
}
