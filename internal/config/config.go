package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/skyglow/internal/anim"
	"github.com/san-kum/skyglow/internal/scene"
	"github.com/san-kum/skyglow/internal/view"
	"gopkg.in/yaml.v3"
)

const (
	VariantCamera = "camera"
	VariantLight  = "light"

	FrameSourceClient = "client"
	FrameSourceTicker = "ticker"
)

const (
	DefaultAddr         = ":8080"
	DefaultFPS          = 60
	DefaultWriteTimeout = 2 * time.Second
	DefaultStartDelay   = time.Second
)

type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Server    ServerConfig    `yaml:"server"`
	Scene     SceneConfig     `yaml:"scene"`
	View      ViewConfig      `yaml:"view"`
	Animation AnimationConfig `yaml:"animation"`
	Lighting  LightingConfig  `yaml:"lighting"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	StaticDir    string        `yaml:"static_dir"`
	FrameSource  string        `yaml:"frame_source"`
	FPS          int           `yaml:"fps"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type SceneConfig struct {
	Mode     string        `yaml:"mode"`
	Sources  scene.Sources `yaml:"sources"`
	Specular string        `yaml:"specular"`
}

// ViewConfig is the initial camera pose. With FromClient set the pose is
// left empty until the rendering engine reports one.
type ViewConfig struct {
	Longitude  float64 `yaml:"longitude"`
	Latitude   float64 `yaml:"latitude"`
	Zoom       float64 `yaml:"zoom"`
	Pitch      float64 `yaml:"pitch"`
	Bearing    float64 `yaml:"bearing"`
	MaxZoom    float64 `yaml:"max_zoom"`
	FromClient bool    `yaml:"from_client"`
}

type AnimationConfig struct {
	Variant           string        `yaml:"variant"`
	Enabled           bool          `yaml:"enabled"`
	FullLoopDuration  int           `yaml:"full_loop_duration"`
	TickSize          time.Duration `yaml:"tick_size"`
	BearingAmplitude  float64       `yaml:"bearing_amplitude"`
	PitchAmplitude    float64       `yaml:"pitch_amplitude"`
	LightAmplitude    float64       `yaml:"light_amplitude"`
	StartDelay        time.Duration `yaml:"start_delay"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	BootstrapAttempts int           `yaml:"bootstrap_attempts"`
}

type LightingConfig struct {
	Primary            [3]float64 `yaml:"primary"`
	Secondary          [3]float64 `yaml:"secondary"`
	AmbientIntensity   float64    `yaml:"ambient_intensity"`
	PrimaryIntensity   float64    `yaml:"primary_intensity"`
	SecondaryIntensity float64    `yaml:"secondary_intensity"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

func DefaultConfig() *Config {
	style := scene.DefaultLightingStyle()
	return &Config{
		DataDir: ".skyglow",
		Server: ServerConfig{
			Addr:         DefaultAddr,
			StaticDir:    "public",
			FrameSource:  FrameSourceClient,
			FPS:          DefaultFPS,
			WriteTimeout: DefaultWriteTimeout,
		},
		Scene: SceneConfig{
			Mode:     string(scene.DefaultMode),
			Sources:  scene.DefaultSources(),
			Specular: scene.DefaultSpecular,
		},
		View: ViewConfig{
			Longitude: -122.4,
			Latitude:  37.7,
			Zoom:      6,
			Pitch:     50,
			Bearing:   0,
			MaxZoom:   10,
		},
		Animation: AnimationConfig{
			Variant:          VariantCamera,
			Enabled:          true,
			FullLoopDuration: anim.DefaultFullLoopDuration,
			TickSize:         anim.DefaultTickSize,
			BearingAmplitude: anim.DefaultBearingAmplitude,
			PitchAmplitude:   anim.DefaultPitchAmplitude,
			LightAmplitude:   anim.DefaultLightAmplitude,
			StartDelay:       DefaultStartDelay,
			RetryDelay:       anim.DefaultRetryDelay,
		},
		Lighting: LightingConfig{
			Primary:            [3]float64{0, 3, -1},
			Secondary:          [3]float64{3, -9, -1},
			AmbientIntensity:   style.AmbientIntensity,
			PrimaryIntensity:   style.PrimaryIntensity,
			SecondaryIntensity: style.SecondaryIntensity,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := scene.ParseMode(c.Scene.Mode); err != nil {
		return err
	}
	if err := c.Scene.Sources.Validate(); err != nil {
		return err
	}
	switch c.Animation.Variant {
	case VariantCamera, VariantLight:
	default:
		return fmt.Errorf("config: unknown animation variant %q", c.Animation.Variant)
	}
	switch c.Server.FrameSource {
	case FrameSourceClient, FrameSourceTicker:
	default:
		return fmt.Errorf("config: unknown frame source %q", c.Server.FrameSource)
	}
	if c.Animation.StartDelay < 0 {
		return fmt.Errorf("config: start delay must not be negative, got %s", c.Animation.StartDelay)
	}
	return c.AnimConfig().Validate()
}

func (c *Config) AnimConfig() anim.Config {
	a := c.Animation
	return anim.Config{
		FullLoopDuration:  a.FullLoopDuration,
		TickSize:          a.TickSize,
		BearingAmplitude:  a.BearingAmplitude,
		PitchAmplitude:    a.PitchAmplitude,
		LightAmplitude:    a.LightAmplitude,
		RetryDelay:        a.RetryDelay,
		BootstrapAttempts: a.BootstrapAttempts,
	}
}

func (c *Config) ViewState() view.ViewState {
	v := c.View
	return view.ViewState{
		Longitude: v.Longitude,
		Latitude:  v.Latitude,
		Zoom:      v.Zoom,
		Pitch:     v.Pitch,
		Bearing:   v.Bearing,
		MaxZoom:   v.MaxZoom,
	}
}

func (c *Config) Lights() view.Lights {
	return view.Lights{
		Primary:   mgl64.Vec3(c.Lighting.Primary),
		Secondary: mgl64.Vec3(c.Lighting.Secondary),
	}
}

func (c *Config) LightingStyle() scene.LightingStyle {
	return scene.LightingStyle{
		AmbientIntensity:   c.Lighting.AmbientIntensity,
		PrimaryIntensity:   c.Lighting.PrimaryIntensity,
		SecondaryIntensity: c.Lighting.SecondaryIntensity,
	}
}
