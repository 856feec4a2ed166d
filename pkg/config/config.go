package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Layout modes
const (
	LayoutGrid    = "grid"
	LayoutScatter = "scatter"
)

// Preview modes
const (
	PreviewWindow   = "window"
	PreviewTerminal = "terminal"
)

// Config represents the main configuration
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Log      LogConfig      `yaml:"log"`
	Atlas    AtlasConfig    `yaml:"atlas"`
	Layout   LayoutConfig   `yaml:"layout"`
	Scene    SceneConfig    `yaml:"scene"`
	Material MaterialConfig `yaml:"material"`
	Preview  PreviewConfig  `yaml:"preview"`
}

// WindowConfig contains window and frame pacing configuration
type WindowConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	VSync     bool   `yaml:"vsync"`
	FrameRate int    `yaml:"framerate"` // 0 disables the frame cap
}

// LogConfig configures the logger
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // optional, mirrors console output
}

// AtlasConfig configures the glyph atlas
type AtlasConfig struct {
	Dictionary string  `yaml:"dictionary"`
	CellSize   int     `yaml:"cell_size"`
	FontSize   float64 `yaml:"font_size"`
	GlowFrom   int     `yaml:"glow_from"` // glyphs with a larger index get the blurred halo
	GlowPasses int     `yaml:"glow_passes"`
}

// LayoutConfig configures the instance layout
type LayoutConfig struct {
	Mode        string  `yaml:"mode"` // grid, scatter
	Rows        int     `yaml:"rows"`
	Cols        int     `yaml:"cols"`
	CellSpacing float64 `yaml:"cell_spacing"`
	GlyphSize   float64 `yaml:"glyph_size"` // billboard edge length; 0 means one layout cell
	Seed        int64   `yaml:"seed"`       // 0 means random
}

// SceneConfig configures the secondary scene and both cameras
type SceneConfig struct {
	Boxes            int       `yaml:"boxes"`
	MinEdge          float64   `yaml:"min_edge"`
	MaxEdge          float64   `yaml:"max_edge"`
	Spread           float64   `yaml:"spread"`
	Speed            float64   `yaml:"speed"`
	FOV              float64   `yaml:"fov"`
	Near             float64   `yaml:"near"`
	Far              float64   `yaml:"far"`
	CameraZ          float64   `yaml:"camera_z"`
	AmbientIntensity float64   `yaml:"ambient_intensity"`
	LightIntensity   float64   `yaml:"light_intensity"`
	LightPosition    []float64 `yaml:"light_position"`
	Seed             int64     `yaml:"seed"` // 0 means random
}

// MaterialConfig configures the ASCII material
type MaterialConfig struct {
	Palette          []string `yaml:"palette"`
	BarrelDistortion float64  `yaml:"barrel_distortion"`
	UseSceneTexture  bool     `yaml:"use_scene_texture"`
	Image            string   `yaml:"image"`         // optional static image path
	DefaultImage     bool     `yaml:"default_image"` // generate a fallback static image
}

// PreviewConfig selects the output sink
type PreviewConfig struct {
	Mode string `yaml:"mode"` // window, terminal
}

// Limits of the runtime-adjustable distortion
const (
	MinBarrelDistortion  = -0.1
	MaxBarrelDistortion  = 0.1
	BarrelDistortionStep = 0.01
)

// DefaultDictionary is the glyph set ordered from sparse to dense
const DefaultDictionary = "`.-':_,^=;><+!rc*/z?sLTv)J7(|Fi{C}fI31tlu[neoZ5Yxjya]2ESwqkP6h9d4VpOGbUAKXHm8RD#$Bg0MNWQ%&@"

// DefaultPalette is the synthwave palette, darkest band first
var DefaultPalette = []string{"#8C1EFF", "#F222FF", "#FF2975", "#FF901F", "#FFD319"}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "asciimosaic",
			VSync:     true,
			FrameRate: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
		Atlas: AtlasConfig{
			Dictionary: DefaultDictionary,
			CellSize:   64,
			FontSize:   40,
			GlowFrom:   50,
			GlowPasses: 6,
		},
		Layout: LayoutConfig{
			Mode:        LayoutScatter,
			Rows:        80,
			Cols:        140,
			CellSpacing: 0.1,
			Seed:        0,
		},
		Scene: SceneConfig{
			Boxes:            50,
			MinEdge:          0.5,
			MaxEdge:          0.9,
			Spread:           3,
			Speed:            0.5,
			FOV:              75,
			Near:             0.1,
			Far:              100,
			CameraZ:          5,
			AmbientIntensity: 0.5,
			LightIntensity:   1.5,
			LightPosition:    []float64{1, 1, 0.866},
			Seed:             0,
		},
		Material: MaterialConfig{
			Palette:          append([]string(nil), DefaultPalette...),
			BarrelDistortion: 0,
			UseSceneTexture:  true,
			DefaultImage:     true,
		},
		Preview: PreviewConfig{
			Mode: PreviewWindow,
		},
	}
}

// LoadConfig loads the configuration from a file.
// The defaults are returned alongside any error so callers may continue with them.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("error parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate checks the static configuration for values the pipeline cannot work with
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Atlas.Dictionary == "" {
		return fmt.Errorf("atlas dictionary is empty")
	}
	if c.Atlas.CellSize <= 0 || c.Atlas.FontSize <= 0 {
		return fmt.Errorf("invalid atlas cell size %d / font size %v", c.Atlas.CellSize, c.Atlas.FontSize)
	}
	if c.Atlas.GlowPasses < 0 {
		return fmt.Errorf("invalid glow pass count %d", c.Atlas.GlowPasses)
	}
	switch c.Layout.Mode {
	case LayoutGrid, LayoutScatter:
	default:
		return fmt.Errorf("unknown layout mode %q", c.Layout.Mode)
	}
	if c.Layout.Rows <= 0 || c.Layout.Cols <= 0 {
		return fmt.Errorf("invalid layout dimensions %dx%d", c.Layout.Rows, c.Layout.Cols)
	}
	if c.Layout.Mode == LayoutGrid && c.Layout.CellSpacing <= 0 {
		return fmt.Errorf("grid layout needs a positive cell spacing")
	}
	if c.Scene.Boxes < 0 || c.Scene.MinEdge > c.Scene.MaxEdge {
		return fmt.Errorf("invalid scene box settings")
	}
	if len(c.Scene.LightPosition) != 3 {
		return fmt.Errorf("light position needs 3 components, got %d", len(c.Scene.LightPosition))
	}
	if c.Scene.FOV <= 0 || c.Scene.FOV >= 180 || c.Scene.Near <= 0 || c.Scene.Far <= c.Scene.Near {
		return fmt.Errorf("invalid camera settings fov=%v near=%v far=%v", c.Scene.FOV, c.Scene.Near, c.Scene.Far)
	}
	if len(c.Material.Palette) != 5 {
		return fmt.Errorf("palette needs exactly 5 colors, got %d", len(c.Material.Palette))
	}
	if c.Material.BarrelDistortion < MinBarrelDistortion || c.Material.BarrelDistortion > MaxBarrelDistortion {
		return fmt.Errorf("barrel distortion %v outside [%v, %v]",
			c.Material.BarrelDistortion, MinBarrelDistortion, MaxBarrelDistortion)
	}
	switch c.Preview.Mode {
	case PreviewWindow, PreviewTerminal:
	default:
		return fmt.Errorf("unknown preview mode %q", c.Preview.Mode)
	}
	return nil
}

// ClampDistortion keeps a runtime distortion value inside the supported range
func ClampDistortion(k float64) float64 {
	if k < MinBarrelDistortion {
		return MinBarrelDistortion
	}
	if k > MaxBarrelDistortion {
		return MaxBarrelDistortion
	}
	return k
}
