package config

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 91, utf8.RuneCountInString(cfg.Atlas.Dictionary))
	assert.Equal(t, 64, cfg.Atlas.CellSize)
	assert.Equal(t, 50, cfg.Scene.Boxes)
	assert.Len(t, cfg.Material.Palette, 5)
	assert.True(t, cfg.Material.UseSceneTexture)
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
layout:
  mode: grid
  rows: 50
  cols: 50
  cell_spacing: 0.1
material:
  barrel_distortion: 0.05
  use_scene_texture: false
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, LayoutGrid, cfg.Layout.Mode)
	assert.Equal(t, 50, cfg.Layout.Rows)
	assert.InDelta(t, 0.05, cfg.Material.BarrelDistortion, 1e-9)
	assert.False(t, cfg.Material.UseSceneTexture)
	// untouched sections keep their defaults
	assert.Equal(t, 64, cfg.Atlas.CellSize)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("material:\n  palette: [\"#fff\"]\n"), 0644))

	cfg, err := LoadConfig(path)
	assert.ErrorContains(t, err, "palette")
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Layout.Seed = 99

	require.NoError(t, SaveConfig(cfg, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dictionary", func(c *Config) { c.Atlas.Dictionary = "" }},
		{"bad layout mode", func(c *Config) { c.Layout.Mode = "spiral" }},
		{"zero rows", func(c *Config) { c.Layout.Rows = 0 }},
		{"distortion too strong", func(c *Config) { c.Material.BarrelDistortion = 0.2 }},
		{"near past far", func(c *Config) { c.Scene.Near = 200 }},
		{"bad preview", func(c *Config) { c.Preview.Mode = "vr" }},
		{"inverted edges", func(c *Config) { c.Scene.MinEdge = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestClampDistortion(t *testing.T) {
	assert.Equal(t, MaxBarrelDistortion, ClampDistortion(0.5))
	assert.Equal(t, MinBarrelDistortion, ClampDistortion(-0.5))
	assert.Equal(t, 0.03, ClampDistortion(0.03))
}
