package engine

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"asciimosaic/pkg/config"
	"asciimosaic/pkg/shader"
)

// Texture units used by the mosaic program
const (
	atlasUnit  = 0
	sourceUnit = 1
)

// ErrNoMaterial is matched by every NoMaterialError
var ErrNoMaterial = errors.New("no material")

// NoMaterialReason says which input was missing
type NoMaterialReason int

const (
	MissingAtlas NoMaterialReason = iota + 1
	MissingSceneTexture
	MissingImageTexture
	InvalidGlyphCount
)

func (r NoMaterialReason) String() string {
	switch r {
	case MissingAtlas:
		return "glyph atlas not ready"
	case MissingSceneTexture:
		return "scene texture not ready"
	case MissingImageTexture:
		return "no static image loaded"
	case InvalidGlyphCount:
		return "glyph count must be positive"
	}
	return fmt.Sprintf("NoMaterialReason(%d)", int(r))
}

// NoMaterialError is returned instead of a material when a required input is
// absent. It is a state, not a failure: the mosaic is skipped for the frame.
type NoMaterialError struct {
	Reason NoMaterialReason
}

func (e *NoMaterialError) Error() string {
	return "no material: " + e.Reason.String()
}

func (e *NoMaterialError) Is(target error) bool {
	return target == ErrNoMaterial
}

// MaterialInputs are everything the mosaic material depends on. A zero
// texture name means the texture is absent.
type MaterialInputs struct {
	Atlas           uint32
	GlyphCount      int
	SceneTexture    uint32
	ImageTexture    uint32
	UseSceneTexture bool
	Distortion      float64
	Palette         shader.Palette
}

// selectSource picks the brightness source, or the reason there is none
func selectSource(in MaterialInputs) (shader.SourceMode, uint32, error) {
	if in.Atlas == 0 {
		return 0, 0, &NoMaterialError{MissingAtlas}
	}
	if in.GlyphCount <= 0 {
		return 0, 0, &NoMaterialError{InvalidGlyphCount}
	}
	if in.UseSceneTexture {
		if in.SceneTexture == 0 {
			return 0, 0, &NoMaterialError{MissingSceneTexture}
		}
		return shader.SourceScene, in.SceneTexture, nil
	}
	if in.ImageTexture == 0 {
		return 0, 0, &NoMaterialError{MissingImageTexture}
	}
	return shader.SourceImage, in.ImageTexture, nil
}

// Material is a compiled mosaic program with its bound inputs
type Material struct {
	program    ShaderProgram
	mode       shader.SourceMode
	glyphs     int
	atlas      uint32
	source     uint32
	distortion float64
	palette    shader.Palette
	bind       func(unit, texture uint32)
}

// BuildMaterial compiles the mosaic program for the inputs. It returns a
// *NoMaterialError when the atlas or the selected source is missing.
func BuildMaterial(in MaterialInputs, compile Compiler) (*Material, error) {
	mode, source, err := selectSource(in)
	if err != nil {
		return nil, err
	}

	prog := shader.Build(shader.Vertex(), shader.Fragment(in.GlyphCount, mode))
	program, err := compile(prog.Vertex, prog.Fragment)
	if err != nil {
		return nil, fmt.Errorf("compile %s mosaic program: %w", mode, err)
	}

	m := &Material{
		program: program,
		mode:    mode,
		glyphs:  in.GlyphCount,
		atlas:   in.Atlas,
		source:  source,
		bind:    bindTexture2D,
	}

	program.Use()
	program.SetInt(shader.SamplerAtlas, atlasUnit)
	program.SetInt(mode.Sampler(), sourceUnit)
	m.distortion = config.ClampDistortion(in.Distortion)
	program.SetFloat(shader.UniformDistortion, float32(m.distortion))
	m.palette = in.Palette
	m.pushPalette()

	return m, nil
}

// Mode returns the source the material samples
func (m *Material) Mode() shader.SourceMode {
	return m.mode
}

// Distortion returns the current barrel coefficient
func (m *Material) Distortion() float64 {
	return m.distortion
}

// SetDistortion updates the barrel coefficient in place
func (m *Material) SetDistortion(k float64) {
	k = config.ClampDistortion(k)
	if k == m.distortion {
		return
	}
	m.distortion = k
	m.program.Use()
	m.program.SetFloat(shader.UniformDistortion, float32(k))
}

// SetPalette updates the band colors in place
func (m *Material) SetPalette(p shader.Palette) {
	if p == m.palette {
		return
	}
	m.palette = p
	m.program.Use()
	m.pushPalette()
}

func (m *Material) pushPalette() {
	for i := 0; i < shader.PaletteSize; i++ {
		m.program.SetVec3(shader.ColorUniform(i), m.palette.Vec3(i))
	}
}

// setTextures rebinds texture names without recompiling
func (m *Material) setTextures(atlas, source uint32) {
	m.atlas = atlas
	m.source = source
}

// Bind activates the program for a draw through the given camera
func (m *Material) Bind(view, projection mgl32.Mat4) {
	m.program.Use()
	m.program.SetMat4(shader.UniformView, view)
	m.program.SetMat4(shader.UniformProjection, projection)
	m.bind(atlasUnit, m.atlas)
	m.bind(sourceUnit, m.source)
}

// Delete releases the program
func (m *Material) Delete() {
	m.program.Delete()
}

func bindTexture2D(unit, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, texture)
}

// MaterialCache keeps the current material and rebuilds it only when the
// program has to change: a new source mode or glyph count. Texture and
// uniform changes are applied to the live material.
type MaterialCache struct {
	compile Compiler
	current *Material
}

// NewMaterialCache creates an empty cache
func NewMaterialCache(compile Compiler) *MaterialCache {
	return &MaterialCache{compile: compile}
}

// Resolve returns the material for the inputs, or a *NoMaterialError
func (c *MaterialCache) Resolve(in MaterialInputs) (*Material, error) {
	mode, source, err := selectSource(in)
	if err != nil {
		c.Close()
		return nil, err
	}

	if m := c.current; m != nil && m.mode == mode && m.glyphs == in.GlyphCount {
		m.setTextures(in.Atlas, source)
		m.SetDistortion(in.Distortion)
		m.SetPalette(in.Palette)
		return m, nil
	}

	m, err := BuildMaterial(in, c.compile)
	if err != nil {
		return nil, err
	}
	c.Close()
	c.current = m
	return m, nil
}

// Close releases the current material
func (c *MaterialCache) Close() {
	if c.current != nil {
		c.current.Delete()
		c.current = nil
	}
}
