package shader

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistort_IdentityWhenZero(t *testing.T) {
	for _, p := range [][2]float64{{0, 0}, {1, 0}, {0.3, -2}, {-4, 4}, {0.001, 0.002}} {
		x, y, z := Distort(p[0], p[1], 0, 0)
		assert.InDelta(t, p[0], x, 1e-9)
		assert.InDelta(t, p[1], y, 1e-9)
		assert.Zero(t, z)
	}
}

func TestDistort_Scenario(t *testing.T) {
	x, y, z := Distort(1, 0, 0, 0.05)
	assert.InDelta(t, 1.05, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.Zero(t, z)
}

func TestDistort_RadiallySymmetric(t *testing.T) {
	rotate := func(x, y, a float64) (float64, float64) {
		return x*math.Cos(a) - y*math.Sin(a), x*math.Sin(a) + y*math.Cos(a)
	}
	for _, k := range []float64{-0.1, -0.03, 0.05, 0.1} {
		for _, angle := range []float64{0.1, 1, 2.5, -1.7} {
			px, py := 1.3, -0.4

			rx, ry := rotate(px, py, angle)
			ax, ay, _ := Distort(rx, ry, 0, k)

			dx, dy, _ := Distort(px, py, 0, k)
			bx, by := rotate(dx, dy, angle)

			assert.InDelta(t, bx, ax, 1e-9)
			assert.InDelta(t, by, ay, 1e-9)
		}
	}
}

func TestDistort_Direction(t *testing.T) {
	out, _, _ := Distort(2, 0, 0, 0.1)
	in, _, _ := Distort(2, 0, 0, -0.1)
	assert.Greater(t, out, 2.0)
	assert.Less(t, in, 2.0)
}

func TestBandIndex_Monotonic(t *testing.T) {
	prev := BandIndex(0)
	for b := 0.0; b <= 1.2; b += 0.001 {
		cur := BandIndex(b)
		assert.GreaterOrEqual(t, cur, prev, "b=%v", b)
		prev = cur
	}
	assert.Equal(t, 0, BandIndex(0.19))
	assert.Equal(t, 1, BandIndex(0.2))
	assert.Equal(t, 4, BandIndex(0.8))
	assert.Equal(t, 4, BandIndex(1.02))
}

func TestGlyphAndBand_Scenario(t *testing.T) {
	assert.Equal(t, 40, GlyphIndex(0.45, 91))
	assert.Equal(t, 2, BandIndex(0.45))
	assert.Equal(t, 90, GlyphIndex(1.0, 91))
}

func TestGlyphUV(t *testing.T) {
	u, v := GlyphUV(0.5, 0.25, 40, 91)
	assert.InDelta(t, 40.5/91, u, 1e-12)
	assert.InDelta(t, 0.25, v, 1e-12)
}

func TestBrightness(t *testing.T) {
	assert.InDelta(t, 0.0, Brightness(0, 0), 1e-12)
	assert.InDelta(t, 1.02, Brightness(1, 1), 1e-12)
	assert.InDelta(t, math.Pow(0.5, 0.9)+0.001, Brightness(0.5, 0.05), 1e-12)
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette([]string{"#8C1EFF", "#F222FF", "#FF2975", "#FF901F", "#FFD319"})
	require.NoError(t, err)
	assert.Equal(t, "#8c1eff", p[0].Hex())
	assert.Equal(t, p[2], p.Band(0.45))
	assert.Len(t, p.Uniforms(), PaletteSize)
	assert.InDelta(t, 1.0, p.Vec3(4)[0], 1e-6)

	_, err = ParsePalette([]string{"#fff"})
	assert.Error(t, err)
	_, err = ParsePalette([]string{"#8C1EFF", "nope", "#FF2975", "#FF901F", "#FFD319"})
	assert.Error(t, err)
}

func TestVertexGraph_MatchesReference(t *testing.T) {
	g := Vertex()
	require.Equal(t, Vec3, g.Position.Type())

	for _, k := range []float64{-0.1, 0, 0.05} {
		for _, p := range [][2]float64{{1, 0}, {-2.5, 1.5}, {0.3, -0.7}} {
			local := Vector(0.05, -0.05, 0)
			env := &Env{
				Attributes: map[string]Value{AttrPosition: Vector(p[0], p[1], 0)},
				Uniforms:   map[string]Value{UniformDistortion: Scalar(k)},
				Builtins:   map[string]Value{BuiltinPositionLocal: local},
			}
			got := g.Position.Eval(env)

			dx, dy, _ := Distort(p[0], p[1], 0, k)
			assert.InDelta(t, local.V[0]+dx, got.V[0], 1e-9)
			assert.InDelta(t, local.V[1]+dy, got.V[1], 1e-9)
			assert.InDelta(t, 0, got.V[2], 1e-9)
		}
	}
}

func TestVertexGraph_RigidPerInstance(t *testing.T) {
	g := Vertex()
	env := func(local Value) *Env {
		return &Env{
			Attributes: map[string]Value{AttrPosition: Vector(1.2, 0.8, 0)},
			Uniforms:   map[string]Value{UniformDistortion: Scalar(0.08)},
			Builtins:   map[string]Value{BuiltinPositionLocal: local},
		}
	}
	a := g.Position.Eval(env(Vector(-0.05, -0.05, 0)))
	b := g.Position.Eval(env(Vector(0.05, 0.05, 0)))

	// all corners of one billboard move by the same offset
	assert.InDelta(t, 0.1, b.V[0]-a.V[0], 1e-9)
	assert.InDelta(t, 0.1, b.V[1]-a.V[1], 1e-9)
}

// fragmentEnv binds a uniform red source, a striped atlas and the default palette
func fragmentEnv(t *testing.T, red, random float64, uv [2]float64, mode SourceMode) (*Env, Palette) {
	t.Helper()
	p, err := ParsePalette([]string{"#8C1EFF", "#F222FF", "#FF2975", "#FF901F", "#FFD319"})
	require.NoError(t, err)

	source := func(u, v float64) Value { return Vector(red, 0, 0, 1) }
	atlas := func(u, v float64) Value { return Vector(u, u, u, 1) }

	return &Env{
		Attributes: map[string]Value{
			AttrPixelUV: Vector(0.5, 0.5),
			AttrRandom:  Scalar(random),
		},
		Uniforms: p.Uniforms(),
		Builtins: map[string]Value{BuiltinUV: Vector(uv[0], uv[1])},
		Samplers: map[string]Sampler{
			mode.Sampler(): source,
			SamplerAtlas:   atlas,
		},
	}, p
}

func TestFragmentGraph_MatchesReference(t *testing.T) {
	const n = 91
	for _, red := range []float64{0, 0.1, 0.45, 0.7, 0.95, 1} {
		for _, random := range []float64{0, 0.5, 1} {
			env, p := fragmentEnv(t, red, random, [2]float64{0.25, 0.75}, SourceScene)
			g := Fragment(n, SourceScene)

			b := Brightness(red, random)
			assert.InDelta(t, b, g.Brightness.Eval(env).X(), 1e-9)

			index := GlyphIndex(b, n)
			assert.Equal(t, float64(index), g.GlyphIndex.Eval(env).X())

			u, v := GlyphUV(0.25, 0.75, index, n)
			guv := g.GlyphUV.Eval(env)
			assert.InDelta(t, u, guv.V[0], 1e-9)
			assert.InDelta(t, v, guv.V[1], 1e-9)

			band := g.Band.Eval(env)
			want := p.Band(b)
			assert.InDelta(t, want.R, band.V[0], 1e-9)
			assert.InDelta(t, want.G, band.V[1], 1e-9)
			assert.InDelta(t, want.B, band.V[2], 1e-9)

			// output = atlas * band, atlas alpha kept
			color := g.Color.Eval(env)
			assert.Equal(t, 4, color.N)
			assert.InDelta(t, u*want.R, color.V[0], 1e-9)
			assert.InDelta(t, 1, color.V[3], 1e-9)
		}
	}
}

func TestFragmentGraph_SourceModeSelectsSampler(t *testing.T) {
	_, _, scene := Inputs(Fragment(10, SourceScene).Color)
	_, _, image := Inputs(Fragment(10, SourceImage).Color)

	assert.Contains(t, scene, SamplerScene)
	assert.NotContains(t, scene, SamplerImage)
	assert.Contains(t, image, SamplerImage)
	assert.NotContains(t, image, SamplerScene)
}

func TestBuild_GeneratesBothStages(t *testing.T) {
	prog := Build(Vertex(), Fragment(91, SourceScene))

	assert.True(t, strings.HasPrefix(prog.Vertex, "#version 410 core\n"))
	assert.Contains(t, prog.Vertex, "layout (location = 4) in vec3 aPosition;")
	assert.Contains(t, prog.Vertex, "uniform float uBarrelDistortion;")
	assert.Contains(t, prog.Vertex, "flat out vec2 v_aPixelUV;")
	assert.Contains(t, prog.Vertex, "v_aRandom = aRandom;")
	assert.Contains(t, prog.Vertex, "float theta = atan(aPosition.y, aPosition.x);")
	assert.Contains(t, prog.Vertex, "gl_Position = uProjection * uView * vec4(position, 1.0);")

	assert.Contains(t, prog.Fragment, "uniform sampler2D uSceneTexture;")
	assert.Contains(t, prog.Fragment, "uniform sampler2D uAtlas;")
	assert.Contains(t, prog.Fragment, "uniform vec3 uColor4;")
	assert.Contains(t, prog.Fragment, "texture(uSceneTexture, v_aPixelUV).r")
	assert.Contains(t, prog.Fragment, "clamp(floor((brightness * 91.0)), 0.0, 90.0)")
	assert.Contains(t, prog.Fragment, "FragColor = vec4((glyphColor.rgb * bandColor), glyphColor.a);")
	// let bindings are declared once
	assert.Equal(t, 1, strings.Count(prog.Fragment, "float brightness ="))

	assert.ElementsMatch(t, []string{SamplerScene, SamplerAtlas}, prog.Samplers)
	names := make([]string, 0, len(prog.Attributes))
	for _, a := range prog.Attributes {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{AttrVertex, AttrUV, AttrPixelUV, AttrRandom, AttrPosition}, names)
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, "1.0", literal(1))
	assert.Equal(t, "0.02", literal(0.02))
	assert.Equal(t, "-3.0", literal(-3))
}

func TestVec_PanicsOnComponentMismatch(t *testing.T) {
	assert.Panics(t, func() { Vec(Vec3, Const(1), Const(2)) })
}
