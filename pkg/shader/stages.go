package shader

import (
	"fmt"
	"sort"
	"strings"
)

// Vertex attribute names and their fixed locations
const (
	AttrVertex   = "aVertex"   // billboard-local position
	AttrUV       = "aUv"       // billboard-local texture coordinate
	AttrPixelUV  = "aPixelUV"  // per instance: source texel
	AttrRandom   = "aRandom"   // per instance: brightness dither
	AttrPosition = "aPosition" // per instance: undistorted billboard center
)

// AttributeLocations binds attribute names to layout locations
var AttributeLocations = map[string]uint32{
	AttrVertex:   0,
	AttrUV:       1,
	AttrPixelUV:  2,
	AttrRandom:   3,
	AttrPosition: 4,
}

// Uniform and sampler names
const (
	UniformDistortion = "uBarrelDistortion"
	UniformView       = "uView"
	UniformProjection = "uProjection"
	SamplerScene      = "uSceneTexture"
	SamplerImage      = "uImageTexture"
	SamplerAtlas      = "uAtlas"
)

// ColorUniform returns the uniform holding palette entry i
func ColorUniform(i int) string {
	return fmt.Sprintf("uColor%d", i)
}

// Brightness constants of the fragment stage
const (
	BrightnessGamma = 0.9
	JitterScale     = 0.02
)

// BandThresholds are the brightness cut points between palette entries
var BandThresholds = [4]float64{0.2, 0.4, 0.6, 0.8}

// SourceMode selects the texture the fragment stage reads brightness from
type SourceMode int

const (
	SourceScene SourceMode = iota
	SourceImage
)

func (m SourceMode) String() string {
	if m == SourceImage {
		return "image"
	}
	return "scene"
}

// Sampler returns the sampler uniform bound for the mode
func (m SourceMode) Sampler() string {
	if m == SourceImage {
		return SamplerImage
	}
	return SamplerScene
}

// VertexGraph computes the billboard vertex position before the view transform
type VertexGraph struct {
	Position Expr
}

// Vertex returns the radial distortion graph:
// offset = r(1 + k r^2) (cos θ, sin θ, 0), position = local + offset.
// It only reads the instance attribute, so billboards move rigidly.
func Vertex() VertexGraph {
	p := Attribute(AttrPosition, Vec3)
	k := Uniform(UniformDistortion, Float)

	theta := Let("theta", Atan(Swizzle(p, "y"), Swizzle(p, "x")))
	radius := Let("baseRadius", Length(p))
	factor := Add(Const(1), Mul(k, Mul(radius, radius)))
	final := Let("finalRadius", Mul(radius, factor))

	offset := Vec(Vec3, Mul(final, Cos(theta)), Mul(final, Sin(theta)), Const(0))
	return VertexGraph{Position: Add(PositionLocal(), offset)}
}

// FragmentGraph exposes the intermediate values of the fragment stage so they
// can be evaluated on their own
type FragmentGraph struct {
	Mode       SourceMode
	GlyphCount int
	Brightness Expr // float
	GlyphIndex Expr // float, clamped to [0, N-1]
	GlyphUV    Expr // vec2 into the atlas
	Band       Expr // vec3 palette color
	Color      Expr // vec4 output
}

// Fragment returns the brightness banding and glyph lookup graph for n glyphs
func Fragment(n int, mode SourceMode) FragmentGraph {
	count := Const(float64(n))

	source := Texture(mode.Sampler(), Attribute(AttrPixelUV, Vec2))
	jitter := Mul(Attribute(AttrRandom, Float), Const(JitterScale))
	brightness := Let("brightness", Add(Pow(Swizzle(source, "r"), Const(BrightnessGamma)), jitter))

	index := Let("glyphIndex", Clamp(Floor(Mul(brightness, count)), Const(0), Const(float64(n-1))))
	uv := UV()
	glyphUV := Let("glyphUv", Vec(Vec2,
		Add(Div(Swizzle(uv, "x"), count), Div(index, count)),
		Swizzle(uv, "y"),
	))

	glyph := Let("glyphColor", Texture(SamplerAtlas, glyphUV))

	var band Expr = Uniform(ColorUniform(0), Vec3)
	for i, edge := range BandThresholds {
		band = Mix(band, Uniform(ColorUniform(i+1), Vec3), Step(Const(edge), brightness))
	}
	band = Let("bandColor", band)

	color := Vec(Vec4, Mul(Swizzle(glyph, "rgb"), band), Swizzle(glyph, "a"))

	return FragmentGraph{
		Mode:       mode,
		GlyphCount: n,
		Brightness: brightness,
		GlyphIndex: index,
		GlyphUV:    glyphUV,
		Band:       band,
		Color:      color,
	}
}

// Program is generated GLSL 4.10 source for both stages
type Program struct {
	Vertex     string
	Fragment   string
	Attributes []Input
	Uniforms   []Input
	Samplers   []string
}

// Build assembles the vertex and fragment programs. Attributes read by the
// fragment graph are forwarded as flat varyings.
func Build(v VertexGraph, f FragmentGraph) Program {
	vAttrs, vUniforms, _ := Inputs(v.Position)
	fAttrs, fUniforms, samplers := Inputs(f.Color)

	attrs := mergeInputs([]Input{{AttrVertex, Vec3}, {AttrUV, Vec2}}, vAttrs, fAttrs)
	sort.SliceStable(attrs, func(i, j int) bool {
		return AttributeLocations[attrs[i].Name] < AttributeLocations[attrs[j].Name]
	})

	var vs strings.Builder
	vs.WriteString("#version 410 core\n")
	for _, a := range attrs {
		fmt.Fprintf(&vs, "layout (location = %d) in %s %s;\n", AttributeLocations[a.Name], a.Type, a.Name)
	}
	vs.WriteString("\n")
	fmt.Fprintf(&vs, "uniform mat4 %s;\nuniform mat4 %s;\n", UniformView, UniformProjection)
	for _, u := range vUniforms {
		fmt.Fprintf(&vs, "uniform %s %s;\n", u.Type, u.Name)
	}
	vs.WriteString("\nout vec2 vUv;\n")
	for _, a := range fAttrs {
		fmt.Fprintf(&vs, "flat out %s %s;\n", a.Type, VaryingName(a.Name))
	}
	vs.WriteString("\nvoid main() {\n")
	decls, pos := GLSL(v.Position, VertexStage)
	for _, d := range decls {
		fmt.Fprintf(&vs, "    %s\n", d)
	}
	fmt.Fprintf(&vs, "    vec3 position = %s;\n", pos)
	fmt.Fprintf(&vs, "    vUv = %s;\n", AttrUV)
	for _, a := range fAttrs {
		fmt.Fprintf(&vs, "    %s = %s;\n", VaryingName(a.Name), a.Name)
	}
	fmt.Fprintf(&vs, "    gl_Position = %s * %s * vec4(position, 1.0);\n}\n", UniformProjection, UniformView)

	var fs strings.Builder
	fs.WriteString("#version 410 core\n")
	fs.WriteString("in vec2 vUv;\n")
	for _, a := range fAttrs {
		fmt.Fprintf(&fs, "flat in %s %s;\n", a.Type, VaryingName(a.Name))
	}
	fs.WriteString("\n")
	for _, s := range samplers {
		fmt.Fprintf(&fs, "uniform sampler2D %s;\n", s)
	}
	for _, u := range fUniforms {
		fmt.Fprintf(&fs, "uniform %s %s;\n", u.Type, u.Name)
	}
	fs.WriteString("\nout vec4 FragColor;\n\nvoid main() {\n")
	decls, color := GLSL(f.Color, FragmentStage)
	for _, d := range decls {
		fmt.Fprintf(&fs, "    %s\n", d)
	}
	fmt.Fprintf(&fs, "    FragColor = %s;\n}\n", color)

	return Program{
		Vertex:     vs.String(),
		Fragment:   fs.String(),
		Attributes: attrs,
		Uniforms:   mergeInputs(vUniforms, fUniforms),
		Samplers:   samplers,
	}
}

func mergeInputs(lists ...[]Input) []Input {
	var out []Input
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, in := range l {
			if !seen[in.Name] {
				seen[in.Name] = true
				out = append(out, in)
			}
		}
	}
	return out
}
