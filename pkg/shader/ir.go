package shader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the GLSL type of an expression
type Type int

const (
	Float Type = iota + 1
	Vec2
	Vec3
	Vec4
)

// Size returns the component count
func (t Type) Size() int {
	return int(t)
}

func (t Type) String() string {
	switch t {
	case Float:
		return "float"
	case Vec2:
		return "vec2"
	case Vec3:
		return "vec3"
	case Vec4:
		return "vec4"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func typeOfSize(n int) Type {
	if n < 1 || n > 4 {
		panic(fmt.Sprintf("shader: no type with %d components", n))
	}
	return Type(n)
}

// Stage selects which program an expression is emitted into
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

// Value is a float or vector evaluated on the CPU
type Value struct {
	N int
	V [4]float64
}

// Scalar wraps a float
func Scalar(f float64) Value {
	return Value{N: 1, V: [4]float64{f}}
}

// Vector builds a value from 1..4 components
func Vector(c ...float64) Value {
	v := Value{N: len(c)}
	copy(v.V[:], c)
	return v
}

// X returns the first component
func (v Value) X() float64 { return v.V[0] }

// at returns component i, broadcasting scalars
func (v Value) at(i int) float64 {
	if v.N == 1 {
		return v.V[0]
	}
	return v.V[i]
}

// Sampler reads a texture at normalized coordinates
type Sampler func(u, v float64) Value

// Env supplies inputs for CPU evaluation
type Env struct {
	Attributes map[string]Value
	Uniforms   map[string]Value
	Builtins   map[string]Value
	Samplers   map[string]Sampler
}

func (e *Env) lookup(kind inputKind, name string) Value {
	var m map[string]Value
	switch kind {
	case attributeInput:
		m = e.Attributes
	case uniformInput:
		m = e.Uniforms
	default:
		m = e.Builtins
	}
	v, ok := m[name]
	if !ok {
		panic(fmt.Sprintf("shader: %s %q not bound", kind, name))
	}
	return v
}

// Expr is a node of a shader expression graph. It can be emitted as GLSL or
// evaluated on the CPU against an Env.
type Expr interface {
	Type() Type
	Eval(env *Env) Value
	emit(e *emitter) string
	children() []Expr
}

// emitter collects let bindings while a graph is turned into GLSL
type emitter struct {
	stage Stage
	lets  []string
	seen  map[string]bool
}

func newEmitter(stage Stage) *emitter {
	return &emitter{stage: stage, seen: make(map[string]bool)}
}

// GLSL returns the expression text for a stage, with let bindings inlined as
// declarations before it
func GLSL(x Expr, stage Stage) (decls []string, expr string) {
	e := newEmitter(stage)
	expr = x.emit(e)
	return e.lets, expr
}

// Walk visits x and all its descendants depth first
func Walk(x Expr, fn func(Expr)) {
	fn(x)
	for _, c := range x.children() {
		Walk(c, fn)
	}
}

// constants

type constNode struct{ v Value }

// Const is a float literal
func Const(f float64) Expr { return constNode{Scalar(f)} }

func (c constNode) Type() Type       { return typeOfSize(c.v.N) }
func (c constNode) Eval(*Env) Value  { return c.v }
func (c constNode) children() []Expr { return nil }
func (c constNode) emit(*emitter) string {
	if c.v.N == 1 {
		return literal(c.v.V[0])
	}
	parts := make([]string, c.v.N)
	for i := range parts {
		parts[i] = literal(c.v.V[i])
	}
	return fmt.Sprintf("%s(%s)", c.Type(), strings.Join(parts, ", "))
}

func literal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// inputs

type inputKind int

const (
	attributeInput inputKind = iota
	uniformInput
	builtinInput
)

func (k inputKind) String() string {
	switch k {
	case attributeInput:
		return "attribute"
	case uniformInput:
		return "uniform"
	}
	return "builtin"
}

// Builtin names
const (
	BuiltinUV            = "uv"
	BuiltinPositionLocal = "positionLocal"
)

type inputNode struct {
	kind inputKind
	name string
	typ  Type
}

// Attribute reads a per-instance attribute. In the fragment stage it is read
// through a flat varying written by the vertex stage.
func Attribute(name string, t Type) Expr { return inputNode{attributeInput, name, t} }

// Uniform reads a program uniform
func Uniform(name string, t Type) Expr { return inputNode{uniformInput, name, t} }

// UV is the mesh-local texture coordinate of the current fragment
func UV() Expr { return inputNode{builtinInput, BuiltinUV, Vec2} }

// PositionLocal is the mesh-local vertex position
func PositionLocal() Expr { return inputNode{builtinInput, BuiltinPositionLocal, Vec3} }

func (n inputNode) Type() Type          { return n.typ }
func (n inputNode) Eval(env *Env) Value { return env.lookup(n.kind, n.name) }
func (n inputNode) children() []Expr    { return nil }
func (n inputNode) emit(e *emitter) string {
	switch n.kind {
	case attributeInput:
		if e.stage == FragmentStage {
			return VaryingName(n.name)
		}
		return n.name
	case uniformInput:
		return n.name
	}
	switch n.name {
	case BuiltinUV:
		if e.stage == FragmentStage {
			return "vUv"
		}
		return AttrUV
	case BuiltinPositionLocal:
		return AttrVertex
	}
	panic("shader: unknown builtin " + n.name)
}

// VaryingName is the fragment-side name of a forwarded attribute
func VaryingName(attribute string) string {
	return "v_" + attribute
}

// swizzles

type swizzleNode struct {
	x     Expr
	comps string
}

// Swizzle selects components, e.g. Swizzle(p, "y") or Swizzle(c, "rgb")
func Swizzle(x Expr, comps string) Expr {
	if len(comps) < 1 || len(comps) > 4 {
		panic("shader: bad swizzle " + comps)
	}
	return swizzleNode{x, comps}
}

func (s swizzleNode) Type() Type       { return typeOfSize(len(s.comps)) }
func (s swizzleNode) children() []Expr { return []Expr{s.x} }
func (s swizzleNode) emit(e *emitter) string {
	return fmt.Sprintf("%s.%s", s.x.emit(e), s.comps)
}
func (s swizzleNode) Eval(env *Env) Value {
	in := s.x.Eval(env)
	out := Value{N: len(s.comps)}
	for i, c := range s.comps {
		out.V[i] = in.V[componentIndex(c)]
	}
	return out
}

func componentIndex(c rune) int {
	switch c {
	case 'x', 'r', 's':
		return 0
	case 'y', 'g', 't':
		return 1
	case 'z', 'b', 'p':
		return 2
	case 'w', 'a', 'q':
		return 3
	}
	panic(fmt.Sprintf("shader: bad swizzle component %q", c))
}

// arithmetic

type binaryNode struct {
	op   byte
	a, b Expr
}

func Add(a, b Expr) Expr { return binaryNode{'+', a, b} }
func Sub(a, b Expr) Expr { return binaryNode{'-', a, b} }
func Mul(a, b Expr) Expr { return binaryNode{'*', a, b} }
func Div(a, b Expr) Expr { return binaryNode{'/', a, b} }

func (n binaryNode) Type() Type       { return widest(n.a, n.b) }
func (n binaryNode) children() []Expr { return []Expr{n.a, n.b} }
func (n binaryNode) emit(e *emitter) string {
	return fmt.Sprintf("(%s %c %s)", n.a.emit(e), n.op, n.b.emit(e))
}
func (n binaryNode) Eval(env *Env) Value {
	a, b := n.a.Eval(env), n.b.Eval(env)
	out := Value{N: n.Type().Size()}
	for i := 0; i < out.N; i++ {
		x, y := a.at(i), b.at(i)
		switch n.op {
		case '+':
			out.V[i] = x + y
		case '-':
			out.V[i] = x - y
		case '*':
			out.V[i] = x * y
		case '/':
			out.V[i] = x / y
		}
	}
	return out
}

func widest(xs ...Expr) Type {
	t := Float
	for _, x := range xs {
		if x.Type() > t {
			t = x.Type()
		}
	}
	return t
}

// builtin functions

type callNode struct {
	fn   string
	args []Expr
}

var componentFuncs = map[string]func(a ...float64) float64{
	"pow":   func(a ...float64) float64 { return math.Pow(a[0], a[1]) },
	"floor": func(a ...float64) float64 { return math.Floor(a[0]) },
	"cos":   func(a ...float64) float64 { return math.Cos(a[0]) },
	"sin":   func(a ...float64) float64 { return math.Sin(a[0]) },
	"atan":  func(a ...float64) float64 { return math.Atan2(a[0], a[1]) },
	"min":   func(a ...float64) float64 { return math.Min(a[0], a[1]) },
	"max":   func(a ...float64) float64 { return math.Max(a[0], a[1]) },
	"clamp": func(a ...float64) float64 { return math.Min(math.Max(a[0], a[1]), a[2]) },
	"mix":   func(a ...float64) float64 { return a[0]*(1-a[2]) + a[1]*a[2] },
	"step": func(a ...float64) float64 {
		if a[1] < a[0] {
			return 0
		}
		return 1
	},
}

func call(fn string, args ...Expr) Expr { return callNode{fn, args} }

func Pow(x, y Expr) Expr        { return call("pow", x, y) }
func Floor(x Expr) Expr         { return call("floor", x) }
func Cos(x Expr) Expr           { return call("cos", x) }
func Sin(x Expr) Expr           { return call("sin", x) }
func Atan(y, x Expr) Expr       { return call("atan", y, x) }
func Min(a, b Expr) Expr        { return call("min", a, b) }
func Max(a, b Expr) Expr        { return call("max", a, b) }
func Clamp(x, lo, hi Expr) Expr { return call("clamp", x, lo, hi) }
func Mix(a, b, t Expr) Expr     { return call("mix", a, b, t) }
func Step(edge, x Expr) Expr    { return call("step", edge, x) }
func Length(x Expr) Expr        { return call("length", x) }

func (c callNode) Type() Type {
	if c.fn == "length" {
		return Float
	}
	return widest(c.args...)
}

func (c callNode) children() []Expr { return c.args }

func (c callNode) emit(e *emitter) string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = a.emit(e)
	}
	return fmt.Sprintf("%s(%s)", c.fn, strings.Join(parts, ", "))
}

func (c callNode) Eval(env *Env) Value {
	args := make([]Value, len(c.args))
	for i, a := range c.args {
		args[i] = a.Eval(env)
	}

	if c.fn == "length" {
		sum := 0.0
		for i := 0; i < args[0].N; i++ {
			sum += args[0].V[i] * args[0].V[i]
		}
		return Scalar(math.Sqrt(sum))
	}

	f, ok := componentFuncs[c.fn]
	if !ok {
		panic("shader: unknown function " + c.fn)
	}
	out := Value{N: c.Type().Size()}
	comp := make([]float64, len(args))
	for i := 0; i < out.N; i++ {
		for j, a := range args {
			comp[j] = a.at(i)
		}
		out.V[i] = f(comp...)
	}
	return out
}

// constructors

type constructNode struct {
	typ  Type
	args []Expr
}

// Vec builds a vector of type t from the concatenated components of args
func Vec(t Type, args ...Expr) Expr {
	n := 0
	for _, a := range args {
		n += a.Type().Size()
	}
	if n != t.Size() {
		panic(fmt.Sprintf("shader: %s built from %d components", t, n))
	}
	return constructNode{t, args}
}

func (c constructNode) Type() Type       { return c.typ }
func (c constructNode) children() []Expr { return c.args }
func (c constructNode) emit(e *emitter) string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = a.emit(e)
	}
	return fmt.Sprintf("%s(%s)", c.typ, strings.Join(parts, ", "))
}
func (c constructNode) Eval(env *Env) Value {
	out := Value{N: c.typ.Size()}
	i := 0
	for _, a := range c.args {
		v := a.Eval(env)
		for j := 0; j < v.N; j++ {
			out.V[i] = v.V[j]
			i++
		}
	}
	return out
}

// texture sampling

type sampleNode struct {
	sampler string
	uv      Expr
}

// Texture samples a 2D sampler uniform at uv
func Texture(sampler string, uv Expr) Expr { return sampleNode{sampler, uv} }

func (s sampleNode) Type() Type       { return Vec4 }
func (s sampleNode) children() []Expr { return []Expr{s.uv} }
func (s sampleNode) emit(e *emitter) string {
	return fmt.Sprintf("texture(%s, %s)", s.sampler, s.uv.emit(e))
}
func (s sampleNode) Eval(env *Env) Value {
	uv := s.uv.Eval(env)
	fn, ok := env.Samplers[s.sampler]
	if !ok {
		panic(fmt.Sprintf("shader: sampler %q not bound", s.sampler))
	}
	return fn(uv.V[0], uv.V[1])
}

// SamplerName returns the sampler a Texture node reads, or "" for other nodes
func SamplerName(x Expr) string {
	if s, ok := x.(sampleNode); ok {
		return s.sampler
	}
	return ""
}

// let bindings

type letNode struct {
	name string
	x    Expr
}

// Let names a subexpression so it is computed once in the generated program
func Let(name string, x Expr) Expr { return letNode{name, x} }

func (l letNode) Type() Type          { return l.x.Type() }
func (l letNode) Eval(env *Env) Value { return l.x.Eval(env) }
func (l letNode) children() []Expr    { return []Expr{l.x} }
func (l letNode) emit(e *emitter) string {
	if !e.seen[l.name] {
		body := l.x.emit(e)
		e.seen[l.name] = true
		e.lets = append(e.lets, fmt.Sprintf("%s %s = %s;", l.x.Type(), l.name, body))
	}
	return l.name
}

// inputs of a graph, by kind

// Input describes an attribute or uniform a graph reads
type Input struct {
	Name string
	Type Type
}

// Inputs lists the distinct attributes, uniforms and samplers read by the graphs
func Inputs(graphs ...Expr) (attributes, uniforms []Input, samplers []string) {
	seen := make(map[string]bool)
	for _, g := range graphs {
		Walk(g, func(x Expr) {
			switch n := x.(type) {
			case inputNode:
				if n.kind == builtinInput || seen[n.name] {
					return
				}
				seen[n.name] = true
				if n.kind == attributeInput {
					attributes = append(attributes, Input{n.name, n.typ})
				} else {
					uniforms = append(uniforms, Input{n.name, n.typ})
				}
			case sampleNode:
				if !seen[n.sampler] {
					seen[n.sampler] = true
					samplers = append(samplers, n.sampler)
				}
			}
		})
	}
	return attributes, uniforms, samplers
}
