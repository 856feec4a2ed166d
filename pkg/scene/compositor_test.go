package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asciimosaic/internal/rng"
	"asciimosaic/pkg/config"
)

func newCompositor(t *testing.T) *Compositor {
	t.Helper()
	return New(config.DefaultConfig().Scene, rng.New(11))
}

func TestNew_GeneratesBoxesInRange(t *testing.T) {
	c := newCompositor(t)
	require.Len(t, c.Boxes(), 50)

	for _, b := range c.Boxes() {
		assert.GreaterOrEqual(t, b.Edge, float32(0.5))
		assert.Less(t, b.Edge, float32(0.9))
		for axis := 0; axis < 3; axis++ {
			assert.GreaterOrEqual(t, b.Position[axis], float32(-3))
			assert.Less(t, b.Position[axis], float32(3))
			assert.GreaterOrEqual(t, b.Rotation[axis], float32(0))
			assert.LessOrEqual(t, b.Rotation[axis], float32(math.Pi))
		}
	}
}

func TestNew_SameSeedSameScene(t *testing.T) {
	a := New(config.DefaultConfig().Scene, rng.New(5))
	b := New(config.DefaultConfig().Scene, rng.New(5))
	assert.Equal(t, a.Boxes(), b.Boxes())
}

func TestAdvance_RotationLaw(t *testing.T) {
	c := newCompositor(t)
	positions := make([]mgl32.Vec3, len(c.Boxes()))
	for i, b := range c.Boxes() {
		positions[i] = b.Position
	}

	c.Advance(2.5, 0.016)

	for i, b := range c.Boxes() {
		assert.Equal(t, positions[i], b.Position, "positions never change")
		for axis := 0; axis < 3; axis++ {
			want := math.Sin(float64(positions[i][axis])*2.5) * 0.5
			assert.InDelta(t, want, b.Rotation[axis], 1e-6)
		}
	}
}

func TestAdvance_IgnoresDelta(t *testing.T) {
	a := newCompositor(t)
	b := newCompositor(t)

	a.Advance(1.25, 0.001)
	b.Advance(1.25, 0.5)

	assert.Equal(t, a.Boxes(), b.Boxes())
}

func TestLights(t *testing.T) {
	l := newCompositor(t).Lights()
	assert.InDelta(t, 0.5, l.AmbientIntensity, 1e-6)
	assert.InDelta(t, 1.5, l.LightIntensity, 1e-6)
	assert.InDelta(t, 1, l.LightDirection.Len(), 1e-6)
}

type recordingTarget struct{ calls *[]string }

func (r recordingTarget) Bind()   { *r.calls = append(*r.calls, "bind") }
func (r recordingTarget) Unbind() { *r.calls = append(*r.calls, "unbind") }

type recordingDrawer struct {
	calls *[]string
	boxes int
}

func (r *recordingDrawer) Draw(view, projection mgl32.Mat4, boxes []Box, lights Lighting) {
	*r.calls = append(*r.calls, "draw")
	r.boxes = len(boxes)
}

func TestRenderInto_BindsAroundDraw(t *testing.T) {
	var calls []string
	c := newCompositor(t)
	d := &recordingDrawer{calls: &calls}

	c.RenderInto(recordingTarget{&calls}, d)

	assert.Equal(t, []string{"bind", "draw", "unbind"}, calls)
	assert.Equal(t, 50, d.boxes)
}

func TestBox_Model(t *testing.T) {
	b := Box{Edge: 2, Position: mgl32.Vec3{1, 2, 3}}
	m := b.Model()
	p := m.Mul4x1(mgl32.Vec4{0.5, 0, 0, 1})
	assert.InDelta(t, 2, p.X(), 1e-6)
	assert.InDelta(t, 2, p.Y(), 1e-6)
	assert.InDelta(t, 3, p.Z(), 1e-6)
}

func TestCamera(t *testing.T) {
	cam := NewCamera(config.DefaultConfig().Scene)
	cam.SetAspect(1600, 900)
	assert.InDelta(t, 16.0/9.0, cam.Aspect(), 1e-6)

	cam.SetAspect(0, 10)
	assert.InDelta(t, 16.0/9.0, cam.Aspect(), 1e-6, "invalid sizes are ignored")

	// origin lands in the middle of the screen
	clip := cam.Projection().Mul4(cam.View()).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-6)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-6)

	w, h := cam.VisibleExtent(5)
	assert.InDelta(t, 2*5*math.Tan(75*math.Pi/360), h, 1e-4)
	assert.InDelta(t, h*16/9, w, 1e-4)

	// a point on the top edge of the extent projects to y = 1
	top := cam.Projection().Mul4(cam.View()).Mul4x1(mgl32.Vec4{0, float32(h / 2), 0, 1})
	assert.InDelta(t, 1, top.Y()/top.W(), 1e-4)
}
