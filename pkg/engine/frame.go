package engine

import (
	"errors"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"

	"asciimosaic/internal/logger"
	"asciimosaic/pkg/scene"
)

// Animator advances the secondary scene state
type Animator interface {
	Advance(elapsed, delta float64)
}

// ScenePass renders the secondary scene into the off-screen target
type ScenePass interface {
	RenderScene()
}

// MosaicPass draws the glyph mosaic to the visible framebuffer. It returns
// a *NoMaterialError when the mosaic cannot be drawn this frame.
type MosaicPass interface {
	RenderMosaic() error
}

// Clock measures time since start and since the previous tick
type Clock struct {
	now   func() time.Time
	start time.Time
	last  time.Time
}

// NewClock starts a clock at the current time
func NewClock() *Clock {
	return newClock(time.Now)
}

func newClock(now func() time.Time) *Clock {
	t := now()
	return &Clock{now: now, start: t, last: t}
}

// Tick returns seconds elapsed since start and since the previous tick
func (c *Clock) Tick() (elapsed, delta float64) {
	t := c.now()
	elapsed = t.Sub(c.start).Seconds()
	delta = t.Sub(c.last).Seconds()
	c.last = t
	return elapsed, delta
}

// FrameOrchestrator runs one displayed frame: animate, render the scene
// off-screen, then draw the mosaic that samples it. The order is fixed
// because the mosaic reads the target written in the same frame.
type FrameOrchestrator struct {
	animator Animator
	scene    ScenePass
	mosaic   MosaicPass
	log      *logger.Logger

	lastReason NoMaterialReason
}

// NewFrameOrchestrator wires the three steps
func NewFrameOrchestrator(animator Animator, scenePass ScenePass, mosaic MosaicPass, log *logger.Logger) *FrameOrchestrator {
	return &FrameOrchestrator{animator: animator, scene: scenePass, mosaic: mosaic, log: log}
}

// Frame runs the three steps for the given clock readings. A missing
// material is logged once per change and is not an error.
func (f *FrameOrchestrator) Frame(elapsed, delta float64) error {
	f.animator.Advance(elapsed, delta)
	f.scene.RenderScene()

	err := f.mosaic.RenderMosaic()

	var noMaterial *NoMaterialError
	switch {
	case err == nil:
		if f.lastReason != 0 {
			f.log.Info("Mosaic material ready")
			f.lastReason = 0
		}
		return nil
	case errors.As(err, &noMaterial):
		if noMaterial.Reason != f.lastReason {
			f.log.Warnf("Skipping mosaic: %s", noMaterial.Reason)
			f.lastReason = noMaterial.Reason
		}
		return nil
	default:
		return err
	}
}

// ScreenMosaicPass draws the instanced mesh through the primary camera into
// the default framebuffer. Inputs is called every frame so the material
// follows runtime parameter changes.
type ScreenMosaicPass struct {
	Camera    *scene.Camera
	Mesh      *InstancedMesh
	Materials *MaterialCache
	Inputs    func() MaterialInputs
	Viewport  func() (int, int)
}

// RenderMosaic clears the screen and draws the mosaic if a material exists
func (p *ScreenMosaicPass) RenderMosaic() error {
	w, h := p.Viewport()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	m, err := p.Materials.Resolve(p.Inputs())
	if err != nil {
		return err
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	m.Bind(p.Camera.View(), p.Camera.Projection())
	p.Mesh.Draw()
	return nil
}
