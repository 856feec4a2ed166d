package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"asciimosaic/pkg/config"
)

// Random yields uniform values in [min, max)
type Random interface {
	Range(min, max float64) float64
}

// Box is one rotating cube of the secondary scene
type Box struct {
	Edge     float32
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // XYZ Euler angles in radians
}

// Model returns translate * rotateX * rotateY * rotateZ * scale
func (b Box) Model() mgl32.Mat4 {
	t := mgl32.Translate3D(b.Position.X(), b.Position.Y(), b.Position.Z())
	r := mgl32.HomogRotate3DX(b.Rotation.X()).
		Mul4(mgl32.HomogRotate3DY(b.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(b.Rotation.Z()))
	s := mgl32.Scale3D(b.Edge, b.Edge, b.Edge)
	return t.Mul4(r).Mul4(s)
}

// Lighting is one ambient and one directional white light
type Lighting struct {
	AmbientColor     mgl32.Vec3
	AmbientIntensity float32
	LightColor       mgl32.Vec3
	LightIntensity   float32
	LightDirection   mgl32.Vec3 // normalized, pointing from the scene towards the light
}

// Target is an off-screen color buffer bound as the render destination
type Target interface {
	Bind()
	Unbind()
}

// Drawer rasterizes boxes with a camera and lights into the bound target
type Drawer interface {
	Draw(view, projection mgl32.Mat4, boxes []Box, lights Lighting)
}

// Compositor owns the secondary scene: boxes generated once, their rotation
// state, the lights and the camera that renders them off-screen.
type Compositor struct {
	boxes  []Box
	speed  float64
	camera *Camera
	lights Lighting
}

// New generates the boxes with uniformly random edge, position and initial rotation
func New(cfg config.SceneConfig, rnd Random) *Compositor {
	boxes := make([]Box, cfg.Boxes)
	for i := range boxes {
		boxes[i] = Box{
			Edge: float32(rnd.Range(cfg.MinEdge, cfg.MaxEdge)),
			Position: mgl32.Vec3{
				float32(rnd.Range(-cfg.Spread, cfg.Spread)),
				float32(rnd.Range(-cfg.Spread, cfg.Spread)),
				float32(rnd.Range(-cfg.Spread, cfg.Spread)),
			},
			Rotation: mgl32.Vec3{
				float32(rnd.Range(0, math.Pi)),
				float32(rnd.Range(0, math.Pi)),
				float32(rnd.Range(0, math.Pi)),
			},
		}
	}

	lp := cfg.LightPosition
	white := mgl32.Vec3{1, 1, 1}

	return &Compositor{
		boxes:  boxes,
		speed:  cfg.Speed,
		camera: NewCamera(cfg),
		lights: Lighting{
			AmbientColor:     white,
			AmbientIntensity: float32(cfg.AmbientIntensity),
			LightColor:       white,
			LightIntensity:   float32(cfg.LightIntensity),
			LightDirection:   mgl32.Vec3{float32(lp[0]), float32(lp[1]), float32(lp[2])}.Normalize(),
		},
	}
}

// Advance sets every rotation axis to sin(position.axis * elapsed) * speed.
// The law is time-absolute; delta is accepted for the frame clock but unused.
func (c *Compositor) Advance(elapsed, delta float64) {
	_ = delta
	for i := range c.boxes {
		b := &c.boxes[i]
		for axis := 0; axis < 3; axis++ {
			b.Rotation[axis] = float32(math.Sin(float64(b.Position[axis])*elapsed) * c.speed)
		}
	}
}

// RenderInto draws the boxes through the scene camera into target
func (c *Compositor) RenderInto(target Target, d Drawer) {
	target.Bind()
	d.Draw(c.camera.View(), c.camera.Projection(), c.boxes, c.lights)
	target.Unbind()
}

// Boxes returns the boxes; callers must not modify them
func (c *Compositor) Boxes() []Box {
	return c.boxes
}

// Camera returns the off-screen camera
func (c *Compositor) Camera() *Camera {
	return c.camera
}

// Lights returns the scene lighting
func (c *Compositor) Lights() Lighting {
	return c.lights
}
