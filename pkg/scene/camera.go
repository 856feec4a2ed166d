package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"asciimosaic/pkg/config"
)

// Camera is a perspective camera looking down -Z from Position
type Camera struct {
	Position mgl32.Vec3
	FOV      float32 // vertical, degrees
	Near     float32
	Far      float32
	aspect   float32
}

// NewCamera places a camera at (0, 0, CameraZ) with the configured frustum
func NewCamera(cfg config.SceneConfig) *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 0, float32(cfg.CameraZ)},
		FOV:      float32(cfg.FOV),
		Near:     float32(cfg.Near),
		Far:      float32(cfg.Far),
		aspect:   1,
	}
}

// SetAspect keeps the projection in sync with the viewport
func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

// Aspect returns width / height
func (c *Camera) Aspect() float32 {
	return c.aspect
}

// View returns the world to camera transform
func (c *Camera) View() mgl32.Mat4 {
	target := c.Position.Sub(mgl32.Vec3{0, 0, 1})
	return mgl32.LookAtV(c.Position, target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective projection
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.aspect, c.Near, c.Far)
}

// VisibleExtent returns the width and height of the frustum slice at distance
// in front of the camera
func (c *Camera) VisibleExtent(distance float64) (float64, float64) {
	h := 2 * distance * math.Tan(float64(mgl32.DegToRad(c.FOV))/2)
	return h * float64(c.aspect), h
}
