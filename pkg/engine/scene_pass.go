package engine

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"asciimosaic/pkg/scene"
)

// cubeFaces lists the outward normal and the two in-plane axes of each face,
// ordered so that u x v = normal.
var cubeFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
}

// cubeVertices returns a unit cube centered on the origin as 36 vertices,
// interleaved as position (3) and normal (3), wound counter-clockwise.
func cubeVertices() []float32 {
	corners := [6][2]float32{{-1, -1}, {1, -1}, {1, 1}, {1, 1}, {-1, 1}, {-1, -1}}
	out := make([]float32, 0, 36*6)
	for _, f := range cubeFaces {
		n, u, v := f[0], f[1], f[2]
		for _, c := range corners {
			p := n.Mul(0.5).Add(u.Mul(c[0] * 0.5)).Add(v.Mul(c[1] * 0.5))
			out = append(out, p[0], p[1], p[2], n[0], n[1], n[2])
		}
	}
	return out
}

// SceneRenderer rasterizes boxes with ambient and directional lighting.
// It is the scene.Drawer of the off-screen pass.
type SceneRenderer struct {
	program     ShaderProgram
	vao         uint32
	vbo         uint32
	vertexCount int32
	albedo      [3]float32
}

// NewSceneRenderer compiles the box program and uploads the cube
func NewSceneRenderer(compile Compiler) (*SceneRenderer, error) {
	program, err := compile(boxVertexShaderSource, boxFragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile box program: %w", err)
	}

	vertices := cubeVertices()
	r := &SceneRenderer{
		program:     program,
		vertexCount: int32(len(vertices) / 6),
		albedo:      [3]float32{1, 1, 1},
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	stride := int32(6 * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.BindVertexArray(0)

	return r, nil
}

// Draw renders every box into the bound framebuffer
func (r *SceneRenderer) Draw(view, projection mgl32.Mat4, boxes []scene.Box, lights scene.Lighting) {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)

	r.program.Use()
	r.program.SetMat4("uView", view)
	r.program.SetMat4("uProjection", projection)
	r.program.SetVec3("uAlbedo", r.albedo)
	r.program.SetVec3("uAmbientColor", lights.AmbientColor)
	r.program.SetFloat("uAmbientIntensity", lights.AmbientIntensity)
	r.program.SetVec3("uLightColor", lights.LightColor)
	r.program.SetFloat("uLightIntensity", lights.LightIntensity)
	r.program.SetVec3("uLightDirection", lights.LightDirection)

	gl.BindVertexArray(r.vao)
	for _, b := range boxes {
		r.program.SetMat4("uModel", b.Model())
		gl.DrawArrays(gl.TRIANGLES, 0, r.vertexCount)
	}
	gl.BindVertexArray(0)

	gl.Disable(gl.CULL_FACE)
}

// Close releases the cube buffers and program
func (r *SceneRenderer) Close() {
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
	r.program.Delete()
}

// OffscreenScenePass renders the compositor into the off-screen target
type OffscreenScenePass struct {
	Compositor *scene.Compositor
	Target     *OffscreenTarget
	Renderer   *SceneRenderer
}

// RenderScene binds the target, draws the boxes and unbinds it
func (p *OffscreenScenePass) RenderScene() {
	p.Compositor.RenderInto(p.Target, p.Renderer)
}
