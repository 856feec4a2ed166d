package engine

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// OffscreenTarget is a framebuffer with a sampled color texture and a depth
// renderbuffer. Pass one renders into it, pass two samples its texture.
type OffscreenTarget struct {
	fbo     uint32
	color   uint32
	depth   uint32
	width   int
	height  int
	clearTo [4]float32
}

// NewOffscreenTarget allocates a target of the given size
func NewOffscreenTarget(width, height int) (*OffscreenTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	t := &OffscreenTarget{width: width, height: height, clearTo: [4]float32{0, 0, 0, 1}}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.GenTextures(1, &t.color)
	gl.BindTexture(gl.TEXTURE_2D, t.color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.color, 0)

	gl.GenRenderbuffers(1, &t.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, t.depth)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Close()
		return nil, fmt.Errorf("framebuffer not complete: 0x%x", status)
	}

	return t, nil
}

// Bind makes the target the render destination and clears it
func (t *OffscreenTarget) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))
	gl.ClearColor(t.clearTo[0], t.clearTo[1], t.clearTo[2], t.clearTo[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Unbind restores the default framebuffer
func (t *OffscreenTarget) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Texture returns the color attachment
func (t *OffscreenTarget) Texture() uint32 {
	return t.color
}

// Size returns the current dimensions
func (t *OffscreenTarget) Size() (int, int) {
	return t.width, t.height
}

// Resize reallocates the attachments when the viewport changes
func (t *OffscreenTarget) Resize(width, height int) {
	if width <= 0 || height <= 0 || (t.width == width && t.height == height) {
		return
	}
	t.width = width
	t.height = height

	gl.BindTexture(gl.TEXTURE_2D, t.color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
}

// Close releases the GL objects
func (t *OffscreenTarget) Close() {
	gl.DeleteTextures(1, &t.color)
	gl.DeleteRenderbuffers(1, &t.depth)
	gl.DeleteFramebuffers(1, &t.fbo)
	t.color, t.depth, t.fbo = 0, 0, 0
}
