package engine

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// TextureStore uploads images to the GPU and releases them
type TextureStore interface {
	Upload(img image.Image) (uint32, error)
	Release(id uint32)
}

// GLTextures is the OpenGL TextureStore
type GLTextures struct{}

// Upload stores img as an RGBA texture. Rows are flipped so that v = 0 is
// the bottom of the image, matching the framebuffer origin.
func (GLTextures) Upload(img image.Image) (uint32, error) {
	b := img.Bounds()
	if b.Empty() {
		return 0, fmt.Errorf("cannot upload empty image")
	}
	flipped := imaging.FlipV(img)

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(flipped.Rect.Dx()),
		int32(flipped.Rect.Dy()),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(flipped.Pix),
	)

	return id, nil
}

// Release deletes the texture
func (GLTextures) Release(id uint32) {
	if id != 0 {
		gl.DeleteTextures(1, &id)
	}
}
