package shader

import (
	"image"
	"math"
)

// ImageSampler samples img with nearest filtering and edge clamping, using
// texture coordinates whose origin is the bottom-left corner.
func ImageSampler(img image.Image) Sampler {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	return func(u, v float64) Value {
		if w == 0 || h == 0 {
			return Vector(0, 0, 0, 0)
		}
		x := clampInt(int(math.Floor(u*float64(w))), 0, w-1)
		y := clampInt(int(math.Floor((1-v)*float64(h))), 0, h-1)

		r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
		if a == 0 {
			return Vector(0, 0, 0, 0)
		}
		// RGBA is premultiplied
		return Vector(
			float64(r)/float64(a),
			float64(g)/float64(a),
			float64(bl)/float64(a),
			float64(a)/0xffff,
		)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
