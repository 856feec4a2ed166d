package shader

import (
	"math"

	"asciimosaic/pkg/glyph"
)

// Distort applies the radial distortion to an instance center and returns the
// offset added to every vertex of its billboard. k > 0 bulges outward, k < 0
// pinches inward and k == 0 is the identity.
func Distort(x, y, z, k float64) (float64, float64, float64) {
	theta := math.Atan2(y, x)
	r := math.Sqrt(x*x + y*y + z*z)
	final := r * (1 + k*r*r)
	return final * math.Cos(theta), final * math.Sin(theta), 0
}

// Brightness is pow(red, 0.9) + random*0.02. It is not clamped and may exceed 1.
func Brightness(red, random float64) float64 {
	return math.Pow(red, BrightnessGamma) + random*JitterScale
}

// GlyphIndex selects the atlas cell for a brightness among n glyphs
func GlyphIndex(brightness float64, n int) int {
	return glyph.BucketIndex(brightness, n)
}

// GlyphUV offsets a billboard-local uv into the atlas cell of glyph index
func GlyphUV(u, v float64, index, n int) (float64, float64) {
	return u/float64(n) + float64(index)/float64(n), v
}

// BandIndex returns the palette entry for a brightness. Each threshold
// overwrites the previous choice, so the last one satisfied wins.
func BandIndex(brightness float64) int {
	band := 0
	for i, edge := range BandThresholds {
		if brightness >= edge {
			band = i + 1
		}
	}
	return band
}
