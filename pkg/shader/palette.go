package shader

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// PaletteSize is the number of banding colors
const PaletteSize = 5

// Palette holds the banding colors, darkest band first
type Palette [PaletteSize]colorful.Color

// ParsePalette parses exactly five hex colors
func ParsePalette(hex []string) (Palette, error) {
	var p Palette
	if len(hex) != PaletteSize {
		return p, fmt.Errorf("palette needs %d colors, got %d", PaletteSize, len(hex))
	}
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return p, fmt.Errorf("palette color %d: %w", i, err)
		}
		p[i] = c
	}
	return p, nil
}

// Band returns the palette color for a brightness
func (p Palette) Band(brightness float64) colorful.Color {
	return p[BandIndex(brightness)]
}

// Vec3 returns entry i as shader components
func (p Palette) Vec3(i int) [3]float32 {
	return [3]float32{float32(p[i].R), float32(p[i].G), float32(p[i].B)}
}

// Uniforms returns the palette as uniform values keyed by uniform name
func (p Palette) Uniforms() map[string]Value {
	u := make(map[string]Value, PaletteSize)
	for i, c := range p {
		u[ColorUniform(i)] = Vector(c.R, c.G, c.B)
	}
	return u
}

// Hex returns the palette as hex strings
func (p Palette) Hex() []string {
	out := make([]string, PaletteSize)
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}
