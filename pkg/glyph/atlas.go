package glyph

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Atlas is a horizontal strip of square glyph cells, white glyphs on black.
// Cell i holds glyph i of the dictionary it was built from.
type Atlas struct {
	Image    *image.NRGBA
	CellSize int
	dict     Dictionary
}

// Len returns the number of cells
func (a *Atlas) Len() int {
	return a.dict.Len()
}

// Dictionary returns the dictionary the atlas was built from
func (a *Atlas) Dictionary() Dictionary {
	return a.dict
}

// CellBounds returns the pixel rectangle of cell i
func (a *Atlas) CellBounds(i int) image.Rectangle {
	return image.Rect(i*a.CellSize, 0, (i+1)*a.CellSize, a.CellSize)
}

// Options controls atlas rasterization
type Options struct {
	CellSize   int
	FontSize   float64
	GlowFrom   int // glyphs with index > GlowFrom get a halo
	GlowPasses int // blurred passes drawn before the crisp one, radius j*2
}

// DefaultOptions matches a 64px cell with a 40px bold face
func DefaultOptions() Options {
	return Options{
		CellSize:   64,
		FontSize:   40,
		GlowFrom:   50,
		GlowPasses: 6,
	}
}

// Builder rasterizes dictionaries into atlases
type Builder struct {
	opts Options
	face font.Face
}

// NewBuilder parses the bundled bold face at the configured size
func NewBuilder(opts Options) (*Builder, error) {
	if opts.CellSize <= 0 || opts.FontSize <= 0 {
		return nil, fmt.Errorf("invalid atlas options: cell %d, font %v", opts.CellSize, opts.FontSize)
	}

	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}

	return &Builder{opts: opts, face: face}, nil
}

// Options returns the rasterization options
func (b *Builder) Options() Options {
	return b.opts
}

// Build renders every glyph of dict into its own cell
func (b *Builder) Build(dict Dictionary) (*Atlas, error) {
	if dict.Len() == 0 {
		return nil, ErrEmptyDictionary
	}

	cell := b.opts.CellSize
	atlas := image.NewNRGBA(image.Rect(0, 0, dict.Len()*cell, cell))
	draw.Draw(atlas, atlas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for i := 0; i < dict.Len(); i++ {
		r := dict.Rune(i)
		dst := image.Rect(i*cell, 0, (i+1)*cell, cell)

		if i > b.opts.GlowFrom {
			for j := 0; j < b.opts.GlowPasses; j++ {
				layer := b.glyphLayer(r)
				if radius := float64(j * 2); radius > 0 {
					layer = imaging.Blur(layer, radius)
				}
				draw.Draw(atlas, dst, layer, image.Point{}, draw.Over)
			}
		}
		draw.Draw(atlas, dst, b.glyphLayer(r), image.Point{}, draw.Over)
	}

	return &Atlas{Image: atlas, CellSize: cell, dict: dict}, nil
}

// glyphLayer draws r centered on a transparent cell with the baseline at 45/64 of the height
func (b *Builder) glyphLayer(r rune) *image.NRGBA {
	cell := b.opts.CellSize
	layer := image.NewNRGBA(image.Rect(0, 0, cell, cell))

	advance := font.MeasureString(b.face, string(r))
	d := &font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(color.White),
		Face: b.face,
		Dot: fixed.Point26_6{
			X: fixed.I(cell/2) - advance/2,
			Y: fixed.I(cell * 45 / 64),
		},
	}
	d.DrawString(string(r))

	return layer
}
