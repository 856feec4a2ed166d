// Package preview draws the glyph mosaic into a terminal. It evaluates the same
// shader graphs as the GPU pipeline on the CPU, one terminal cell per instance,
// against a static image source.
package preview

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"asciimosaic/internal/logger"
	"asciimosaic/pkg/config"
	"asciimosaic/pkg/glyph"
	"asciimosaic/pkg/layout"
	"asciimosaic/pkg/shader"
)

// cellAspect is the height of a terminal cell relative to its width
const cellAspect = 2.0

// Terminal renders the mosaic to a tcell screen
type Terminal struct {
	screen     tcell.Screen
	dict       glyph.Dictionary
	palette    shader.Palette
	rnd        layout.Source
	log        *logger.Logger
	vertex     shader.VertexGraph
	fragment   shader.FragmentGraph
	source     shader.Sampler
	distortion float64

	cells      *layout.AttributeSet
	cols, rows int
}

// NewTerminal prepares a preview on an initialized screen
func NewTerminal(screen tcell.Screen, dict glyph.Dictionary, palette shader.Palette, rnd layout.Source, log *logger.Logger) *Terminal {
	return &Terminal{
		screen:   screen,
		dict:     dict,
		palette:  palette,
		rnd:      rnd,
		log:      log,
		vertex:   shader.Vertex(),
		fragment: shader.Fragment(dict.Len(), shader.SourceImage),
	}
}

// SetImage replaces the brightness source
func (t *Terminal) SetImage(img image.Image) {
	t.source = shader.ImageSampler(img)
}

// SetDistortion sets the barrel coefficient, clamped to the allowed range
func (t *Terminal) SetDistortion(k float64) {
	t.distortion = config.ClampDistortion(k)
}

// Distortion returns the barrel coefficient
func (t *Terminal) Distortion() float64 {
	return t.distortion
}

// extent returns the world size covered by the screen
func (t *Terminal) extent() (float64, float64) {
	// height 2 keeps radii comparable to the GPU view at the default camera
	h := 2.0
	return h * float64(t.cols) / (float64(t.rows) * cellAspect), h
}

// Draw lays out one instance per cell and paints the mosaic
func (t *Terminal) Draw() error {
	if t.source == nil {
		return fmt.Errorf("preview has no image source")
	}

	cols, rows := t.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if t.cells == nil || cols != t.cols || rows != t.rows {
		t.cols, t.rows = cols, rows
		w, h := t.extent()
		cells, err := layout.Scatter(cols, rows, w, h, t.rnd.Float, t.rnd.Perm)
		if err != nil {
			return fmt.Errorf("preview layout: %w", err)
		}
		t.cells = cells
		t.log.Debugf("Preview layout %dx%d", cols, rows)
	}

	w, h := t.extent()
	uniforms := t.palette.Uniforms()
	uniforms[shader.UniformDistortion] = shader.Scalar(t.distortion)
	env := &shader.Env{
		Attributes: make(map[string]shader.Value, 3),
		Uniforms:   uniforms,
		Builtins:   map[string]shader.Value{shader.BuiltinPositionLocal: shader.Vector(0, 0, 0)},
		Samplers:   map[string]shader.Sampler{shader.SamplerImage: t.source},
	}

	t.screen.Clear()
	for i := 0; i < t.cells.Len(); i++ {
		u, v := t.cells.PixelUVAt(i)
		x, y, z := t.cells.PositionAt(i)
		env.Attributes[shader.AttrPixelUV] = shader.Vector(float64(u), float64(v))
		env.Attributes[shader.AttrRandom] = shader.Scalar(float64(t.cells.Random[i]))
		env.Attributes[shader.AttrPosition] = shader.Vector(float64(x), float64(y), float64(z))

		center := t.vertex.Position.Eval(env)
		cx := int(math.Floor((center.V[0]/w + 0.5) * float64(cols)))
		cy := rows - 1 - int(math.Floor((center.V[1]/h+0.5)*float64(rows)))
		if cx < 0 || cx >= cols || cy < 0 || cy >= rows {
			continue
		}

		index := int(t.fragment.GlyphIndex.Eval(env).X())
		band := t.fragment.Band.Eval(env)
		t.screen.SetContent(cx, cy, t.dict.Rune(index), nil, bandStyle(band))
	}
	t.screen.Show()
	return nil
}

func bandStyle(band shader.Value) tcell.Style {
	r, g, b := colorful.Color{R: band.V[0], G: band.V[1], B: band.V[2]}.Clamped().RGB255()
	return tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b))).
		Background(tcell.ColorBlack)
}

// HandleKey applies a key press and reports whether the preview should quit
func (t *Terminal) HandleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		t.SetDistortion(t.distortion + config.BarrelDistortionStep)
	case tcell.KeyDown:
		t.SetDistortion(t.distortion - config.BarrelDistortionStep)
	case tcell.KeyRune:
		if r == 'q' {
			return true
		}
	}
	return false
}

// Run draws and handles events until the user quits or ctx is done
func (t *Terminal) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	if err := t.Draw(); err != nil {
		return err
	}

	for {
		switch ev := t.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			return ctx.Err()
		case *tcell.EventResize:
			t.screen.Sync()
			if err := t.Draw(); err != nil {
				return err
			}
		case *tcell.EventKey:
			if t.HandleKey(ev.Key(), ev.Rune()) {
				return nil
			}
			if err := t.Draw(); err != nil {
				return err
			}
		}
	}
}
