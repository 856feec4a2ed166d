package layout

import (
	"fmt"
	"math"

	"asciimosaic/pkg/config"
)

// Source supplies jitter values and scatter orderings
type Source interface {
	Float() float64
	Perm(n int) []int
}

// Build generates the configured layout. Scatter mode tiles the width x height
// extent; grid mode ignores it. The second result is the billboard edge: the
// configured glyph size, or one layout cell when that is zero.
func Build(cfg config.LayoutConfig, width, height float64, src Source) (*AttributeSet, float64, error) {
	var (
		set  *AttributeSet
		edge float64
		err  error
	)

	switch cfg.Mode {
	case config.LayoutGrid:
		set, err = Grid(cfg.Rows, cfg.Cols, cfg.CellSpacing, src.Float)
		edge = cfg.CellSpacing
	case config.LayoutScatter:
		set, err = Scatter(cfg.Cols, cfg.Rows, width, height, src.Float, src.Perm)
		cw, ch := CellSize(cfg.Cols, cfg.Rows, width, height)
		edge = math.Min(cw, ch)
	default:
		return nil, 0, fmt.Errorf("unknown layout mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%s layout: %w", cfg.Mode, err)
	}

	if cfg.GlyphSize > 0 {
		edge = cfg.GlyphSize
	}
	return set, edge, nil
}
