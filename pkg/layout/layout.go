package layout

import (
	"fmt"
)

// Components per instance of each attribute
const (
	PixelUVComponents  = 2
	RandomComponents   = 1
	PositionComponents = 3
)

// Random yields uniform values in [0, 1)
type Random func() float64

// AttributeSet holds the static per-instance attributes of the mosaic.
// The three arrays are parallel and indexed by instance id; treat them as read-only.
type AttributeSet struct {
	PixelUV  []float32 // source texel sampled by the instance
	Random   []float32 // brightness dither, uniform^4
	Position []float32 // billboard center before distortion
	Count    int
}

func newAttributeSet(count int) *AttributeSet {
	return &AttributeSet{
		PixelUV:  make([]float32, count*PixelUVComponents),
		Random:   make([]float32, count*RandomComponents),
		Position: make([]float32, count*PositionComponents),
		Count:    count,
	}
}

// Len returns the instance count
func (s *AttributeSet) Len() int {
	return s.Count
}

// PixelUVAt returns the sample coordinate of instance i
func (s *AttributeSet) PixelUVAt(i int) (u, v float32) {
	return s.PixelUV[i*2], s.PixelUV[i*2+1]
}

// PositionAt returns the undistorted center of instance i
func (s *AttributeSet) PositionAt(i int) (x, y, z float32) {
	return s.Position[i*3], s.Position[i*3+1], s.Position[i*3+2]
}

// Grid lays out rows*cols instances on a centered regular grid of pitch spacing.
// Instance i*cols+j sits at column-major UV (i/(rows-1), j/(cols-1)).
func Grid(rows, cols int, spacing float64, rnd Random) (*AttributeSet, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid %dx%d", rows, cols)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("invalid grid spacing %v", spacing)
	}

	set := newAttributeSet(rows * cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			index := i*cols + j

			set.Random[index] = jitter(rnd)

			set.Position[index*3] = float32(float64(i)*spacing - float64(rows-1)/2*spacing)
			set.Position[index*3+1] = float32(float64(j)*spacing - float64(cols-1)/2*spacing)
			set.Position[index*3+2] = 0

			set.PixelUV[index*2] = float32(unit(i, rows))
			set.PixelUV[index*2+1] = float32(unit(j, cols))
		}
	}

	return set, nil
}

// Scatter tiles a width x height extent with cols*rows cells and hands each cell to exactly
// one instance in random order. Positions are cell centers and UVs the matching normalized
// centers, so the whole extent is covered with no gaps or overlaps.
func Scatter(cols, rows int, width, height float64, rnd Random, perm func(int) []int) (*AttributeSet, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid scatter %dx%d", cols, rows)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid scatter extent %vx%v", width, height)
	}

	count := cols * rows
	order := perm(count)
	if len(order) != count {
		return nil, fmt.Errorf("permutation has %d entries, want %d", len(order), count)
	}

	set := newAttributeSet(count)
	for index, cellIndex := range order {
		cx := cellIndex % cols
		cy := cellIndex / cols

		u := (float64(cx) + 0.5) / float64(cols)
		v := (float64(cy) + 0.5) / float64(rows)

		set.Random[index] = jitter(rnd)

		set.PixelUV[index*2] = float32(u)
		set.PixelUV[index*2+1] = float32(v)

		set.Position[index*3] = float32((u - 0.5) * width)
		set.Position[index*3+1] = float32((v - 0.5) * height)
		set.Position[index*3+2] = 0
	}

	return set, nil
}

// CellSize returns the extent of one scatter cell
func CellSize(cols, rows int, width, height float64) (float64, float64) {
	return width / float64(cols), height / float64(rows)
}

func jitter(rnd Random) float32 {
	r := rnd()
	return float32(r * r * r * r)
}

func unit(i, n int) float64 {
	if n == 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}
