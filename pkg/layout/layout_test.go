package layout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed int64) (Random, func(int) []int) {
	r := rand.New(rand.NewSource(seed))
	return r.Float64, r.Perm
}

func TestGrid_ShapeIndependentOfSeed(t *testing.T) {
	for _, seed := range []int64{1, 2, 99} {
		rnd, _ := seeded(seed)
		set, err := Grid(50, 40, 0.1, rnd)
		require.NoError(t, err)

		assert.Equal(t, 2000, set.Len())
		assert.Len(t, set.PixelUV, 2000*PixelUVComponents)
		assert.Len(t, set.Random, 2000*RandomComponents)
		assert.Len(t, set.Position, 2000*PositionComponents)
	}
}

func TestGrid_PositionsAndUVs(t *testing.T) {
	rnd, _ := seeded(1)
	set, err := Grid(3, 5, 0.5, rnd)
	require.NoError(t, err)

	// first instance: bottom-left corner of a centered grid
	x, y, z := set.PositionAt(0)
	assert.InDelta(t, -0.5, x, 1e-6)
	assert.InDelta(t, -1.0, y, 1e-6)
	assert.Zero(t, z)
	u, v := set.PixelUVAt(0)
	assert.Zero(t, u)
	assert.Zero(t, v)

	// instance i=1, j=2 is the center
	x, y, _ = set.PositionAt(1*5 + 2)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
	u, v = set.PixelUVAt(1*5 + 2)
	assert.InDelta(t, 0.5, u, 1e-6)
	assert.InDelta(t, 0.5, v, 1e-6)

	// last instance: opposite corner
	u, v = set.PixelUVAt(14)
	assert.InDelta(t, 1, u, 1e-6)
	assert.InDelta(t, 1, v, 1e-6)
}

func TestGrid_SingleRowUsesCenterUV(t *testing.T) {
	rnd, _ := seeded(1)
	set, err := Grid(1, 4, 0.1, rnd)
	require.NoError(t, err)

	u, _ := set.PixelUVAt(2)
	assert.InDelta(t, 0.5, u, 1e-6)
}

func TestGrid_RejectsInvalid(t *testing.T) {
	rnd, _ := seeded(1)
	_, err := Grid(0, 4, 0.1, rnd)
	assert.Error(t, err)
	_, err = Grid(4, 4, 0, rnd)
	assert.Error(t, err)
}

func TestJitter_IsFourthPower(t *testing.T) {
	values := []float64{0.5, 0.9, 0.1}
	i := 0
	rnd := func() float64 {
		v := values[i%len(values)]
		i++
		return v
	}
	set, err := Grid(1, 3, 1, rnd)
	require.NoError(t, err)

	assert.InDelta(t, 0.0625, set.Random[0], 1e-6)
	assert.InDelta(t, 0.6561, set.Random[1], 1e-6)
	assert.InDelta(t, 0.0001, set.Random[2], 1e-6)
}

func TestScatter_CoversEveryCellOnce(t *testing.T) {
	rnd, perm := seeded(5)
	cols, rows := 16, 9
	set, err := Scatter(cols, rows, 16, 9, rnd, perm)
	require.NoError(t, err)
	require.Equal(t, cols*rows, set.Len())

	seen := make(map[[2]int]int)
	for i := 0; i < set.Len(); i++ {
		u, v := set.PixelUVAt(i)
		cx := int(u * float32(cols))
		cy := int(v * float32(rows))
		seen[[2]int{cx, cy}]++

		// position is the cell center in the extent, matching the UV
		x, y, _ := set.PositionAt(i)
		assert.InDelta(t, (float64(u)-0.5)*16, x, 1e-4)
		assert.InDelta(t, (float64(v)-0.5)*9, y, 1e-4)
	}
	assert.Len(t, seen, cols*rows)
	for cell, n := range seen {
		assert.Equal(t, 1, n, "cell %v", cell)
	}
}

func TestScatter_ShapeIndependentOfSeed(t *testing.T) {
	for _, seed := range []int64{3, 4} {
		rnd, perm := seeded(seed)
		set, err := Scatter(20, 10, 4, 2, rnd, perm)
		require.NoError(t, err)
		assert.Len(t, set.PixelUV, 200*2)
		assert.Len(t, set.Random, 200)
		assert.Len(t, set.Position, 200*3)
	}
}

func TestScatter_RejectsInvalid(t *testing.T) {
	rnd, perm := seeded(1)
	_, err := Scatter(0, 1, 1, 1, rnd, perm)
	assert.Error(t, err)
	_, err = Scatter(2, 2, 0, 1, rnd, perm)
	assert.Error(t, err)
	_, err = Scatter(2, 2, 1, 1, rnd, func(int) []int { return []int{0} })
	assert.Error(t, err)
}

func TestCellSize(t *testing.T) {
	w, h := CellSize(10, 4, 5, 2)
	assert.InDelta(t, 0.5, w, 1e-9)
	assert.InDelta(t, 0.5, h, 1e-9)
}
