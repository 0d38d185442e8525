package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetrics() Metrics {
	return ComputeMetrics(GridSpec{CellSize: 160, Gap: 12}, 1000, 900)
}

func TestComputeMetrics(t *testing.T) {
	m := testMetrics()

	// 5 cells of 160 plus 4 gaps of 12.
	assert.Equal(t, float32(848), m.Width)
	assert.Equal(t, float32(848), m.Height)
	assert.Equal(t, float32(76), m.Origin.X)
	assert.Equal(t, float32(26), m.Origin.Y)
}

func TestCellRect(t *testing.T) {
	m := testMetrics()

	r := m.CellRect(ID{Row: 0, Col: 0})
	assert.Equal(t, float32(76), r.X)
	assert.Equal(t, float32(26), r.Y)
	assert.Equal(t, float32(160), r.W)

	r = m.CellRect(ID{Row: 2, Col: 3})
	assert.Equal(t, float32(76+3*172), r.X)
	assert.Equal(t, float32(26+2*172), r.Y)

	c := m.CellCenter(ID{Row: 0, Col: 0})
	assert.Equal(t, float32(76+80), c.X)
	assert.Equal(t, float32(26+80), c.Y)
}

func TestHitTest(t *testing.T) {
	m := testMetrics()

	t.Run("cell centers hit their cell", func(t *testing.T) {
		for row := 0; row < GridRows; row++ {
			for col := 0; col < GridCols; col++ {
				id := ID{Row: row, Col: col}
				c := m.CellCenter(id)
				hit, ok := m.HitTest(c.X, c.Y)
				require.True(t, ok)
				assert.Equal(t, id, hit)
			}
		}
	})

	t.Run("agrees with CellRect on the edges", func(t *testing.T) {
		r := m.CellRect(ID{Row: 1, Col: 1})

		// Left/top edges belong to the cell.
		hit, ok := m.HitTest(r.X, r.Y)
		require.True(t, ok)
		assert.Equal(t, ID{Row: 1, Col: 1}, hit)

		// Right/bottom edges do not.
		_, ok = m.HitTest(r.X+r.W, r.Y)
		assert.False(t, ok)
		_, ok = m.HitTest(r.X, r.Y+r.H)
		assert.False(t, ok)
	})

	t.Run("gaps between cells hit nothing", func(t *testing.T) {
		r := m.CellRect(ID{Row: 0, Col: 0})
		_, ok := m.HitTest(r.X+r.W+1, r.Y+10)
		assert.False(t, ok)
	})

	t.Run("points outside the grid hit nothing", func(t *testing.T) {
		_, ok := m.HitTest(m.Origin.X-1, m.Origin.Y)
		assert.False(t, ok)
		_, ok = m.HitTest(m.Origin.X, m.Origin.Y-1)
		assert.False(t, ok)
		_, ok = m.HitTest(m.Origin.X+m.Width, m.Origin.Y)
		assert.False(t, ok)
		_, ok = m.HitTest(0, 0)
		assert.False(t, ok)
	})

	t.Run("every point inside a cell rect hits that cell", func(t *testing.T) {
		for _, id := range []ID{{Row: 0, Col: 0}, {Row: 4, Col: 4}, {Row: 2, Col: 1}} {
			r := m.CellRect(id)
			probes := [][2]float32{
				{r.X, r.Y},
				{r.X + r.W - 1, r.Y + r.H - 1},
				{r.X + r.W/2, r.Y + r.H/2},
			}
			for _, p := range probes {
				hit, ok := m.HitTest(p[0], p[1])
				require.True(t, ok)
				assert.Equal(t, id, hit)
			}
		}
	})
}
