package slot

import (
	"github.com/Carmen-Shannon/rigview-go/common"
)

// GridSpec is the configured grid geometry: cell edge length and the gap
// between adjacent cells, both in pixels.
type GridSpec struct {
	// CellSize is the edge length of one square cell.
	CellSize float32

	// Gap is the spacing between adjacent cells.
	Gap float32
}

// DefaultGridSpec returns the grid geometry the viewer starts with.
//
// Returns:
//   - GridSpec: 160px cells with a 12px gap
func DefaultGridSpec() GridSpec {
	return GridSpec{CellSize: 160, Gap: 12}
}

// Metrics is the grid's derived screen geometry for a specific viewport.
// Metrics are never stored; they are recomputed whenever the viewport or the
// spec changes.
type Metrics struct {
	// Spec is the geometry the metrics were derived from.
	Spec GridSpec

	// Origin is the top-left corner of the grid in viewport coordinates.
	Origin common.Vec2

	// Width is the grid's total drawn width.
	Width float32

	// Height is the grid's total drawn height.
	Height float32
}

// ComputeMetrics derives the grid's screen geometry for a viewport, centering
// the grid. The grid may extend past the viewport when the viewport is
// smaller than the grid's extent.
//
// Parameters:
//   - spec: the configured cell size and gap
//   - viewportW: viewport width in pixels
//   - viewportH: viewport height in pixels
//
// Returns:
//   - Metrics: the derived geometry
func ComputeMetrics(spec GridSpec, viewportW, viewportH float32) Metrics {
	width := GridCols*spec.CellSize + (GridCols-1)*spec.Gap
	height := GridRows*spec.CellSize + (GridRows-1)*spec.Gap
	return Metrics{
		Spec:   spec,
		Origin: common.Vec2{X: (viewportW - width) / 2, Y: (viewportH - height) / 2},
		Width:  width,
		Height: height,
	}
}

// CellRect returns the screen rectangle of a grid cell. The rectangle's
// spans are half-open: the left/top edges belong to the cell, the
// right/bottom edges do not.
//
// Parameters:
//   - id: the grid cell identity (must not be the single-mode slot)
//
// Returns:
//   - common.Rect: the cell rectangle
func (m Metrics) CellRect(id ID) common.Rect {
	pitch := m.Spec.CellSize + m.Spec.Gap
	return common.Rect{
		X: m.Origin.X + float32(id.Col)*pitch,
		Y: m.Origin.Y + float32(id.Row)*pitch,
		W: m.Spec.CellSize,
		H: m.Spec.CellSize,
	}
}

// CellCenter returns the center point of a grid cell, which is where a bound
// rig's anchor is positioned.
//
// Parameters:
//   - id: the grid cell identity
//
// Returns:
//   - common.Vec2: the cell's center point
func (m Metrics) CellCenter(id ID) common.Vec2 {
	return m.CellRect(id).Center()
}

// HitTest maps a viewport point to the grid cell containing it. Points in
// the gaps between cells and points outside the grid's drawn extent hit
// nothing. HitTest and CellRect agree exactly: a point inside CellRect(id)
// always hits id, and a point HitTest rejects is inside no cell rectangle.
//
// Parameters:
//   - x: point x in viewport coordinates
//   - y: point y in viewport coordinates
//
// Returns:
//   - ID: the containing cell
//   - bool: false if the point hits no cell
func (m Metrics) HitTest(x, y float32) (ID, bool) {
	dx := x - m.Origin.X
	dy := y - m.Origin.Y
	if dx < 0 || dx >= m.Width || dy < 0 || dy >= m.Height {
		return ID{}, false
	}

	pitch := m.Spec.CellSize + m.Spec.Gap
	col := int(dx / pitch)
	row := int(dy / pitch)
	if col >= GridCols || row >= GridRows {
		return ID{}, false
	}

	// Points in the gap to the right of / below a cell belong to no cell.
	if dx-float32(col)*pitch >= m.Spec.CellSize || dy-float32(row)*pitch >= m.Spec.CellSize {
		return ID{}, false
	}
	return ID{Row: row, Col: col}, true
}
