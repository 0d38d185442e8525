// package common contains common types that are used throughout the viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Vec2 is a 2D point or direction in viewport pixel space.
type Vec2 struct {
	X float32
	Y float32
}

// Rect is an axis-aligned rectangle in viewport pixel space.
// The horizontal span is the half-open interval [X, X+W) and the vertical
// span is [Y, Y+H), so adjacent rectangles sharing an edge never both
// contain a point on that edge.
type Rect struct {
	X float32
	Y float32
	W float32
	H float32
}

// Contains reports whether the point lies inside the rectangle.
// Boundaries follow the half-open convention: the left and top edges are
// inside, the right and bottom edges are not.
//
// Parameters:
//   - x: point x coordinate
//   - y: point y coordinate
//
// Returns:
//   - bool: true if the point is inside the rectangle
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Center returns the rectangle's center point.
//
// Returns:
//   - Vec2: the center of the rectangle
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Empty reports whether the rectangle has zero or negative area.
//
// Returns:
//   - bool: true if the rectangle covers no pixels
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Translate returns a copy of the rectangle shifted by (dx, dy).
//
// Parameters:
//   - dx: horizontal offset
//   - dy: vertical offset
//
// Returns:
//   - Rect: the shifted rectangle
func (r Rect) Translate(dx, dy float32) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}
