package render

import (
	"sync"

	"github.com/Carmen-Shannon/rigview-go/common"
)

// Shape is a mutable vector overlay node: a set of line segments and filled
// quads in viewport pixel space. The stage synchronizer uses shapes for the
// grid guide, the hover highlight, and per-slot bounding outlines, rebuilding
// their geometry whenever the tracked content moves or resizes.
// Thread-safe for concurrent access.
type Shape struct {
	mu sync.RWMutex

	label    string
	position common.Vec2
	visible  bool

	lines []Line
	quads []Quad
}

var _ Node = &Shape{}

// NewShape creates an empty, visible shape.
//
// Parameters:
//   - label: a human-readable identifier used for debugging
//
// Returns:
//   - *Shape: the new shape
func NewShape(label string) *Shape {
	return &Shape{
		label:   label,
		visible: true,
	}
}

// Label returns the shape's debug identifier.
//
// Returns:
//   - string: the label
func (s *Shape) Label() string {
	return s.label
}

// Reset removes all geometry from the shape, keeping its visibility and
// position. Call before rebuilding geometry for a new frame or layout.
func (s *Shape) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = s.lines[:0]
	s.quads = s.quads[:0]
}

// AddLine appends a line segment in absolute viewport coordinates.
//
// Parameters:
//   - from: segment start point
//   - to: segment end point
//   - color: segment color
func (s *Shape) AddLine(from, to common.Vec2, color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, Line{From: from, To: to, Color: color})
}

// AddQuad appends a solid rectangle in absolute viewport coordinates.
//
// Parameters:
//   - rect: the rectangle to fill
//   - color: fill color
func (s *Shape) AddQuad(rect common.Rect, color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quads = append(s.quads, Quad{Rect: rect, Color: color})
}

// SetRectOutline replaces the shape's geometry with the four edges of the
// given rectangle. This is the canonical way outlines are redrawn each frame
// from a rig's live bounds.
//
// Parameters:
//   - rect: the rectangle to outline
//   - color: outline color
func (s *Shape) SetRectOutline(rect common.Rect, color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = s.lines[:0]
	s.quads = s.quads[:0]

	tl := common.Vec2{X: rect.X, Y: rect.Y}
	tr := common.Vec2{X: rect.X + rect.W, Y: rect.Y}
	br := common.Vec2{X: rect.X + rect.W, Y: rect.Y + rect.H}
	bl := common.Vec2{X: rect.X, Y: rect.Y + rect.H}
	s.lines = append(s.lines,
		Line{From: tl, To: tr, Color: color},
		Line{From: tr, To: br, Color: color},
		Line{From: br, To: bl, Color: color},
		Line{From: bl, To: tl, Color: color},
	)
}

// SetRectFill replaces the shape's geometry with a single solid rectangle.
//
// Parameters:
//   - rect: the rectangle to fill
//   - color: fill color
func (s *Shape) SetRectFill(rect common.Rect, color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = s.lines[:0]
	s.quads = s.quads[:0]
	s.quads = append(s.quads, Quad{Rect: rect, Color: color})
}

func (s *Shape) SetPosition(x, y float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = common.Vec2{X: x, Y: y}
}

func (s *Shape) Position() common.Vec2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

func (s *Shape) ScreenBounds() common.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.lines) == 0 && len(s.quads) == 0 {
		return common.Rect{X: s.position.X, Y: s.position.Y}
	}

	first := true
	var minX, minY, maxX, maxY float32
	grow := func(x, y float32) {
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
			return
		}
		minX = min(minX, x)
		maxX = max(maxX, x)
		minY = min(minY, y)
		maxY = max(maxY, y)
	}
	for _, l := range s.lines {
		grow(l.From.X, l.From.Y)
		grow(l.To.X, l.To.Y)
	}
	for _, q := range s.quads {
		grow(q.Rect.X, q.Rect.Y)
		grow(q.Rect.X+q.Rect.W, q.Rect.Y+q.Rect.H)
	}
	return common.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (s *Shape) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

func (s *Shape) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
}

func (s *Shape) Draw(list *DrawList) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.visible {
		return
	}
	dx, dy := s.position.X, s.position.Y
	for _, l := range s.lines {
		list.Lines = append(list.Lines, Line{
			From:  common.Vec2{X: l.From.X + dx, Y: l.From.Y + dy},
			To:    common.Vec2{X: l.To.X + dx, Y: l.To.Y + dy},
			Color: l.Color,
		})
	}
	for _, q := range s.quads {
		list.Quads = append(list.Quads, Quad{Rect: q.Rect.Translate(dx, dy), Color: q.Color})
	}
}
