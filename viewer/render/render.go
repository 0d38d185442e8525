// package render provides the viewer's render-tree boundary: a flat tree of
// attachable nodes, the draw-list primitives nodes emit, and a wgpu-backed
// overlay backend that rasterizes the tree each frame.
//
// The lifecycle and stage packages only ever talk to the Node and Tree
// interfaces; the GPU backend is an implementation detail wired in by the
// viewer shell.
package render

import (
	"sync"

	"github.com/Carmen-Shannon/rigview-go/common"
)

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R float32
	G float32
	B float32
	A float32
}

// Line is a colored line segment in viewport pixel space.
type Line struct {
	From  common.Vec2
	To    common.Vec2
	Color Color
}

// Quad is a solid colored rectangle in viewport pixel space.
type Quad struct {
	Rect  common.Rect
	Color Color
}

// DrawList accumulates the primitives emitted by the tree's nodes for one
// frame. Lines and quads are kept separate because they map to different
// GPU pipeline topologies.
type DrawList struct {
	Lines []Line
	Quads []Quad
}

// Reset clears the list for reuse without releasing capacity.
func (d *DrawList) Reset() {
	d.Lines = d.Lines[:0]
	d.Quads = d.Quads[:0]
}

// Node is anything that can be attached to the render tree: a bound rig
// instance's visual, a grid guide, a hover highlight, or a bounding outline.
type Node interface {
	// SetPosition moves the node's anchor to (x, y) in viewport pixels.
	//
	// Parameters:
	//   - x: anchor x coordinate
	//   - y: anchor y coordinate
	SetPosition(x, y float32)

	// Position returns the node's anchor point in viewport pixels.
	//
	// Returns:
	//   - common.Vec2: the anchor point
	Position() common.Vec2

	// ScreenBounds returns the node's current screen-space bounding box.
	//
	// Returns:
	//   - common.Rect: the bounding box (may be empty for bare nodes)
	ScreenBounds() common.Rect

	// Visible reports whether the node currently emits primitives.
	//
	// Returns:
	//   - bool: true if visible
	Visible() bool

	// SetVisible toggles whether the node emits primitives when drawn.
	//
	// Parameters:
	//   - visible: the new visibility
	SetVisible(visible bool)

	// Draw appends the node's primitives to the frame's draw list.
	// Invisible nodes must append nothing.
	//
	// Parameters:
	//   - list: the frame draw list to append to
	Draw(list *DrawList)
}

// Tree is the flat child set the stage synchronizer manages. Attach order is
// draw order, so overlays attached later paint over rigs attached earlier.
// Thread-safe for concurrent access.
type Tree interface {
	// Attach adds a node to the tree. Attaching an already attached node
	// is a no-op, preserving its draw order.
	//
	// Parameters:
	//   - n: the node to attach
	Attach(n Node)

	// Detach removes a node from the tree. Detaching a node that is not
	// attached is a no-op.
	//
	// Parameters:
	//   - n: the node to detach
	Detach(n Node)

	// Contains reports whether the node is currently attached.
	//
	// Parameters:
	//   - n: the node to look up
	//
	// Returns:
	//   - bool: true if attached
	Contains(n Node) bool

	// Children returns a snapshot of the attached nodes in draw order.
	//
	// Returns:
	//   - []Node: the attached nodes
	Children() []Node

	// Clear detaches every node.
	Clear()

	// ViewportSize returns the current viewport dimensions in pixels.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	ViewportSize() (int, int)

	// SetViewportSize records new viewport dimensions, typically from a
	// window resize callback.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	SetViewportSize(width, height int)

	// Draw appends every visible child's primitives to the list in draw
	// order.
	//
	// Parameters:
	//   - list: the frame draw list to append to
	Draw(list *DrawList)
}

// tree implements the Tree interface with an ordered child slice.
type tree struct {
	mu       sync.RWMutex
	children []Node
	width    int
	height   int
}

var _ Tree = &tree{}

// NewTree creates an empty render tree with the given viewport size.
//
// Parameters:
//   - width: initial viewport width in pixels
//   - height: initial viewport height in pixels
//
// Returns:
//   - Tree: the new tree
func NewTree(width, height int) Tree {
	return &tree{
		width:  width,
		height: height,
	}
}

func (t *tree) Attach(n Node) {
	if n == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.children {
		if c == n {
			return
		}
	}
	t.children = append(t.children, n)
}

func (t *tree) Detach(n Node) {
	if n == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, c := range t.children {
		if c == n {
			t.children = append(t.children[:i], t.children[i+1:]...)
			return
		}
	}
}

func (t *tree) Contains(n Node) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.children {
		if c == n {
			return true
		}
	}
	return false
}

func (t *tree) Children() []Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Node, len(t.children))
	copy(out, t.children)
	return out
}

func (t *tree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.children = nil
}

func (t *tree) ViewportSize() (int, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.width, t.height
}

func (t *tree) SetViewportSize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width = width
	t.height = height
}

func (t *tree) Draw(list *DrawList) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.children {
		if c.Visible() {
			c.Draw(list)
		}
	}
}
