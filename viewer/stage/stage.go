// package stage keeps the render tree synchronized with the viewer's
// presentation state: which mode is active, which rig instances are shown
// where, and which decorations (grid guide, hover highlight, bounding
// outlines) accompany them. The stage owns every decoration node it creates;
// rig instances are owned by the lifecycle coordinator and only attached or
// detached here.
package stage

import (
	"sync"

	"github.com/Carmen-Shannon/rigview-go/common"
	"github.com/Carmen-Shannon/rigview-go/viewer/render"
	"github.com/Carmen-Shannon/rigview-go/viewer/rig"
	"github.com/Carmen-Shannon/rigview-go/viewer/slot"
)

// Mode selects which presentation the stage shows.
type Mode int

const (
	// ModeSingle shows the single-mode slot's rig centered in the viewport.
	ModeSingle Mode = iota

	// ModeGrid shows the fixed grid: guide, hover highlight, and every
	// bound grid slot's rig at its cell center.
	ModeGrid
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeGrid:
		return "grid"
	default:
		return "mode(?)"
	}
}

var (
	guideColor   = render.Color{R: 0.32, G: 0.32, B: 0.36, A: 1}
	hoverColor   = render.Color{R: 1, G: 1, B: 1, A: 0.08}
	outlineColor = render.Color{R: 0.22, G: 0.85, B: 0.4, A: 1}
)

// Synchronizer reconciles the render tree with the current mode and slot
// contents. All methods are safe for concurrent use; the lifecycle
// coordinator drives Install and Remove, the window drives pointer and
// resize events, and the frame loop drives Refresh.
type Synchronizer interface {
	// Mode returns the active presentation mode.
	//
	// Returns:
	//   - Mode: the active mode
	Mode() Mode

	// SetMode switches the presentation, detaching every node of the old
	// mode and attaching the nodes of the new one. Slot contents are
	// untouched; a rig hidden by a mode switch reappears when the mode
	// switches back.
	//
	// Parameters:
	//   - mode: the mode to activate
	SetMode(mode Mode)

	// Install registers a freshly bound instance for a slot, positions it,
	// and attaches it when the active mode shows that slot. A fresh
	// install arms the one-shot outline auto-disable.
	//
	// Parameters:
	//   - id: the slot the instance is bound to
	//   - instance: the bound rig instance
	Install(id slot.ID, instance rig.Instance)

	// Remove detaches and forgets a slot's instance and its outline. A
	// stale instance (already replaced) is ignored.
	//
	// Parameters:
	//   - id: the slot being cleared or rebound
	//   - instance: the instance being retired
	Remove(id slot.ID, instance rig.Instance)

	// Refresh redraws per-frame decorations, currently the bounding
	// outlines, from each shown instance's live screen bounds. Call once
	// per frame before rendering.
	Refresh()

	// Resize records a new viewport size, recenters the grid and the
	// single-mode rig, and redraws the guide.
	//
	// Parameters:
	//   - width: new viewport width in pixels
	//   - height: new viewport height in pixels
	Resize(width, height int)

	// SetCellSize changes the grid's cell edge length, recomputes the
	// grid geometry, and repositions every shown grid rig.
	//
	// Parameters:
	//   - size: the new cell edge length in pixels (ignored if <= 0)
	SetCellSize(size float32)

	// Metrics returns the grid's current derived geometry.
	//
	// Returns:
	//   - slot.Metrics: the current metrics
	Metrics() slot.Metrics

	// HitTest maps a viewport point to the grid cell containing it.
	//
	// Parameters:
	//   - x: point x in viewport coordinates
	//   - y: point y in viewport coordinates
	//
	// Returns:
	//   - slot.ID: the containing cell
	//   - bool: false if the point hits no cell
	HitTest(x, y float32) (slot.ID, bool)

	// Hover moves the hover highlight to the cell under the pointer, or
	// hides it when the pointer is over no cell. No-op outside grid mode.
	//
	// Parameters:
	//   - x: pointer x in viewport coordinates
	//   - y: pointer y in viewport coordinates
	Hover(x, y float32)

	// PointerDown handles a primary-button press: consumes the armed
	// outline auto-disable when the press lands inside the grid extent,
	// then resolves the pressed cell.
	//
	// Parameters:
	//   - x: pointer x in viewport coordinates
	//   - y: pointer y in viewport coordinates
	//
	// Returns:
	//   - slot.ID: the pressed cell
	//   - bool: false if the press hit no cell
	PointerDown(x, y float32) (slot.ID, bool)

	// SetOutlinesVisible toggles the per-slot bounding outlines. Enabling
	// redraws them immediately from live bounds; disabling hides them and
	// drops their geometry.
	//
	// Parameters:
	//   - visible: the new outline visibility
	SetOutlinesVisible(visible bool)

	// OutlinesVisible reports whether bounding outlines are shown.
	//
	// Returns:
	//   - bool: true if outlines are shown
	OutlinesVisible() bool
}

// synchronizer implements the Synchronizer interface.
type synchronizer struct {
	mu sync.Mutex

	tree    render.Tree
	mode    Mode
	spec    slot.GridSpec
	metrics slot.Metrics

	instances map[slot.ID]rig.Instance
	outlines  map[slot.ID]*render.Shape

	guide *render.Shape
	hover *render.Shape

	outlinesVisible  bool
	autoDisableArmed bool
}

var _ Synchronizer = &synchronizer{}

// NewSynchronizer creates a Synchronizer managing the given render tree.
// Panics if the tree is nil. The stage starts in single mode with outlines
// enabled.
//
// Parameters:
//   - tree: the render tree to manage (must not be nil)
//   - options: functional options to further configure the synchronizer
//
// Returns:
//   - Synchronizer: the configured synchronizer
func NewSynchronizer(tree render.Tree, options ...SynchronizerBuilderOption) Synchronizer {
	if tree == nil {
		panic("stage: NewSynchronizer requires a non-nil Tree")
	}

	s := &synchronizer{
		tree:            tree,
		mode:            ModeSingle,
		spec:            slot.DefaultGridSpec(),
		instances:       make(map[slot.ID]rig.Instance),
		outlines:        make(map[slot.ID]*render.Shape),
		guide:           render.NewShape("grid-guide"),
		hover:           render.NewShape("hover-highlight"),
		outlinesVisible: true,
	}
	for _, option := range options {
		option(s)
	}

	s.hover.SetVisible(false)
	w, h := tree.ViewportSize()
	s.metrics = slot.ComputeMetrics(s.spec, float32(w), float32(h))
	s.redrawGuideLocked()
	s.rebuildLocked()

	return s
}

func (s *synchronizer) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *synchronizer) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == s.mode {
		return
	}
	s.mode = mode
	s.rebuildLocked()
}

// rebuildLocked detaches everything and reattaches the active mode's node
// set: backdrop decorations first, rig instances next, overlays last so they
// paint on top. Caller must hold s.mu.
func (s *synchronizer) rebuildLocked() {
	s.tree.Clear()

	switch s.mode {
	case ModeSingle:
		if instance, ok := s.instances[slot.Single]; ok {
			s.positionLocked(slot.Single, instance)
			s.tree.Attach(instance)
			s.attachOutlineLocked(slot.Single)
		}
	case ModeGrid:
		s.tree.Attach(s.guide)
		for id, instance := range s.instances {
			if id.IsSingle() {
				continue
			}
			s.positionLocked(id, instance)
			s.tree.Attach(instance)
		}
		s.hover.SetVisible(false)
		s.tree.Attach(s.hover)
		for id := range s.instances {
			if !id.IsSingle() {
				s.attachOutlineLocked(id)
			}
		}
	}
	s.refreshOutlinesLocked()
}

// shownLocked reports whether the active mode presents the slot.
func (s *synchronizer) shownLocked(id slot.ID) bool {
	if s.mode == ModeSingle {
		return id.IsSingle()
	}
	return !id.IsSingle()
}

// positionLocked moves an instance's anchor to its slot's home point: the
// viewport center for the single-mode slot, the cell center for grid slots.
func (s *synchronizer) positionLocked(id slot.ID, instance rig.Instance) {
	if id.IsSingle() {
		w, h := s.tree.ViewportSize()
		instance.SetPosition(float32(w)/2, float32(h)/2)
		return
	}
	center := s.metrics.CellCenter(id)
	instance.SetPosition(center.X, center.Y)
}

// attachOutlineLocked ensures the slot's outline shape exists and is
// attached, respecting the outline visibility toggle.
func (s *synchronizer) attachOutlineLocked(id slot.ID) {
	shape, ok := s.outlines[id]
	if !ok {
		shape = render.NewShape("outline-" + id.String())
		s.outlines[id] = shape
	}
	shape.SetVisible(s.outlinesVisible)
	s.tree.Attach(shape)
}

func (s *synchronizer) Install(id slot.ID, instance rig.Instance) {
	if instance == nil || !id.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instances[id] = instance
	s.positionLocked(id, instance)
	s.autoDisableArmed = true

	if s.shownLocked(id) {
		s.tree.Attach(instance)
		s.attachOutlineLocked(id)
		s.refreshOutlinesLocked()
	}
}

func (s *synchronizer) Remove(id slot.ID, instance rig.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.instances[id]
	if !ok || current != instance {
		return
	}
	delete(s.instances, id)
	s.tree.Detach(instance)

	if shape, ok := s.outlines[id]; ok {
		delete(s.outlines, id)
		s.tree.Detach(shape)
	}
}

func (s *synchronizer) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshOutlinesLocked()
}

// refreshOutlinesLocked redraws every shown outline from its instance's live
// screen bounds. Hidden outlines keep no geometry.
func (s *synchronizer) refreshOutlinesLocked() {
	for id, shape := range s.outlines {
		if !s.outlinesVisible || !s.shownLocked(id) {
			shape.Reset()
			continue
		}
		instance, ok := s.instances[id]
		if !ok {
			shape.Reset()
			continue
		}
		shape.SetRectOutline(instance.ScreenBounds(), outlineColor)
	}
}

func (s *synchronizer) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree.SetViewportSize(width, height)
	s.metrics = slot.ComputeMetrics(s.spec, float32(width), float32(height))
	s.redrawGuideLocked()
	for id, instance := range s.instances {
		s.positionLocked(id, instance)
	}
	s.refreshOutlinesLocked()
}

func (s *synchronizer) SetCellSize(size float32) {
	if size <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spec.CellSize = size
	w, h := s.tree.ViewportSize()
	s.metrics = slot.ComputeMetrics(s.spec, float32(w), float32(h))
	s.redrawGuideLocked()
	for id, instance := range s.instances {
		if !id.IsSingle() {
			s.positionLocked(id, instance)
		}
	}
	s.refreshOutlinesLocked()
}

// redrawGuideLocked rebuilds the grid guide: one outline per cell.
func (s *synchronizer) redrawGuideLocked() {
	s.guide.Reset()
	for row := 0; row < slot.GridRows; row++ {
		for col := 0; col < slot.GridCols; col++ {
			r := s.metrics.CellRect(slot.ID{Row: row, Col: col})
			tl := common.Vec2{X: r.X, Y: r.Y}
			tr := common.Vec2{X: r.X + r.W, Y: r.Y}
			br := common.Vec2{X: r.X + r.W, Y: r.Y + r.H}
			bl := common.Vec2{X: r.X, Y: r.Y + r.H}
			s.guide.AddLine(tl, tr, guideColor)
			s.guide.AddLine(tr, br, guideColor)
			s.guide.AddLine(br, bl, guideColor)
			s.guide.AddLine(bl, tl, guideColor)
		}
	}
}

func (s *synchronizer) Metrics() slot.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

func (s *synchronizer) HitTest(x, y float32) (slot.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics.HitTest(x, y)
}

func (s *synchronizer) Hover(x, y float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeGrid {
		s.hover.SetVisible(false)
		return
	}
	id, ok := s.metrics.HitTest(x, y)
	if !ok {
		s.hover.SetVisible(false)
		return
	}
	s.hover.SetRectFill(s.metrics.CellRect(id), hoverColor)
	s.hover.SetVisible(true)
}

func (s *synchronizer) PointerDown(x, y float32) (slot.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeGrid && s.autoDisableArmed && s.insideGridLocked(x, y) {
		// One-shot: the first press inside the grid after a load clears
		// the outlines so they do not obscure interaction.
		s.autoDisableArmed = false
		s.outlinesVisible = false
		s.applyOutlineVisibilityLocked()
	}
	return s.metrics.HitTest(x, y)
}

// insideGridLocked reports whether the point lies within the grid's drawn
// extent, gaps included.
func (s *synchronizer) insideGridLocked(x, y float32) bool {
	dx := x - s.metrics.Origin.X
	dy := y - s.metrics.Origin.Y
	return dx >= 0 && dx < s.metrics.Width && dy >= 0 && dy < s.metrics.Height
}

func (s *synchronizer) SetOutlinesVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if visible == s.outlinesVisible {
		return
	}
	s.outlinesVisible = visible
	s.applyOutlineVisibilityLocked()
}

// applyOutlineVisibilityLocked pushes the toggle onto every outline shape
// and rebuilds or drops their geometry accordingly.
func (s *synchronizer) applyOutlineVisibilityLocked() {
	for _, shape := range s.outlines {
		shape.SetVisible(s.outlinesVisible)
	}
	s.refreshOutlinesLocked()
}

func (s *synchronizer) OutlinesVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outlinesVisible
}
