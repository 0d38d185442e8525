// package viewer wires the windowing, rendering, asset, lifecycle, and stage
// layers into the runnable rig previewer.
package viewer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Carmen-Shannon/rigview-go/common"
	"github.com/Carmen-Shannon/rigview-go/viewer/asset"
	"github.com/Carmen-Shannon/rigview-go/viewer/config"
	"github.com/Carmen-Shannon/rigview-go/viewer/lifecycle"
	"github.com/Carmen-Shannon/rigview-go/viewer/render"
	"github.com/Carmen-Shannon/rigview-go/viewer/rig"
	"github.com/Carmen-Shannon/rigview-go/viewer/slot"
	"github.com/Carmen-Shannon/rigview-go/viewer/stage"
	"github.com/Carmen-Shannon/rigview-go/viewer/window"
)

// ErrRendererUnavailable is returned when a load is requested before the
// window and render surface exist.
var ErrRendererUnavailable = errors.New("viewer: renderer is not available yet")

// ErrNoDescriptor is returned when a load is requested and no rig descriptor
// has been supplied.
var ErrNoDescriptor = errors.New("viewer: no rig descriptor loaded")

const (
	scaleStep = 0.1
	minScale  = 0.05
	maxScale  = 20
)

// Viewer is the previewer application: one window, one render surface, and
// the slot machinery behind them. Create with NewViewer, then call Run on
// the main goroutine.
type Viewer interface {
	// Run opens the window, brings up the render surface, performs the
	// initial load if a descriptor was supplied, and blocks in the message
	// loop until the window closes. Must be called on the main goroutine.
	//
	// Returns:
	//   - error: error if the render surface cannot be created
	Run() error

	// SetDescriptor replaces the rig descriptor used by subsequent loads.
	//
	// Parameters:
	//   - descriptor: the raw rig input
	SetDescriptor(descriptor asset.RigDescriptor)

	// Load starts an asynchronous load of the current descriptor into a
	// slot.
	//
	// Parameters:
	//   - id: the target slot
	//
	// Returns:
	//   - error: ErrRendererUnavailable before Run, ErrNoDescriptor when
	//     no descriptor is set
	Load(id slot.ID) error

	// FillGrid loads the current descriptor into every empty grid slot.
	// Runs in the background; each slot succeeds or fails independently.
	//
	// Returns:
	//   - error: ErrRendererUnavailable before Run, ErrNoDescriptor when
	//     no descriptor is set
	FillGrid() error

	// Clear empties one slot.
	//
	// Parameters:
	//   - id: the slot to clear
	Clear(id slot.ID)

	// ClearAll empties every bound slot.
	ClearAll()

	// Coordinator returns the lifecycle coordinator, exposed for
	// inspection and scripted control.
	//
	// Returns:
	//   - lifecycle.Coordinator: the coordinator
	Coordinator() lifecycle.Coordinator

	// Stage returns the stage synchronizer.
	//
	// Returns:
	//   - stage.Synchronizer: the synchronizer
	Stage() stage.Synchronizer

	// Shutdown releases every bound rig, the render surface, and the
	// window. Safe to call once after Run returns.
	Shutdown()
}

// viewer implements the Viewer interface.
type viewer struct {
	mu sync.Mutex

	cfg    config.Config
	logger *log.Logger

	descriptor    asset.RigDescriptor
	hasDescriptor bool

	runtime rig.Runtime

	win     window.Window
	tree    render.Tree
	backend render.OverlayBackend
	stg     stage.Synchronizer
	coord   lifecycle.Coordinator

	// pointer is the last observed pointer position, used to resolve the
	// slot keyboard commands act on while in grid mode.
	pointer common.Vec2
}

var _ Viewer = &viewer{}

// NewViewer creates a Viewer from a validated configuration. The window and
// GPU surface are not created until Run.
//
// Parameters:
//   - cfg: the validated configuration
//   - options: functional options to further configure the viewer
//
// Returns:
//   - Viewer: the configured viewer
func NewViewer(cfg config.Config, options ...ViewerBuilderOption) Viewer {
	v := &viewer{
		cfg:    cfg,
		logger: log.Default(),
	}
	for _, option := range options {
		option(v)
	}
	return v
}

func (v *viewer) SetDescriptor(descriptor asset.RigDescriptor) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.descriptor = descriptor
	v.hasDescriptor = true
}

func (v *viewer) Run() error {
	v.win = window.NewWindow(
		window.WithTitle(v.cfg.Window.Title),
		window.WithWidth(v.cfg.Window.Width),
		window.WithHeight(v.cfg.Window.Height),
		window.WithMinSize(v.cfg.Window.MinWidth, v.cfg.Window.MinHeight),
	)

	surface := v.win.SurfaceDescriptor()
	if surface == nil {
		return fmt.Errorf("viewer: no surface descriptor: %w", ErrRendererUnavailable)
	}

	v.tree = render.NewTree(v.win.Width(), v.win.Height())
	v.stg = stage.NewSynchronizer(v.tree,
		stage.WithMode(startMode(v.cfg.Display.Mode)),
		stage.WithGridSpec(slot.GridSpec{CellSize: v.cfg.Grid.CellSize, Gap: v.cfg.Grid.Gap}),
		stage.WithOutlinesVisible(v.cfg.Display.Outlines),
	)

	store := asset.NewBlobStore()
	manager := asset.NewMemoryManager(store)
	runtime := v.runtime
	if runtime == nil {
		runtime = rig.NewBoxRuntime(manager)
	}
	binder := asset.NewBinder(manager, runtime, asset.WithBlobStore(store))

	v.coord = lifecycle.NewCoordinator(slot.NewRegistry(), binder,
		lifecycle.WithBindWorkers(v.cfg.Loader.BindWorkers),
		lifecycle.WithInstallListener(v.stg.Install),
		lifecycle.WithRetireListener(v.stg.Remove),
	)

	v.backend = render.NewOverlayBackend(surface)
	v.backend.Configure(v.win.Width(), v.win.Height())

	v.wireInput()

	v.win.SetUpdateCallback(func() {
		v.stg.Refresh()
		if err := v.backend.RenderFrame(v.tree); err != nil {
			v.logger.Error("render frame failed", "err", err)
		}
	})

	v.initialLoad()

	v.logger.Info("viewer running",
		"mode", v.stg.Mode().String(),
		"size", fmt.Sprintf("%dx%d", v.win.Width(), v.win.Height()),
	)
	v.win.ProcessMessages()
	return nil
}

// startMode maps the configured mode name onto a stage mode. The config is
// validated upstream, so unknown names only appear programmatically.
func startMode(name string) stage.Mode {
	if name == "grid" {
		return stage.ModeGrid
	}
	return stage.ModeSingle
}

// initialLoad performs the startup load of the supplied descriptor, if any:
// the single slot in single mode, a full grid fill in grid mode.
func (v *viewer) initialLoad() {
	v.mu.Lock()
	has := v.hasDescriptor
	v.mu.Unlock()
	if !has {
		return
	}
	if v.stg.Mode() == stage.ModeGrid {
		if err := v.FillGrid(); err != nil {
			v.logger.Error("initial grid fill failed", "err", err)
		}
		return
	}
	if err := v.Load(slot.Single); err != nil {
		v.logger.Error("initial load failed", "err", err)
	}
}

// wireInput connects window events to the stage and coordinator.
func (v *viewer) wireInput() {
	v.win.SetResizeCallback(func(width, height int) {
		v.stg.Resize(width, height)
		v.backend.Configure(width, height)
	})

	v.win.SetPointerMoveCallback(func(x, y float32) {
		v.mu.Lock()
		v.pointer = common.Vec2{X: x, Y: y}
		v.mu.Unlock()
		v.stg.Hover(x, y)
	})

	v.win.SetPointerDownCallback(func(x, y float32) {
		if v.stg.Mode() != stage.ModeGrid {
			return
		}
		id, ok := v.stg.PointerDown(x, y)
		if !ok {
			return
		}
		// Clicking a cell loads the current rig into it, replacing
		// whatever it held.
		if err := v.Load(id); err != nil {
			v.logger.Warn("load on click skipped", "slot", id.String(), "err", err)
		}
	})

	v.win.SetScrollCallback(func(delta float32) {
		id, ok := v.targetSlot()
		if !ok {
			return
		}
		record, ok := v.coord.Registry().Get(id)
		if !ok {
			return
		}
		scale := record.Scale * (1 + scaleStep*delta)
		scale = min(max(scale, minScale), maxScale)
		v.coord.SetScale(id, scale)
	})

	v.win.SetKeyDownCallback(v.handleKey)
}

// targetSlot resolves the slot keyboard and scroll commands act on: the
// single slot in single mode, the hovered cell in grid mode.
func (v *viewer) targetSlot() (slot.ID, bool) {
	if v.stg.Mode() == stage.ModeSingle {
		return slot.Single, true
	}
	v.mu.Lock()
	p := v.pointer
	v.mu.Unlock()
	return v.stg.HitTest(p.X, p.Y)
}

func (v *viewer) handleKey(keyCode uint32) {
	switch keyCode {
	case common.KeyG:
		if v.stg.Mode() == stage.ModeGrid {
			v.stg.SetMode(stage.ModeSingle)
		} else {
			v.stg.SetMode(stage.ModeGrid)
		}
	case common.KeyB:
		v.stg.SetOutlinesVisible(!v.stg.OutlinesVisible())
	case common.KeyF:
		if v.stg.Mode() == stage.ModeGrid {
			if err := v.FillGrid(); err != nil {
				v.logger.Warn("grid fill skipped", "err", err)
			}
		}
	case common.KeyC:
		if id, ok := v.targetSlot(); ok {
			v.Clear(id)
		}
	case common.KeyX:
		v.ClearAll()
	case common.KeySpace:
		if id, ok := v.targetSlot(); ok {
			if record, ok := v.coord.Registry().Get(id); ok {
				v.coord.SetPlaying(id, !record.Playing)
			}
		}
	case common.KeyL:
		if id, ok := v.targetSlot(); ok {
			if record, ok := v.coord.Registry().Get(id); ok {
				v.coord.SetLoop(id, !record.Loop)
			}
		}
	case common.KeyA:
		if id, ok := v.targetSlot(); ok {
			v.cycleAnimation(id)
		}
	case common.KeyS:
		if id, ok := v.targetSlot(); ok {
			v.cycleSkin(id)
		}
	}
}

// cycleAnimation advances the slot to its next declared animation.
func (v *viewer) cycleAnimation(id slot.ID) {
	record, ok := v.coord.Registry().Get(id)
	if !ok || len(record.Animations) == 0 {
		return
	}
	next := nextName(record.Animations, record.Animation)
	if err := v.coord.SetAnimation(id, next); err != nil {
		v.logger.Warn("animation change failed", "slot", id.String(), "name", next, "err", err)
	}
}

// cycleSkin advances the slot to its next declared skin.
func (v *viewer) cycleSkin(id slot.ID) {
	record, ok := v.coord.Registry().Get(id)
	if !ok || len(record.Skins) == 0 {
		return
	}
	next := nextName(record.Skins, record.Skin)
	if err := v.coord.SetSkin(id, next); err != nil {
		v.logger.Warn("skin change failed", "slot", id.String(), "name", next, "err", err)
	}
}

// nextName returns the entry after current, wrapping around. Unknown current
// names restart at the first entry.
func nextName(names []string, current string) string {
	for i, name := range names {
		if name == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

func (v *viewer) Load(id slot.ID) error {
	if v.coord == nil {
		return ErrRendererUnavailable
	}
	v.mu.Lock()
	descriptor, has := v.descriptor, v.hasDescriptor
	v.mu.Unlock()
	if !has {
		return ErrNoDescriptor
	}
	v.coord.Load(id, descriptor, v.cfg.Display.Scale)
	return nil
}

func (v *viewer) FillGrid() error {
	if v.coord == nil {
		return ErrRendererUnavailable
	}
	v.mu.Lock()
	descriptor, has := v.descriptor, v.hasDescriptor
	v.mu.Unlock()
	if !has {
		return ErrNoDescriptor
	}
	go v.coord.FillEmpty(descriptor, v.cfg.Display.Scale)
	return nil
}

func (v *viewer) Clear(id slot.ID) {
	if v.coord != nil {
		v.coord.Clear(id)
	}
}

func (v *viewer) ClearAll() {
	if v.coord != nil {
		v.coord.ClearAll()
	}
}

func (v *viewer) Coordinator() lifecycle.Coordinator {
	return v.coord
}

func (v *viewer) Stage() stage.Synchronizer {
	return v.stg
}

func (v *viewer) Shutdown() {
	if v.coord != nil {
		v.coord.Shutdown()
	}
	if v.backend != nil {
		v.backend.Release()
	}
	if v.win != nil {
		if err := v.win.Close(); err != nil {
			v.logger.Warn("window close failed", "err", err)
		}
	}
	v.logger.Info("viewer shut down")
}
