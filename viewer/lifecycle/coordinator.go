// package lifecycle implements the per-slot rig lifecycle: creating,
// replacing, and destroying bound rig instances for the single-mode slot and
// every grid slot. The coordinator is the sole owner of the live instance
// and bundle arenas; all state mutation is serialized through one mutex, and
// superseded loads are detected by per-slot generation counters and released
// without ever being attached.
package lifecycle

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/rigview-go/viewer/asset"
	"github.com/Carmen-Shannon/rigview-go/viewer/rig"
	"github.com/Carmen-Shannon/rigview-go/viewer/slot"
)

const (
	// defaultBindWorkers bounds concurrent binds from interactive loads.
	defaultBindWorkers = 2

	// bindQueueSize covers a full-grid fill plus interactive reloads.
	bindQueueSize = slot.GridRows*slot.GridCols + 8

	bindWorkerIdleTimeout = 30 * time.Second
)

// errNoBoundRig reports a per-slot control applied to a slot without a rig.
func errNoBoundRig(id slot.ID) error {
	return fmt.Errorf("lifecycle: no rig bound to slot %s", id)
}

// Coordinator orchestrates the bind/replace/clear lifecycle for every slot.
// Loads run asynchronously on a worker pool; completions are applied under
// the coordinator's mutex and only when their captured generation is still
// current. Bind failures surface as the slot's error message and never
// propagate past the coordinator.
type Coordinator interface {
	// Load initiates an asynchronous bind for the slot. Any previous
	// content is retired when (and only when) the new bind completes and
	// is still current. A later Load on the same slot supersedes this one;
	// the superseded result is released without being attached.
	//
	// Parameters:
	//   - id: the target slot
	//   - descriptor: the raw rig input
	//   - scale: uniform scale override, or <= 0 to keep the slot's scale
	Load(id slot.ID, descriptor asset.RigDescriptor, scale float32)

	// Clear retires the slot's bundle, instance, and decorations (if any)
	// and resets the record to empty defaults. An in-flight load for the
	// slot is invalidated and will be released on completion.
	//
	// Parameters:
	//   - id: the slot to clear
	Clear(id slot.ID)

	// ClearAll clears every slot that currently holds a bound rig,
	// including the single-mode slot. Used for a full reset.
	ClearAll()

	// FillEmpty loads the same descriptor into every grid slot that is
	// currently empty, retrying slots whose last bind failed. Loads run
	// sequentially, not concurrently, so one slot's failure cannot corrupt
	// another's bind and registration pressure stays bounded. Each slot
	// succeeds or fails independently.
	//
	// Parameters:
	//   - descriptor: the raw rig input used for every empty slot
	//   - scale: uniform scale applied to every loaded slot (<= 0 keeps
	//     each slot's current scale)
	FillEmpty(descriptor asset.RigDescriptor, scale float32)

	// Instance returns the live rig instance bound to a slot, or nil.
	//
	// Parameters:
	//   - id: the slot to look up
	//
	// Returns:
	//   - rig.Instance: the bound instance or nil
	Instance(id slot.ID) rig.Instance

	// BoundSlots returns the identities of every slot currently holding a
	// bound rig, in unspecified order.
	//
	// Returns:
	//   - []slot.ID: the bound slot identities
	BoundSlots() []slot.ID

	// SetAnimation selects an animation on the slot's bound rig under the
	// slot's loop setting and mirrors the choice into the slot record.
	//
	// Parameters:
	//   - id: the target slot
	//   - name: an animation declared by the bound rig
	//
	// Returns:
	//   - error: error if the slot has no bound rig or the rig rejects
	//     the name
	SetAnimation(id slot.ID, name string) error

	// SetSkin applies a skin on the slot's bound rig and mirrors the
	// choice into the slot record.
	//
	// Parameters:
	//   - id: the target slot
	//   - name: a skin declared by the bound rig
	//
	// Returns:
	//   - error: error if the slot has no bound rig or the rig rejects
	//     the name
	SetSkin(id slot.ID, name string) error

	// SetLoop updates the slot's loop flag and re-applies the current
	// animation under the new setting when a rig is bound.
	//
	// Parameters:
	//   - id: the target slot
	//   - loop: the new loop flag
	SetLoop(id slot.ID, loop bool)

	// SetPlaying pauses or resumes the slot's bound rig and records the
	// flag so it is applied to future binds of the slot.
	//
	// Parameters:
	//   - id: the target slot
	//   - playing: true to play, false to pause
	SetPlaying(id slot.ID, playing bool)

	// SetScale applies a uniform scale to the slot's bound rig and
	// records it for future binds of the slot.
	//
	// Parameters:
	//   - id: the target slot
	//   - scale: the uniform scale (ignored if <= 0)
	SetScale(id slot.ID, scale float32)

	// Registry returns the slot registry backing the coordinator.
	//
	// Returns:
	//   - *slot.Registry: the registry
	Registry() *slot.Registry

	// Shutdown clears every slot, invalidates in-flight loads, and waits
	// for the bind workers to drain. Every bundle ever installed is
	// released exactly once.
	Shutdown()
}

// coordinator implements the Coordinator interface.
type coordinator struct {
	mu sync.Mutex

	ctx      context.Context
	registry *slot.Registry
	binder   asset.Binder

	// Owning arenas, keyed by slot identity. A slot has an entry in
	// instances iff it has an entry in bundles; the two are installed and
	// retired together under mu.
	instances map[slot.ID]rig.Instance
	bundles   map[slot.ID]*asset.Bundle

	pool        worker.DynamicWorkerPool
	bindWorkers int
	nextTaskID  int

	// inflight counts submitted binds. Shutdown waits on this rather than
	// pool.Wait(), which only returns once the workers idle-exit.
	inflight sync.WaitGroup

	shutdown bool

	onInstalled func(id slot.ID, instance rig.Instance)
	onRetired   func(id slot.ID, instance rig.Instance)
}

var _ Coordinator = &coordinator{}

// NewCoordinator creates a Coordinator using the given registry and binder.
// Panics if either is nil.
//
// Parameters:
//   - registry: the slot registry (must not be nil)
//   - binder: the asset binder (must not be nil)
//   - options: functional options to further configure the coordinator
//
// Returns:
//   - Coordinator: the configured coordinator
func NewCoordinator(registry *slot.Registry, binder asset.Binder, options ...CoordinatorBuilderOption) Coordinator {
	if registry == nil {
		panic("lifecycle: NewCoordinator requires a non-nil Registry")
	}
	if binder == nil {
		panic("lifecycle: NewCoordinator requires a non-nil Binder")
	}

	c := &coordinator{
		ctx:         context.Background(),
		registry:    registry,
		binder:      binder,
		instances:   make(map[slot.ID]rig.Instance),
		bundles:     make(map[slot.ID]*asset.Bundle),
		bindWorkers: defaultBindWorkers,
	}
	for _, option := range options {
		option(c)
	}

	c.pool = worker.NewDynamicWorkerPool(c.bindWorkers, bindQueueSize, bindWorkerIdleTimeout)

	return c
}

func (c *coordinator) Registry() *slot.Registry {
	return c.registry
}

func (c *coordinator) Load(id slot.ID, descriptor asset.RigDescriptor, scale float32) {
	if !id.Valid() {
		return
	}

	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	gen := c.beginLoadLocked(id, scale)
	c.nextTaskID++
	taskID := c.nextTaskID
	c.mu.Unlock()

	c.inflight.Add(1)
	c.pool.SubmitTask(worker.Task{
		ID: taskID,
		Do: func() (any, error) {
			defer c.inflight.Done()
			result, err := c.binder.Bind(c.ctx, descriptor, id.String())
			c.complete(id, gen, result, err)
			return nil, nil
		},
	})
}

func (c *coordinator) FillEmpty(descriptor asset.RigDescriptor, scale float32) {
	for _, id := range c.registry.GridIDs() {
		c.mu.Lock()
		if c.shutdown {
			c.mu.Unlock()
			return
		}
		record, _ := c.registry.Get(id)
		// Failed slots carry empty semantics, so a fill retries them.
		if record.State != slot.StateEmpty && record.State != slot.StateFailed {
			c.mu.Unlock()
			continue
		}
		gen := c.beginLoadLocked(id, scale)
		c.mu.Unlock()

		// Deliberately synchronous: one bind at a time keeps resource
		// registration pressure bounded and failure attribution simple.
		result, err := c.binder.Bind(c.ctx, descriptor, id.String())
		c.complete(id, gen, result, err)
	}
}

// beginLoadLocked bumps the slot's generation, transitions it to Loading,
// and clears prior error and name lists. Caller must hold c.mu.
func (c *coordinator) beginLoadLocked(id slot.ID, scale float32) uint64 {
	var gen uint64
	c.registry.Update(id, func(s *slot.Slot) {
		s.Generation++
		gen = s.Generation
		s.State = slot.StateLoading
		s.Status = "loading"
		s.Err = ""
		s.Animations = nil
		s.Skins = nil
		s.Animation = ""
		s.Skin = ""
		if scale > 0 {
			s.Scale = scale
		}
	})
	return gen
}

// complete applies a finished bind. A stale generation means the load was
// superseded (or the slot cleared) while in flight; the result is released
// silently with no state mutation. A current failure retires any previously
// bound content and surfaces as the slot's error. A current success retires
// the slot's previous content first, then installs the new instance.
func (c *coordinator) complete(id slot.ID, gen uint64, result *asset.BindResult, bindErr error) {
	c.mu.Lock()

	record, ok := c.registry.Get(id)
	if !ok || record.Generation != gen {
		c.mu.Unlock()
		c.discard(result)
		return
	}

	if bindErr != nil {
		// Failed means empty-with-error: whatever the slot held before
		// this load is retired too, never left dangling behind the error.
		c.retireLocked(id)
		c.registry.Update(id, func(s *slot.Slot) {
			s.State = slot.StateFailed
			s.Status = "failed"
			s.Err = bindErr.Error()
		})
		c.mu.Unlock()
		return
	}

	// Unbind before rebind: the previous bundle and instance are fully
	// retired before the new ones become visible.
	c.retireLocked(id)

	instance := result.Instance
	c.instances[id] = instance
	c.bundles[id] = result.Bundle

	var applied slot.Slot
	c.registry.Update(id, func(s *slot.Slot) {
		s.State = slot.StateBound
		s.Status = "bound"
		s.Animations = result.Animations
		s.Skins = result.Skins
		if len(result.Skins) > 0 {
			s.Skin = result.Skins[0]
		}
		if len(result.Animations) > 0 {
			s.Animation = result.Animations[0]
		}
		applied = *s
	})

	instance.SetScale(applied.Scale)
	if applied.Skin != "" {
		if err := instance.SetSkin(applied.Skin); err != nil {
			log.Printf("lifecycle: failed to apply skin %q on %s: %v", applied.Skin, id, err)
		}
	}
	if applied.Animation != "" {
		if err := instance.SetAnimation(applied.Animation, applied.Loop); err != nil {
			log.Printf("lifecycle: failed to apply animation %q on %s: %v", applied.Animation, id, err)
		}
	}
	instance.SetPlaying(applied.Playing)

	if c.onInstalled != nil {
		c.onInstalled(id, instance)
	}
	c.mu.Unlock()
}

// discard releases a superseded bind result that will never be attached.
func (c *coordinator) discard(result *asset.BindResult) {
	if result == nil {
		return
	}
	result.Instance.Dispose()
	if err := result.Bundle.Release(c.ctx); err != nil {
		log.Printf("lifecycle: failed to release superseded bundle: %v", err)
	}
}

// retireLocked releases the slot's current instance and bundle, if any, and
// notifies the retire listener so decorations are torn down. Caller must
// hold c.mu.
func (c *coordinator) retireLocked(id slot.ID) {
	instance, hasInstance := c.instances[id]
	bundle, hasBundle := c.bundles[id]
	if !hasInstance && !hasBundle {
		return
	}
	delete(c.instances, id)
	delete(c.bundles, id)

	if c.onRetired != nil && instance != nil {
		c.onRetired(id, instance)
	}
	if instance != nil {
		instance.Dispose()
	}
	if bundle != nil {
		if err := bundle.Release(c.ctx); err != nil {
			log.Printf("lifecycle: failed to release bundle of %s: %v", id, err)
		}
	}
}

func (c *coordinator) Clear(id slot.ID) {
	if !id.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked(id)
}

// clearLocked retires the slot and resets its record. The generation is
// bumped so an in-flight load for the slot is invalidated and released on
// completion instead of resurrecting the cleared slot. Caller must hold c.mu.
func (c *coordinator) clearLocked(id slot.ID) {
	c.retireLocked(id)
	c.registry.Reset(id)
	c.registry.Update(id, func(s *slot.Slot) {
		s.Generation++
	})
}

func (c *coordinator) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.boundSlotsLocked() {
		c.clearLocked(id)
	}
}

func (c *coordinator) Instance(id slot.ID) rig.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instances[id]
}

func (c *coordinator) BoundSlots() []slot.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boundSlotsLocked()
}

// boundSlotsLocked returns the bound slot identities. Caller must hold c.mu.
func (c *coordinator) boundSlotsLocked() []slot.ID {
	ids := make([]slot.ID, 0, len(c.instances))
	for id := range c.instances {
		ids = append(ids, id)
	}
	return ids
}

func (c *coordinator) SetAnimation(id slot.ID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	instance := c.instances[id]
	if instance == nil {
		return errNoBoundRig(id)
	}
	record, _ := c.registry.Get(id)
	if err := instance.SetAnimation(name, record.Loop); err != nil {
		return err
	}
	c.registry.Update(id, func(s *slot.Slot) {
		s.Animation = name
	})
	return nil
}

func (c *coordinator) SetSkin(id slot.ID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	instance := c.instances[id]
	if instance == nil {
		return errNoBoundRig(id)
	}
	if err := instance.SetSkin(name); err != nil {
		return err
	}
	c.registry.Update(id, func(s *slot.Slot) {
		s.Skin = name
	})
	return nil
}

func (c *coordinator) SetLoop(id slot.ID, loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var record slot.Slot
	updated, ok := c.registry.Update(id, func(s *slot.Slot) {
		s.Loop = loop
	})
	if !ok {
		return
	}
	record = updated

	if instance := c.instances[id]; instance != nil {
		instance.SetLoop(loop)
		// Re-apply the current animation so the runtime picks up the new
		// loop setting on the active track.
		if record.Animation != "" {
			if err := instance.SetAnimation(record.Animation, loop); err != nil {
				log.Printf("lifecycle: failed to re-apply animation %q on %s: %v", record.Animation, id, err)
			}
		}
	}
}

func (c *coordinator) SetPlaying(id slot.ID, playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.registry.Update(id, func(s *slot.Slot) {
		s.Playing = playing
	}); !ok {
		return
	}
	if instance := c.instances[id]; instance != nil {
		instance.SetPlaying(playing)
	}
}

func (c *coordinator) SetScale(id slot.ID, scale float32) {
	if scale <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.registry.Update(id, func(s *slot.Slot) {
		s.Scale = scale
	}); !ok {
		return
	}
	if instance := c.instances[id]; instance != nil {
		instance.SetScale(scale)
	}
}

func (c *coordinator) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	// Clear every slot, not just the bound ones: clearing bumps each
	// generation, which invalidates loads still in flight.
	c.clearLocked(slot.Single)
	for _, id := range c.registry.GridIDs() {
		c.clearLocked(id)
	}
	c.mu.Unlock()

	// Drain in-flight binds; their completions see stale generations and
	// release themselves. The pool's workers idle-exit on their own.
	c.inflight.Wait()
}
