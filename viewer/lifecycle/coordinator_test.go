package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/rigview-go/viewer/asset"
	"github.com/Carmen-Shannon/rigview-go/viewer/rig"
	"github.com/Carmen-Shannon/rigview-go/viewer/slot"
)

const testSkeleton = `{
	"skeleton": {"width": 100, "height": 50},
	"skins": [{"name": "default"}, {"name": "armor"}],
	"animations": {"walk": {}, "idle": {}}
}`

const testAtlas = "chars.png\nsize: 1024,1024\n\nprops.png\nsize: 512,512\n"

// urisPerBind is how many transient URIs one test descriptor bind allocates:
// skeleton, atlas, and two page images.
const urisPerBind = 4

func testDescriptor() asset.RigDescriptor {
	return asset.RigDescriptor{
		Skeleton: []byte(testSkeleton),
		Atlas:    []byte(testAtlas),
		Images: []asset.NamedBlob{
			{Name: "chars.png", Data: []byte("img-chars")},
			{Name: "props.png", Data: []byte("img-props")},
		},
	}
}

func brokenDescriptor() asset.RigDescriptor {
	d := testDescriptor()
	d.Images = d.Images[:1] // props.png has no image, binds fail
	return d
}

// gatedRuntime blocks each instantiation until the test sends a token,
// letting tests control completion order of in-flight binds.
type gatedRuntime struct {
	inner rig.Runtime
	gate  chan struct{}
}

func (g *gatedRuntime) Instantiate(ctx context.Context, skeletonKey, atlasKey string) (rig.Instance, error) {
	<-g.gate
	return g.inner.Instantiate(ctx, skeletonKey, atlasKey)
}

// fixture bundles the collaborators a coordinator test needs.
type fixture struct {
	store *asset.BlobStore
	coord Coordinator
}

func newFixture(t *testing.T, runtime func(inner rig.Runtime) rig.Runtime, options ...CoordinatorBuilderOption) *fixture {
	t.Helper()
	store := asset.NewBlobStore()
	manager := asset.NewMemoryManager(store)
	var rt rig.Runtime = rig.NewBoxRuntime(manager)
	if runtime != nil {
		rt = runtime(rt)
	}
	binder := asset.NewBinder(manager, rt, asset.WithBlobStore(store))
	coord := NewCoordinator(slot.NewRegistry(), binder, options...)
	t.Cleanup(coord.Shutdown)
	return &fixture{store: store, coord: coord}
}

func waitState(t *testing.T, c Coordinator, id slot.ID, want slot.State) slot.Slot {
	t.Helper()
	var record slot.Slot
	require.Eventually(t, func() bool {
		r, ok := c.Registry().Get(id)
		if !ok {
			return false
		}
		record = r
		return r.State == want
	}, 2*time.Second, 5*time.Millisecond, "slot %s never reached %s", id, want)
	return record
}

func TestLoadBindsSlot(t *testing.T) {
	f := newFixture(t, nil)

	f.coord.Load(slot.Single, testDescriptor(), 2)
	record := waitState(t, f.coord, slot.Single, slot.StateBound)

	assert.Equal(t, []string{"idle", "walk"}, record.Animations)
	assert.Equal(t, []string{"default", "armor"}, record.Skins)
	assert.Equal(t, "idle", record.Animation)
	assert.Equal(t, "default", record.Skin)
	assert.Equal(t, "bound", record.Status)
	assert.Equal(t, float32(2), record.Scale)

	instance := f.coord.Instance(slot.Single)
	require.NotNil(t, instance)
	assert.Equal(t, float32(2), instance.Scale())
	assert.Equal(t, "idle", instance.Animation())
	assert.Equal(t, "default", instance.Skin())

	assert.Equal(t, urisPerBind, f.store.Len())
	assert.Equal(t, []slot.ID{slot.Single}, f.coord.BoundSlots())
}

func TestBindFailureMarksSlotFailed(t *testing.T) {
	f := newFixture(t, nil)
	id := slot.ID{Row: 1, Col: 1}

	f.coord.Load(id, brokenDescriptor(), 0)
	record := waitState(t, f.coord, id, slot.StateFailed)

	assert.Contains(t, record.Err, "props.png")
	assert.Equal(t, "failed", record.Status)
	assert.Nil(t, f.coord.Instance(id))
	assert.Equal(t, 0, f.store.Len())

	// A failed slot accepts a later, valid load.
	f.coord.Load(id, testDescriptor(), 0)
	record = waitState(t, f.coord, id, slot.StateBound)
	assert.Empty(t, record.Err)
}

func TestFailedReloadRetiresPreviousRig(t *testing.T) {
	f := newFixture(t, nil)
	id := slot.ID{Row: 1, Col: 1}

	f.coord.Load(id, testDescriptor(), 0)
	waitState(t, f.coord, id, slot.StateBound)
	require.Equal(t, urisPerBind, f.store.Len())

	// Re-load the bound slot with a descriptor that cannot bind. Failed
	// carries empty semantics: the old rig must not survive the failure.
	f.coord.Load(id, brokenDescriptor(), 0)
	record := waitState(t, f.coord, id, slot.StateFailed)

	assert.Contains(t, record.Err, "props.png")
	assert.Nil(t, f.coord.Instance(id))
	assert.Empty(t, f.coord.BoundSlots())
	assert.Equal(t, 0, f.store.Len())

	// The slot still accepts a fresh, valid load afterwards.
	f.coord.Load(id, testDescriptor(), 0)
	record = waitState(t, f.coord, id, slot.StateBound)
	assert.Empty(t, record.Err)
	assert.Equal(t, urisPerBind, f.store.Len())
}

func TestRapidReloadSupersedes(t *testing.T) {
	gate := make(chan struct{})
	f := newFixture(t, func(inner rig.Runtime) rig.Runtime {
		return &gatedRuntime{inner: inner, gate: gate}
	}, WithBindWorkers(1))
	id := slot.ID{Row: 0, Col: 3}

	// Two loads in quick succession; with one worker the first bind is in
	// flight and the second is queued behind it.
	f.coord.Load(id, testDescriptor(), 0)
	f.coord.Load(id, testDescriptor(), 0)

	// First bind completes after the second load was initiated, so its
	// generation is stale and its result must be released, not installed.
	gate <- struct{}{}
	gate <- struct{}{}

	record := waitState(t, f.coord, id, slot.StateBound)
	assert.Equal(t, uint64(2), record.Generation)
	require.Eventually(t, func() bool {
		return f.store.Len() == urisPerBind
	}, 2*time.Second, 5*time.Millisecond, "superseded bundle was not released")
	assert.Len(t, f.coord.BoundSlots(), 1)
}

func TestClearInvalidatesInFlightLoad(t *testing.T) {
	gate := make(chan struct{})
	f := newFixture(t, func(inner rig.Runtime) rig.Runtime {
		return &gatedRuntime{inner: inner, gate: gate}
	}, WithBindWorkers(1))
	id := slot.ID{Row: 2, Col: 2}

	f.coord.Load(id, testDescriptor(), 0)
	waitState(t, f.coord, id, slot.StateLoading)

	f.coord.Clear(id)
	record, _ := f.coord.Registry().Get(id)
	assert.Equal(t, slot.StateEmpty, record.State)

	// Let the orphaned bind finish; it must release itself without
	// resurrecting the cleared slot.
	gate <- struct{}{}
	require.Eventually(t, func() bool {
		return f.store.Len() == 0
	}, 2*time.Second, 5*time.Millisecond)

	record, _ = f.coord.Registry().Get(id)
	assert.Equal(t, slot.StateEmpty, record.State)
	assert.Nil(t, f.coord.Instance(id))
}

func TestFillEmptySkipsBoundSlots(t *testing.T) {
	f := newFixture(t, nil)

	prebound := []slot.ID{{Row: 0, Col: 0}, {Row: 2, Col: 3}, {Row: 4, Col: 4}}
	for _, id := range prebound {
		f.coord.Load(id, testDescriptor(), 0)
		waitState(t, f.coord, id, slot.StateBound)
	}
	kept := make(map[slot.ID]rig.Instance, len(prebound))
	for _, id := range prebound {
		kept[id] = f.coord.Instance(id)
	}

	f.coord.FillEmpty(testDescriptor(), 0)

	for _, id := range f.coord.Registry().GridIDs() {
		record, _ := f.coord.Registry().Get(id)
		assert.Equal(t, slot.StateBound, record.State, "slot %s", id)
	}
	for _, id := range prebound {
		assert.Same(t, kept[id], f.coord.Instance(id), "pre-bound slot %s was reloaded", id)
	}

	// The single-mode slot is not part of a grid fill.
	record, _ := f.coord.Registry().Get(slot.Single)
	assert.Equal(t, slot.StateEmpty, record.State)

	assert.Equal(t, slot.GridRows*slot.GridCols*urisPerBind, f.store.Len())
}

func TestFillEmptyFailuresAreIsolated(t *testing.T) {
	f := newFixture(t, nil)
	good := slot.ID{Row: 1, Col: 2}

	f.coord.Load(good, testDescriptor(), 0)
	waitState(t, f.coord, good, slot.StateBound)
	keep := f.coord.Instance(good)

	f.coord.FillEmpty(brokenDescriptor(), 0)

	failed := 0
	for _, id := range f.coord.Registry().GridIDs() {
		record, _ := f.coord.Registry().Get(id)
		if id == good {
			assert.Equal(t, slot.StateBound, record.State)
			continue
		}
		assert.Equal(t, slot.StateFailed, record.State, "slot %s", id)
		assert.Contains(t, record.Err, "props.png")
		failed++
	}
	assert.Equal(t, slot.GridRows*slot.GridCols-1, failed)
	assert.Same(t, keep, f.coord.Instance(good))
	assert.Equal(t, urisPerBind, f.store.Len())
}

func TestFillEmptyRetriesFailedSlots(t *testing.T) {
	f := newFixture(t, nil)
	failed := slot.ID{Row: 0, Col: 0}

	f.coord.Load(failed, brokenDescriptor(), 0)
	waitState(t, f.coord, failed, slot.StateFailed)

	// A failed slot has empty semantics, so a grid fill retries it along
	// with the genuinely empty slots.
	f.coord.FillEmpty(testDescriptor(), 0)

	for _, id := range f.coord.Registry().GridIDs() {
		record, _ := f.coord.Registry().Get(id)
		assert.Equal(t, slot.StateBound, record.State, "slot %s", id)
		assert.Empty(t, record.Err, "slot %s", id)
	}
	assert.Equal(t, slot.GridRows*slot.GridCols*urisPerBind, f.store.Len())
}

func TestClearReleasesSlot(t *testing.T) {
	f := newFixture(t, nil)
	id := slot.ID{Row: 3, Col: 0}

	f.coord.Load(id, testDescriptor(), 0)
	waitState(t, f.coord, id, slot.StateBound)

	f.coord.Clear(id)
	record, _ := f.coord.Registry().Get(id)
	assert.Equal(t, slot.StateEmpty, record.State)
	assert.Nil(t, f.coord.Instance(id))
	assert.Equal(t, 0, f.store.Len())
}

func TestClearAllReleasesEverything(t *testing.T) {
	f := newFixture(t, nil)

	f.coord.Load(slot.Single, testDescriptor(), 0)
	waitState(t, f.coord, slot.Single, slot.StateBound)
	f.coord.FillEmpty(testDescriptor(), 0)

	f.coord.ClearAll()

	assert.Empty(t, f.coord.BoundSlots())
	assert.Equal(t, 0, f.store.Len())
	f.coord.Registry().ForEach(func(s slot.Slot) {
		assert.Equal(t, slot.StateEmpty, s.State, "slot %s", s.ID)
	})
}

func TestPerSlotControls(t *testing.T) {
	f := newFixture(t, nil)

	f.coord.Load(slot.Single, testDescriptor(), 0)
	waitState(t, f.coord, slot.Single, slot.StateBound)
	instance := f.coord.Instance(slot.Single)

	t.Run("animation", func(t *testing.T) {
		require.NoError(t, f.coord.SetAnimation(slot.Single, "walk"))
		assert.Equal(t, "walk", instance.Animation())
		record, _ := f.coord.Registry().Get(slot.Single)
		assert.Equal(t, "walk", record.Animation)

		assert.Error(t, f.coord.SetAnimation(slot.Single, "moonwalk"))
		assert.Equal(t, "walk", instance.Animation())
	})

	t.Run("skin", func(t *testing.T) {
		require.NoError(t, f.coord.SetSkin(slot.Single, "armor"))
		assert.Equal(t, "armor", instance.Skin())
		record, _ := f.coord.Registry().Get(slot.Single)
		assert.Equal(t, "armor", record.Skin)

		assert.Error(t, f.coord.SetSkin(slot.Single, "invisible"))
	})

	t.Run("loop", func(t *testing.T) {
		f.coord.SetLoop(slot.Single, false)
		assert.False(t, instance.Loop())
		record, _ := f.coord.Registry().Get(slot.Single)
		assert.False(t, record.Loop)
	})

	t.Run("playing", func(t *testing.T) {
		f.coord.SetPlaying(slot.Single, false)
		assert.False(t, instance.Playing())
		record, _ := f.coord.Registry().Get(slot.Single)
		assert.False(t, record.Playing)
	})

	t.Run("scale", func(t *testing.T) {
		f.coord.SetScale(slot.Single, 3)
		assert.Equal(t, float32(3), instance.Scale())
		record, _ := f.coord.Registry().Get(slot.Single)
		assert.Equal(t, float32(3), record.Scale)

		f.coord.SetScale(slot.Single, -1)
		assert.Equal(t, float32(3), instance.Scale())
	})

	t.Run("controls on an empty slot fail", func(t *testing.T) {
		empty := slot.ID{Row: 4, Col: 0}
		assert.Error(t, f.coord.SetAnimation(empty, "walk"))
		assert.Error(t, f.coord.SetSkin(empty, "default"))
	})
}

func TestListenersFireOnInstallAndRetire(t *testing.T) {
	var mu sync.Mutex
	var events []string
	f := newFixture(t, nil,
		WithInstallListener(func(id slot.ID, _ rig.Instance) {
			mu.Lock()
			events = append(events, "install "+id.String())
			mu.Unlock()
		}),
		WithRetireListener(func(id slot.ID, _ rig.Instance) {
			mu.Lock()
			events = append(events, "retire "+id.String())
			mu.Unlock()
		}),
	)
	id := slot.ID{Row: 1, Col: 4}

	f.coord.Load(id, testDescriptor(), 0)
	waitState(t, f.coord, id, slot.StateBound)
	first := f.coord.Instance(id)

	f.coord.Load(id, testDescriptor(), 0)
	require.Eventually(t, func() bool {
		return f.coord.Instance(id) != first
	}, 2*time.Second, 5*time.Millisecond)

	f.coord.Clear(id)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"install r1c4",
		"retire r1c4", // previous content retired before the rebind installs
		"install r1c4",
		"retire r1c4",
	}, events)
}

func TestShutdownDrainsInFlightLoads(t *testing.T) {
	gate := make(chan struct{})
	f := newFixture(t, func(inner rig.Runtime) rig.Runtime {
		return &gatedRuntime{inner: inner, gate: gate}
	}, WithBindWorkers(1))
	id := slot.ID{Row: 0, Col: 1}

	f.coord.Load(id, testDescriptor(), 0)
	waitState(t, f.coord, id, slot.StateLoading)

	go func() {
		time.Sleep(20 * time.Millisecond)
		gate <- struct{}{}
	}()
	f.coord.Shutdown()

	assert.Equal(t, 0, f.store.Len())
	assert.Empty(t, f.coord.BoundSlots())

	// Loads after shutdown are ignored.
	f.coord.Load(id, testDescriptor(), 0)
	record, _ := f.coord.Registry().Get(id)
	assert.Equal(t, slot.StateEmpty, record.State)
}
