package asset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/rigview-go/viewer/atlas"
	"github.com/Carmen-Shannon/rigview-go/viewer/rig"
)

const testSkeleton = `{
	"skeleton": {"width": 100, "height": 50},
	"skins": [{"name": "default"}, {"name": "armor"}],
	"animations": {"walk": {}, "idle": {}}
}`

const twoPageAtlas = "chars.png\nsize: 1024,1024\n\nprops.png\nsize: 512,512\n"
const onePageAtlas = "chars.png\nsize: 1024,1024\n"

func twoPageDescriptor() RigDescriptor {
	return RigDescriptor{
		Skeleton: []byte(testSkeleton),
		Atlas:    []byte(twoPageAtlas),
		Images: []NamedBlob{
			{Name: "chars.png", Data: []byte("img-chars")},
			{Name: "props.png", Data: []byte("img-props")},
		},
	}
}

// failingLoadManager delegates to a MemoryManager but rejects every Load.
type failingLoadManager struct {
	*MemoryManager
	loadErr error
}

func (m *failingLoadManager) Load(ctx context.Context, keys ...string) error {
	return m.loadErr
}

// errRuntime rejects every instantiation.
type errRuntime struct {
	err error
}

func (r *errRuntime) Instantiate(context.Context, string, string) (rig.Instance, error) {
	return nil, r.err
}

func TestBind(t *testing.T) {
	ctx := context.Background()

	t.Run("successful bind registers, loads, and instantiates", func(t *testing.T) {
		store := NewBlobStore()
		manager := NewMemoryManager(store)
		binder := NewBinder(manager, rig.NewBoxRuntime(manager), WithBlobStore(store))

		result, err := binder.Bind(ctx, twoPageDescriptor(), "r0c0")
		require.NoError(t, err)
		require.NotNil(t, result.Instance)
		require.NotNil(t, result.Bundle)

		assert.Equal(t, []string{"idle", "walk"}, result.Animations)
		assert.Equal(t, []string{"default", "armor"}, result.Skins)

		// Skeleton, atlas, and one URI per distinct page image.
		assert.Equal(t, 4, store.Len())
		assert.Len(t, manager.RegisteredKeys(), 2)
		assert.Contains(t, result.Bundle.SkeletonKey(), "r0c0")
		assert.Contains(t, result.Bundle.AtlasKey(), "r0c0")
	})

	t.Run("release unwinds registrations and uris exactly once", func(t *testing.T) {
		store := NewBlobStore()
		manager := NewMemoryManager(store)
		binder := NewBinder(manager, rig.NewBoxRuntime(manager), WithBlobStore(store))

		result, err := binder.Bind(ctx, twoPageDescriptor(), "single")
		require.NoError(t, err)

		require.NoError(t, result.Bundle.Release(ctx))
		assert.Equal(t, 0, store.Len())
		assert.Empty(t, manager.RegisteredKeys())

		// Second release is a no-op returning the first result.
		require.NoError(t, result.Bundle.Release(ctx))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("missing pages abort before any registration", func(t *testing.T) {
		store := NewBlobStore()
		manager := NewMemoryManager(store)
		binder := NewBinder(manager, rig.NewBoxRuntime(manager), WithBlobStore(store))

		descriptor := twoPageDescriptor()
		descriptor.Images = descriptor.Images[:1] // only chars.png

		_, err := binder.Bind(ctx, descriptor, "r1c1")
		var missing *MissingPagesError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"props.png"}, missing.Pages)

		assert.Equal(t, 0, store.Len())
		assert.Empty(t, manager.RegisteredKeys())
	})

	t.Run("single page with single image binds regardless of name", func(t *testing.T) {
		store := NewBlobStore()
		manager := NewMemoryManager(store)
		binder := NewBinder(manager, rig.NewBoxRuntime(manager), WithBlobStore(store))

		descriptor := RigDescriptor{
			Skeleton: []byte(testSkeleton),
			Atlas:    []byte(onePageAtlas),
			Images:   []NamedBlob{{Name: "renamed-locally.png", Data: []byte("img")}},
		}

		result, err := binder.Bind(ctx, descriptor, "single")
		require.NoError(t, err)
		require.NotNil(t, result.Instance)
		assert.Equal(t, 3, store.Len())
	})

	t.Run("duplicate page declarations share one image", func(t *testing.T) {
		store := NewBlobStore()
		manager := NewMemoryManager(store)
		binder := NewBinder(manager, rig.NewBoxRuntime(manager), WithBlobStore(store))

		descriptor := RigDescriptor{
			Skeleton: []byte(testSkeleton),
			Atlas:    []byte("a.png\nsize: 16,16\n\na.png\nsize: 16,16\n"),
			Images: []NamedBlob{
				{Name: "a.png", Data: []byte("img-a")},
				{Name: "unused.png", Data: []byte("img-u")},
			},
		}

		result, err := binder.Bind(ctx, descriptor, "single")
		require.NoError(t, err)
		// Skeleton, atlas, and one image URI despite two declarations.
		assert.Equal(t, 3, store.Len())
		assert.Len(t, result.Bundle.TransientURIs(), 3)
	})

	t.Run("manager load failure unwinds everything", func(t *testing.T) {
		store := NewBlobStore()
		memory := NewMemoryManager(store)
		manager := &failingLoadManager{MemoryManager: memory, loadErr: errors.New("disk on fire")}
		binder := NewBinder(manager, rig.NewBoxRuntime(memory), WithBlobStore(store))

		_, err := binder.Bind(ctx, twoPageDescriptor(), "r2c2")
		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr)
		assert.Len(t, regErr.Keys, 2)

		assert.Equal(t, 0, store.Len())
		assert.Empty(t, memory.RegisteredKeys())
	})

	t.Run("instantiation failure unwinds everything", func(t *testing.T) {
		store := NewBlobStore()
		manager := NewMemoryManager(store)
		binder := NewBinder(manager, &errRuntime{err: errors.New("bad skeleton")}, WithBlobStore(store))

		_, err := binder.Bind(ctx, twoPageDescriptor(), "r3c3")
		var instErr *InstantiationError
		require.ErrorAs(t, err, &instErr)

		assert.Equal(t, 0, store.Len())
		assert.Empty(t, manager.RegisteredKeys())
	})

	t.Run("non-atlas text fails with ErrNoPages", func(t *testing.T) {
		store := NewBlobStore()
		manager := NewMemoryManager(store)
		binder := NewBinder(manager, rig.NewBoxRuntime(manager), WithBlobStore(store))

		descriptor := twoPageDescriptor()
		descriptor.Atlas = []byte("{ not an atlas }")

		_, err := binder.Bind(ctx, descriptor, "single")
		assert.ErrorIs(t, err, atlas.ErrNoPages)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("key prefix is woven into registration keys", func(t *testing.T) {
		store := NewBlobStore()
		manager := NewMemoryManager(store)
		binder := NewBinder(manager, rig.NewBoxRuntime(manager),
			WithBlobStore(store), WithKeyPrefix("previewer"))

		result, err := binder.Bind(ctx, twoPageDescriptor(), "single")
		require.NoError(t, err)
		assert.Contains(t, result.Bundle.SkeletonKey(), "previewer-single-skeleton-")
		assert.Contains(t, result.Bundle.AtlasKey(), "previewer-single-atlas-")
	})
}
