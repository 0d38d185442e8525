package rig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/rigview-go/viewer/render"
)

// mapSource satisfies DataSource from a plain map.
type mapSource map[string][]byte

func (m mapSource) Resource(key string) ([]byte, bool) {
	data, ok := m[key]
	return data, ok
}

func instantiate(t *testing.T, skeleton string) Instance {
	t.Helper()
	runtime := NewBoxRuntime(mapSource{"sk": []byte(skeleton)})
	instance, err := runtime.Instantiate(context.Background(), "sk", "at")
	require.NoError(t, err)
	return instance
}

func TestInstantiate(t *testing.T) {
	t.Run("reads names and dimensions from the skeleton", func(t *testing.T) {
		instance := instantiate(t, `{
			"skeleton": {"width": 200, "height": 80},
			"skins": [{"name": "default"}, {"name": "armor"}],
			"animations": {"walk": {}, "idle": {}}
		}`)

		assert.Equal(t, []string{"idle", "walk"}, instance.Animations())
		assert.Equal(t, []string{"default", "armor"}, instance.Skins())

		bounds := instance.ScreenBounds()
		assert.Equal(t, float32(200), bounds.W)
		assert.Equal(t, float32(80), bounds.H)
	})

	t.Run("accepts legacy object-keyed skins", func(t *testing.T) {
		instance := instantiate(t, `{
			"skeleton": {"width": 10, "height": 10},
			"skins": {"b-skin": {}, "a-skin": {}},
			"animations": {}
		}`)
		assert.Equal(t, []string{"a-skin", "b-skin"}, instance.Skins())
	})

	t.Run("defaults missing dimensions", func(t *testing.T) {
		instance := instantiate(t, `{"animations": {"idle": {}}}`)
		bounds := instance.ScreenBounds()
		assert.Equal(t, float32(128), bounds.W)
		assert.Equal(t, float32(128), bounds.H)
	})

	t.Run("rejects unloaded skeleton keys", func(t *testing.T) {
		runtime := NewBoxRuntime(mapSource{})
		_, err := runtime.Instantiate(context.Background(), "missing", "at")
		assert.Error(t, err)
	})

	t.Run("rejects undecodable skeletons", func(t *testing.T) {
		runtime := NewBoxRuntime(mapSource{"sk": []byte("not json")})
		_, err := runtime.Instantiate(context.Background(), "sk", "at")
		assert.Error(t, err)
	})
}

func TestBoxInstance(t *testing.T) {
	skeleton := `{
		"skeleton": {"width": 100, "height": 50},
		"skins": [{"name": "default"}],
		"animations": {"idle": {}, "walk": {}}
	}`

	t.Run("animation selection validates the name", func(t *testing.T) {
		instance := instantiate(t, skeleton)
		require.NoError(t, instance.SetAnimation("walk", false))
		assert.Equal(t, "walk", instance.Animation())
		assert.False(t, instance.Loop())

		assert.Error(t, instance.SetAnimation("fly", true))
		assert.Equal(t, "walk", instance.Animation())
	})

	t.Run("skin selection validates the name", func(t *testing.T) {
		instance := instantiate(t, skeleton)
		require.NoError(t, instance.SetSkin("default"))
		assert.Error(t, instance.SetSkin("nope"))
		assert.Equal(t, "default", instance.Skin())
	})

	t.Run("bounds are centered on the anchor and scale", func(t *testing.T) {
		instance := instantiate(t, skeleton)
		instance.SetPosition(400, 300)
		instance.SetScale(2)

		bounds := instance.ScreenBounds()
		assert.Equal(t, float32(300), bounds.X)
		assert.Equal(t, float32(250), bounds.Y)
		assert.Equal(t, float32(200), bounds.W)
		assert.Equal(t, float32(100), bounds.H)

		instance.SetScale(0) // ignored
		assert.Equal(t, float32(2), instance.Scale())
	})

	t.Run("draw emits a fill and the diagonals", func(t *testing.T) {
		instance := instantiate(t, skeleton)
		var list render.DrawList
		instance.Draw(&list)
		assert.Len(t, list.Quads, 1)
		assert.Len(t, list.Lines, 2)
	})

	t.Run("disposed instances stop drawing", func(t *testing.T) {
		instance := instantiate(t, skeleton)
		instance.Dispose()
		assert.False(t, instance.Visible())

		var list render.DrawList
		instance.Draw(&list)
		assert.Empty(t, list.Quads)
	})
}
