package asset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStore(t *testing.T) {
	t.Run("put allocates a fresh mem uri", func(t *testing.T) {
		store := NewBlobStore()
		uri := store.Put([]byte("blob"))
		assert.True(t, strings.HasPrefix(uri, "mem://"))

		data, ok := store.Get(uri)
		require.True(t, ok)
		assert.Equal(t, []byte("blob"), data)
	})

	t.Run("uris are unique per put", func(t *testing.T) {
		store := NewBlobStore()
		a := store.Put([]byte("a"))
		b := store.Put([]byte("a"))
		assert.NotEqual(t, a, b)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("revoke removes the blob", func(t *testing.T) {
		store := NewBlobStore()
		uri := store.Put([]byte("x"))
		store.Revoke(uri)

		_, ok := store.Get(uri)
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("revoking twice is a no-op", func(t *testing.T) {
		store := NewBlobStore()
		uri := store.Put([]byte("x"))
		store.Revoke(uri)
		store.Revoke(uri)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("get of unknown uri misses", func(t *testing.T) {
		store := NewBlobStore()
		_, ok := store.Get("mem://nope")
		assert.False(t, ok)
	})
}
