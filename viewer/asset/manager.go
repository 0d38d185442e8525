// package asset implements the rig binding pipeline: allocating transient
// blob URIs for user-supplied files, registering them with the asset manager
// under session-unique keys, loading them, and instantiating a rig. The
// Bundle type tracks everything a bind created so it can be released exactly
// once when the owning slot is cleared or replaced.
package asset

import (
	"context"
	"fmt"
	"sync"
)

// Kind identifies the resource type passed to Manager.Register.
type Kind string

const (
	// KindSkeleton marks a skeleton definition blob.
	KindSkeleton Kind = "skeleton"

	// KindAtlas marks a texture atlas descriptor blob.
	KindAtlas Kind = "atlas"
)

// AtlasImages is the closed set of image payloads attached to an atlas
// registration: either a single unnamed image (the single-page shortcut) or
// a map of page name to image URI.
type AtlasImages interface {
	isAtlasImages()
}

// SingleImage supplies one image for a single-page atlas; no page-name
// matching is involved.
type SingleImage struct {
	// URI is the transient blob URI of the image data.
	URI string
}

func (SingleImage) isAtlasImages() {}

// NamedImages supplies one image per declared atlas page, keyed by the exact
// page name.
type NamedImages struct {
	// URIs maps atlas page names to transient blob URIs.
	URIs map[string]string
}

func (NamedImages) isAtlasImages() {}

// Manager is the external asset manager boundary. Registration is
// synchronous bookkeeping; Load and Unload may suspend on I/O. Keys are
// globally scoped within the process, so callers must guarantee uniqueness.
type Manager interface {
	// Register records a resource under a fresh key. Registering does not
	// load; a later Load call resolves the source URI.
	//
	// Parameters:
	//   - key: the session-unique registration key
	//   - uri: the source URI (typically a transient blob URI)
	//   - kind: the resource kind
	//   - images: image payloads for atlas registrations, nil otherwise
	Register(key, uri string, kind Kind, images AtlasImages)

	// Load resolves the given keys' sources into live resources.
	//
	// Parameters:
	//   - ctx: context for cancellation
	//   - keys: the registration keys to load
	//
	// Returns:
	//   - error: error if any key fails to resolve; partially loaded keys
	//     remain loaded and must be unloaded by the caller
	Load(ctx context.Context, keys ...string) error

	// Unload releases the given keys' resources and removes their
	// registrations. Unknown keys are ignored.
	//
	// Parameters:
	//   - ctx: context for cancellation
	//   - keys: the registration keys to unload
	//
	// Returns:
	//   - error: error if releasing a resource fails
	Unload(ctx context.Context, keys ...string) error
}

// registration is one recorded Register call.
type registration struct {
	uri    string
	kind   Kind
	images AtlasImages
}

// MemoryManager is an in-process Manager backed by a BlobStore. It is the
// manager the shipped viewer runs against and the reference implementation
// tests bind the pipeline to. Thread-safe for concurrent access.
type MemoryManager struct {
	mu         sync.RWMutex
	store      *BlobStore
	registered map[string]registration
	loaded     map[string][]byte
}

var _ Manager = &MemoryManager{}

// NewMemoryManager creates a MemoryManager resolving URIs against the given
// blob store.
//
// Parameters:
//   - store: the blob store transient URIs were allocated from
//
// Returns:
//   - *MemoryManager: the new manager
func NewMemoryManager(store *BlobStore) *MemoryManager {
	return &MemoryManager{
		store:      store,
		registered: make(map[string]registration),
		loaded:     make(map[string][]byte),
	}
}

func (m *MemoryManager) Register(key, uri string, kind Kind, images AtlasImages) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered[key] = registration{uri: uri, kind: kind, images: images}
}

func (m *MemoryManager) Load(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		reg, ok := m.registered[key]
		if !ok {
			return fmt.Errorf("asset: key %q is not registered", key)
		}
		data, ok := m.store.Get(reg.uri)
		if !ok {
			return fmt.Errorf("asset: source %q of key %q has been revoked", reg.uri, key)
		}
		m.loaded[key] = data
	}
	return nil
}

func (m *MemoryManager) Unload(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.loaded, key)
		delete(m.registered, key)
	}
	return nil
}

// Resource returns the loaded bytes for a key. Satisfies rig.DataSource so
// runtimes can resolve skeleton data by registration key.
//
// Parameters:
//   - key: the registration key
//
// Returns:
//   - []byte: the loaded resource data
//   - bool: false if the key has not been loaded
func (m *MemoryManager) Resource(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.loaded[key]
	return data, ok
}

// RegisteredKeys returns the currently registered keys in unspecified order.
//
// Returns:
//   - []string: the registered keys
func (m *MemoryManager) RegisteredKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.registered))
	for k := range m.registered {
		keys = append(keys, k)
	}
	return keys
}

// Registration returns the recorded image payload for a key's registration.
// Used by runtimes that need the atlas page images.
//
// Parameters:
//   - key: the registration key
//
// Returns:
//   - AtlasImages: the image payload, or nil
//   - bool: false if the key is not registered
func (m *MemoryManager) Registration(key string) (AtlasImages, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.registered[key]
	if !ok {
		return nil, false
	}
	return reg.images, true
}
