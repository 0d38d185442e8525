package asset

import (
	"context"
	"sync"
)

// Bundle is the set of asset-manager registrations and transient blob URIs
// created by one successful bind. A Bundle is exclusively owned by the slot
// holding the rig it belongs to; ownership transfers to the lifecycle
// coordinator at bind completion. Release is idempotent: the resources are
// released exactly once no matter how many callers race to retire the
// bundle.
type Bundle struct {
	skeletonKey string
	atlasKey    string
	uris        []string

	manager Manager
	store   *BlobStore

	releaseOnce sync.Once
	releaseErr  error
}

// newBundle creates a Bundle owning the given keys and URIs.
func newBundle(manager Manager, store *BlobStore, skeletonKey, atlasKey string, uris []string) *Bundle {
	return &Bundle{
		skeletonKey: skeletonKey,
		atlasKey:    atlasKey,
		uris:        uris,
		manager:     manager,
		store:       store,
	}
}

// SkeletonKey returns the skeleton's registration key.
//
// Returns:
//   - string: the skeleton key
func (b *Bundle) SkeletonKey() string {
	return b.skeletonKey
}

// AtlasKey returns the atlas's registration key.
//
// Returns:
//   - string: the atlas key
func (b *Bundle) AtlasKey() string {
	return b.atlasKey
}

// TransientURIs returns the blob URIs allocated for this bundle.
//
// Returns:
//   - []string: the transient URIs
func (b *Bundle) TransientURIs() []string {
	out := make([]string, len(b.uris))
	copy(out, b.uris)
	return out
}

// Release unregisters the bundle's asset-manager keys and revokes its
// transient URIs. Only the first call has any effect; subsequent calls
// return the first call's result.
//
// Parameters:
//   - ctx: context for cancellation of the unload
//
// Returns:
//   - error: error if the manager failed to unload (URIs are revoked
//     regardless)
func (b *Bundle) Release(ctx context.Context) error {
	b.releaseOnce.Do(func() {
		b.releaseErr = b.manager.Unload(ctx, b.skeletonKey, b.atlasKey)
		for _, uri := range b.uris {
			b.store.Revoke(uri)
		}
	})
	return b.releaseErr
}
