package asset

import (
	"sync"

	"github.com/google/uuid"
)

// uriScheme prefixes every transient blob URI allocated by a BlobStore.
const uriScheme = "mem://"

// BlobStore allocates transient URIs for raw user-supplied blobs. Each URI
// is valid until explicitly revoked; the binder allocates URIs during a bind
// and the owning bundle revokes them exactly once on release.
// Thread-safe for concurrent access.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates an empty blob store.
//
// Returns:
//   - *BlobStore: the new store
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores a blob and returns a fresh transient URI for it. URIs are
// uuid-based, so collisions within a session are practically impossible.
//
// Parameters:
//   - data: the blob to store (retained by reference, not copied)
//
// Returns:
//   - string: the allocated transient URI
func (s *BlobStore) Put(data []byte) string {
	uri := uriScheme + uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[uri] = data
	return uri
}

// Get returns the blob for a URI.
//
// Parameters:
//   - uri: the transient URI
//
// Returns:
//   - []byte: the stored blob
//   - bool: false if the URI is unknown or revoked
func (s *BlobStore) Get(uri string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[uri]
	return data, ok
}

// Revoke releases the blob for a URI. Revoking an unknown or already revoked
// URI is a no-op.
//
// Parameters:
//   - uri: the transient URI to revoke
func (s *BlobStore) Revoke(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, uri)
}

// Len returns the number of live (unrevoked) URIs.
//
// Returns:
//   - int: the live URI count
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
