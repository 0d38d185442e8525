package asset

// BinderBuilderOption is a functional option for configuring a Binder.
// Use the With* functions to create options.
type BinderBuilderOption func(b *binder)

// WithBlobStore sets the blob store the binder allocates transient URIs
// from. Defaults to a fresh store. The viewer shares one store between the
// binder and the in-memory manager so loads can resolve the URIs.
//
// Parameters:
//   - store: the blob store to use
//
// Returns:
//   - BinderBuilderOption: option function to apply
func WithBlobStore(store *BlobStore) BinderBuilderOption {
	return func(b *binder) {
		b.store = store
	}
}

// WithKeyPrefix sets the prefix woven into every registration key the binder
// creates. Defaults to "rigview". Keys remain session-unique regardless of
// prefix thanks to the uuid suffix.
//
// Parameters:
//   - prefix: the registration key prefix
//
// Returns:
//   - BinderBuilderOption: option function to apply
func WithKeyPrefix(prefix string) BinderBuilderOption {
	return func(b *binder) {
		if prefix != "" {
			b.keyPrefix = prefix
		}
	}
}
