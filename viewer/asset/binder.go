package asset

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Carmen-Shannon/rigview-go/viewer/atlas"
	"github.com/Carmen-Shannon/rigview-go/viewer/rig"
)

// NamedBlob is one user-supplied image file: its name (matched against atlas
// page names) and its raw contents.
type NamedBlob struct {
	Name string
	Data []byte
}

// RigDescriptor is the raw input of a bind request: a skeleton blob, an
// atlas descriptor blob, and the supplied image files. Descriptors are
// ephemeral; nothing retains them after the bind completes.
type RigDescriptor struct {
	// Skeleton is the skeleton definition blob.
	Skeleton []byte

	// Atlas is the atlas descriptor text blob.
	Atlas []byte

	// Images are the supplied image files in selection order.
	Images []NamedBlob
}

// BindResult is the product of a successful bind: the live rig instance, the
// bundle that must eventually be released, and the rig's declared animation
// and skin names.
type BindResult struct {
	Instance   rig.Instance
	Bundle     *Bundle
	Animations []string
	Skins      []string
}

// Binder turns rig descriptors into bound, renderable rig instances. Binds
// may suspend on asset-manager I/O and are safely abandonable: a caller that
// discards the result only has to release the returned bundle.
type Binder interface {
	// Bind registers, loads, and instantiates a rig from the descriptor.
	//
	// On any failure at or after registration, every registration key and
	// transient URI the bind created is released before the error is
	// returned; a failed bind never leaves partial registrations live.
	//
	// Parameters:
	//   - ctx: context for cancellation of manager I/O
	//   - descriptor: the raw rig input
	//   - correlationID: caller-supplied tag woven into registration keys
	//     for debuggability (e.g. a slot identity)
	//
	// Returns:
	//   - *BindResult: the bound rig and its bundle
	//   - error: atlas.ErrNoPages, *MissingPagesError, *RegistrationError,
	//     or *InstantiationError
	Bind(ctx context.Context, descriptor RigDescriptor, correlationID string) (*BindResult, error)
}

// binder implements the Binder interface.
type binder struct {
	manager   Manager
	runtime   rig.Runtime
	store     *BlobStore
	keyPrefix string
}

var _ Binder = &binder{}

// NewBinder creates a Binder using the given asset manager and skeletal
// runtime. Panics if either is nil, since a binder cannot operate without
// both collaborators.
//
// Parameters:
//   - manager: the external asset manager (must not be nil)
//   - runtime: the skeletal runtime constructing instances (must not be nil)
//   - options: functional options to further configure the binder
//
// Returns:
//   - Binder: the configured binder
func NewBinder(manager Manager, runtime rig.Runtime, options ...BinderBuilderOption) Binder {
	if manager == nil {
		panic("asset: NewBinder requires a non-nil Manager")
	}
	if runtime == nil {
		panic("asset: NewBinder requires a non-nil Runtime")
	}

	b := &binder{
		manager:   manager,
		runtime:   runtime,
		keyPrefix: "rigview",
	}
	for _, option := range options {
		option(b)
	}
	if b.store == nil {
		b.store = NewBlobStore()
	}
	return b
}

// Store returns the blob store the binder allocates transient URIs from.
//
// Returns:
//   - *BlobStore: the binder's blob store
func (b *binder) Store() *BlobStore {
	return b.store
}

func (b *binder) Bind(ctx context.Context, descriptor RigDescriptor, correlationID string) (*BindResult, error) {
	pages, err := atlas.Pages(string(descriptor.Atlas))
	if err != nil {
		return nil, err
	}

	imagesByName := make(map[string][]byte, len(descriptor.Images))
	for _, img := range descriptor.Images {
		imagesByName[img.Name] = img.Data
	}

	// Resolve page images before allocating anything, so a missing page
	// leaves zero registrations and zero URIs behind.
	var uris []string
	put := func(data []byte) string {
		uri := b.store.Put(data)
		uris = append(uris, uri)
		return uri
	}

	var images AtlasImages
	if len(pages) == 1 && len(descriptor.Images) == 1 {
		// Single page, single image: bind directly, no name matching.
		images = SingleImage{URI: put(descriptor.Images[0].Data)}
	} else {
		var missing []string
		for _, page := range pages {
			if _, ok := imagesByName[page]; !ok {
				missing = append(missing, page)
			}
		}
		if len(missing) > 0 {
			for _, uri := range uris {
				b.store.Revoke(uri)
			}
			return nil, &MissingPagesError{Pages: missing}
		}

		named := make(map[string]string, len(pages))
		for _, page := range pages {
			if _, ok := named[page]; ok {
				continue // duplicate page declaration shares one image
			}
			named[page] = put(imagesByName[page])
		}
		images = NamedImages{URIs: named}
	}

	suffix := uuid.NewString()
	skeletonKey := fmt.Sprintf("%s-%s-skeleton-%s", b.keyPrefix, correlationID, suffix)
	atlasKey := fmt.Sprintf("%s-%s-atlas-%s", b.keyPrefix, correlationID, suffix)
	keys := []string{skeletonKey, atlasKey}

	b.manager.Register(skeletonKey, put(descriptor.Skeleton), KindSkeleton, nil)
	b.manager.Register(atlasKey, put(descriptor.Atlas), KindAtlas, images)

	// From here on, any failure must unwind both registrations and every
	// allocated URI before propagating.
	unwind := func() {
		_ = b.manager.Unload(ctx, keys...)
		for _, uri := range uris {
			b.store.Revoke(uri)
		}
	}

	if err := b.manager.Load(ctx, keys...); err != nil {
		unwind()
		return nil, &RegistrationError{Keys: keys, Err: err}
	}

	instance, err := b.runtime.Instantiate(ctx, skeletonKey, atlasKey)
	if err != nil {
		unwind()
		return nil, &InstantiationError{Err: err}
	}

	return &BindResult{
		Instance:   instance,
		Bundle:     newBundle(b.manager, b.store, skeletonKey, atlasKey, uris),
		Animations: instance.Animations(),
		Skins:      instance.Skins(),
	}, nil
}
