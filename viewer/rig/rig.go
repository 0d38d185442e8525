// package rig defines the skeletal-animation runtime boundary: the live
// Instance handle the viewer manipulates and the Runtime that constructs
// instances from registered assets. The real pose evaluation and skinning
// live behind these interfaces; the viewer core only issues commands.
package rig

import (
	"context"

	"github.com/Carmen-Shannon/rigview-go/viewer/render"
)

// Instance is a live, renderable rig handle. Every Instance is exclusively
// owned by one slot; the lifecycle coordinator is the only mutator.
// An Instance is also a render.Node so the stage can attach it directly.
type Instance interface {
	render.Node

	// Animations returns the animation names declared by the rig's
	// skeleton, in a stable order.
	//
	// Returns:
	//   - []string: the declared animation names
	Animations() []string

	// Skins returns the skin names declared by the rig's skeleton, in a
	// stable order.
	//
	// Returns:
	//   - []string: the declared skin names
	Skins() []string

	// Animation returns the currently playing animation name, or "" when
	// none has been applied.
	//
	// Returns:
	//   - string: the current animation name
	Animation() string

	// SetAnimation starts the named animation.
	//
	// Parameters:
	//   - name: an animation name from Animations()
	//   - loop: whether the animation repeats
	//
	// Returns:
	//   - error: error if the rig declares no such animation
	SetAnimation(name string, loop bool) error

	// Skin returns the currently applied skin name, or "" when none has
	// been applied.
	//
	// Returns:
	//   - string: the current skin name
	Skin() string

	// SetSkin applies the named skin.
	//
	// Parameters:
	//   - name: a skin name from Skins()
	//
	// Returns:
	//   - error: error if the rig declares no such skin
	SetSkin(name string) error

	// Loop returns whether the current animation repeats.
	//
	// Returns:
	//   - bool: the loop flag
	Loop() bool

	// SetLoop changes whether the current animation repeats.
	//
	// Parameters:
	//   - loop: the new loop flag
	SetLoop(loop bool)

	// Playing reports whether the animation timeline is advancing.
	//
	// Returns:
	//   - bool: true when playing, false when paused
	Playing() bool

	// SetPlaying pauses or resumes the animation timeline by zeroing or
	// restoring the runtime's time scale.
	//
	// Parameters:
	//   - playing: true to play, false to pause
	SetPlaying(playing bool)

	// Scale returns the uniform scale applied to the rig.
	//
	// Returns:
	//   - float32: the uniform scale factor
	Scale() float32

	// SetScale applies a uniform scale to the rig.
	//
	// Parameters:
	//   - scale: the uniform scale factor (must be > 0)
	SetScale(scale float32)

	// Dispose releases the runtime resources held by this instance. The
	// instance must not be used afterwards. Safe to call multiple times.
	Dispose()
}

// Runtime constructs rig instances from assets previously registered and
// loaded through the asset manager. Implementations resolve the registration
// keys to their loaded resources.
type Runtime interface {
	// Instantiate builds a live Instance from a loaded skeleton and atlas.
	//
	// Parameters:
	//   - ctx: context for cancellation of the construction
	//   - skeletonKey: the asset-manager key of the loaded skeleton
	//   - atlasKey: the asset-manager key of the loaded atlas
	//
	// Returns:
	//   - Instance: the live rig handle
	//   - error: error if construction is rejected
	Instantiate(ctx context.Context, skeletonKey, atlasKey string) (Instance, error)
}

// DataSource resolves an asset-manager registration key to the loaded
// resource bytes. Satisfied by asset.MemoryManager; declared here so runtimes
// stay decoupled from the asset package.
type DataSource interface {
	// Resource returns the loaded bytes for a registration key.
	//
	// Parameters:
	//   - key: the registration key
	//
	// Returns:
	//   - []byte: the loaded resource data
	//   - bool: false if the key has not been loaded
	Resource(key string) ([]byte, bool)
}
