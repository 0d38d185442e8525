package viewer

import (
	"github.com/charmbracelet/log"

	"github.com/Carmen-Shannon/rigview-go/viewer/asset"
	"github.com/Carmen-Shannon/rigview-go/viewer/rig"
)

// ViewerBuilderOption is a functional option for configuring a viewer.
// Use the With* functions to create options.
type ViewerBuilderOption func(v *viewer)

// WithLogger sets the structured logger. Defaults to log.Default().
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithLogger(logger *log.Logger) ViewerBuilderOption {
	return func(v *viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithDescriptor supplies the rig descriptor loaded at startup and reused by
// later load commands.
//
// Parameters:
//   - descriptor: the raw rig input
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithDescriptor(descriptor asset.RigDescriptor) ViewerBuilderOption {
	return func(v *viewer) {
		v.descriptor = descriptor
		v.hasDescriptor = true
	}
}

// WithRuntime overrides the skeletal runtime used to instantiate rigs.
// Defaults to the built-in placeholder box runtime.
//
// Parameters:
//   - runtime: the runtime to use
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithRuntime(runtime rig.Runtime) ViewerBuilderOption {
	return func(v *viewer) {
		v.runtime = runtime
	}
}
