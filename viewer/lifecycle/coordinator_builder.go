package lifecycle

import (
	"context"

	"github.com/Carmen-Shannon/rigview-go/viewer/rig"
	"github.com/Carmen-Shannon/rigview-go/viewer/slot"
)

// CoordinatorBuilderOption is a functional option for configuring a
// Coordinator. Use the With* functions to create options.
type CoordinatorBuilderOption func(c *coordinator)

// WithContext sets the context passed to binds and bundle releases. Defaults
// to context.Background().
//
// Parameters:
//   - ctx: the context to use
//
// Returns:
//   - CoordinatorBuilderOption: option function to apply
func WithContext(ctx context.Context) CoordinatorBuilderOption {
	return func(c *coordinator) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithBindWorkers sets how many binds may run concurrently. Defaults to 2.
//
// Parameters:
//   - workers: the worker count (ignored if < 1)
//
// Returns:
//   - CoordinatorBuilderOption: option function to apply
func WithBindWorkers(workers int) CoordinatorBuilderOption {
	return func(c *coordinator) {
		if workers >= 1 {
			c.bindWorkers = workers
		}
	}
}

// WithInstallListener sets the callback invoked after a new instance is
// installed into a slot. Listeners run under the coordinator's mutex, in
// install order, and must not call back into the coordinator. The stage uses
// this to attach the instance to the scene.
//
// Parameters:
//   - fn: the install callback
//
// Returns:
//   - CoordinatorBuilderOption: option function to apply
func WithInstallListener(fn func(id slot.ID, instance rig.Instance)) CoordinatorBuilderOption {
	return func(c *coordinator) {
		c.onInstalled = fn
	}
}

// WithRetireListener sets the callback invoked just before an installed
// instance is disposed. Listeners run under the coordinator's mutex and must
// not call back into the coordinator. The stage uses this to detach the
// instance and drop its decorations.
//
// Parameters:
//   - fn: the retire callback
//
// Returns:
//   - CoordinatorBuilderOption: option function to apply
func WithRetireListener(fn func(id slot.ID, instance rig.Instance)) CoordinatorBuilderOption {
	return func(c *coordinator) {
		c.onRetired = fn
	}
}
