package stage

import (
	"github.com/Carmen-Shannon/rigview-go/viewer/slot"
)

// SynchronizerBuilderOption is a functional option for configuring a
// Synchronizer. Use the With* functions to create options.
type SynchronizerBuilderOption func(s *synchronizer)

// WithMode sets the initial presentation mode. Defaults to ModeSingle.
//
// Parameters:
//   - mode: the initial mode
//
// Returns:
//   - SynchronizerBuilderOption: option function to apply
func WithMode(mode Mode) SynchronizerBuilderOption {
	return func(s *synchronizer) {
		s.mode = mode
	}
}

// WithGridSpec sets the grid geometry. Defaults to slot.DefaultGridSpec().
//
// Parameters:
//   - spec: the cell size and gap to use
//
// Returns:
//   - SynchronizerBuilderOption: option function to apply
func WithGridSpec(spec slot.GridSpec) SynchronizerBuilderOption {
	return func(s *synchronizer) {
		if spec.CellSize > 0 && spec.Gap >= 0 {
			s.spec = spec
		}
	}
}

// WithOutlinesVisible sets the initial bounding-outline visibility. Defaults
// to true.
//
// Parameters:
//   - visible: the initial outline visibility
//
// Returns:
//   - SynchronizerBuilderOption: option function to apply
func WithOutlinesVisible(visible bool) SynchronizerBuilderOption {
	return func(s *synchronizer) {
		s.outlinesVisible = visible
	}
}
