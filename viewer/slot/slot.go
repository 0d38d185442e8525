// package slot models the viewer's addressable presentation units: the
// singleton slot used in single mode and the fixed 5×5 grid, together with
// the grid's derived geometry and hit testing. The package holds no I/O and
// no rig handles; live instances and bundles are owned by the lifecycle
// coordinator and keyed by the IDs defined here.
package slot

import (
	"fmt"
	"sync"
)

const (
	// GridRows is the fixed number of grid rows.
	GridRows = 5

	// GridCols is the fixed number of grid columns.
	GridCols = 5
)

// ID identifies a slot: a (row, col) grid cell, or the singleton identity
// used in single mode.
type ID struct {
	Row int
	Col int
}

// Single is the identity of the single-mode slot.
var Single = ID{Row: -1, Col: -1}

// IsSingle reports whether the ID names the single-mode slot.
//
// Returns:
//   - bool: true for the single-mode slot
func (id ID) IsSingle() bool {
	return id == Single
}

// Valid reports whether the ID names an addressable slot: the single-mode
// slot or a cell inside the fixed grid.
//
// Returns:
//   - bool: true if addressable
func (id ID) Valid() bool {
	if id.IsSingle() {
		return true
	}
	return id.Row >= 0 && id.Row < GridRows && id.Col >= 0 && id.Col < GridCols
}

func (id ID) String() string {
	if id.IsSingle() {
		return "single"
	}
	return fmt.Sprintf("r%dc%d", id.Row, id.Col)
}

// State is a slot's lifecycle state.
type State int

const (
	// StateEmpty means the slot holds no rig and no load is in flight.
	StateEmpty State = iota

	// StateLoading means a bind is in flight for the slot.
	StateLoading

	// StateBound means the slot holds a live rig instance.
	StateBound

	// StateFailed means the last bind failed; the slot holds no rig but
	// retains the failure message.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateBound:
		return "bound"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Slot is one slot's record. Records are value types: the registry hands out
// copies and applies mutations through Update, so readers never observe a
// partially mutated record.
type Slot struct {
	// ID is the slot's identity.
	ID ID

	// State is the current lifecycle state.
	State State

	// Generation strictly increases each time a load is initiated for
	// this slot. A completed load is applied only if its captured
	// generation still equals this value; otherwise it was superseded.
	Generation uint64

	// Animations are the bound rig's declared animation names.
	Animations []string

	// Skins are the bound rig's declared skin names.
	Skins []string

	// Animation is the selected animation name, or "".
	Animation string

	// Skin is the selected skin name, or "".
	Skin string

	// Loop is whether the selected animation repeats.
	Loop bool

	// Playing is whether the animation timeline advances.
	Playing bool

	// Scale is the uniform scale applied to the bound rig.
	Scale float32

	// Status is a human-readable state description for the UI.
	Status string

	// Err is the last bind failure message, or "".
	Err string
}

// emptySlot returns the empty-defaults record for an identity. The previous
// generation is carried over so completions of superseded loads can never
// collide with generations issued after a clear.
func emptySlot(id ID, generation uint64) Slot {
	return Slot{
		ID:         id,
		State:      StateEmpty,
		Generation: generation,
		Loop:       true,
		Playing:    true,
		Scale:      1,
		Status:     "empty",
	}
}

// Registry holds the single-mode slot record and the fixed grid of records.
// All access is copy-in/copy-out under a read-write lock; Update applies a
// caller-supplied transformation atomically.
// Thread-safe for concurrent access.
type Registry struct {
	mu     sync.RWMutex
	single Slot
	grid   [GridRows][GridCols]Slot
}

// NewRegistry creates a registry with every slot at empty defaults.
//
// Returns:
//   - *Registry: the new registry
func NewRegistry() *Registry {
	r := &Registry{
		single: emptySlot(Single, 0),
	}
	for row := 0; row < GridRows; row++ {
		for col := 0; col < GridCols; col++ {
			r.grid[row][col] = emptySlot(ID{Row: row, Col: col}, 0)
		}
	}
	return r
}

// Get returns a copy of the slot record for an identity.
//
// Parameters:
//   - id: the slot identity
//
// Returns:
//   - Slot: a copy of the record
//   - bool: false if the identity is not addressable
func (r *Registry) Get(id ID) (Slot, bool) {
	if !id.Valid() {
		return Slot{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.slot(id), true
}

// Update applies fn to the slot record under the write lock. The
// transformation sees and mutates the live record; readers only ever observe
// it fully applied.
//
// Parameters:
//   - id: the slot identity
//   - fn: the transformation to apply
//
// Returns:
//   - Slot: a copy of the record after the transformation
//   - bool: false if the identity is not addressable (fn is not called)
func (r *Registry) Update(id ID, fn func(*Slot)) (Slot, bool) {
	if !id.Valid() {
		return Slot{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(id)
	fn(s)
	return *s, true
}

// Reset returns the slot to empty defaults, preserving its generation.
//
// Parameters:
//   - id: the slot identity
//
// Returns:
//   - bool: false if the identity is not addressable
func (r *Registry) Reset(id ID) bool {
	if !id.Valid() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(id)
	*s = emptySlot(id, s.Generation)
	return true
}

// GridIDs returns every grid cell identity in row-major order. The
// single-mode slot is not included.
//
// Returns:
//   - []ID: the 25 grid identities
func (r *Registry) GridIDs() []ID {
	ids := make([]ID, 0, GridRows*GridCols)
	for row := 0; row < GridRows; row++ {
		for col := 0; col < GridCols; col++ {
			ids = append(ids, ID{Row: row, Col: col})
		}
	}
	return ids
}

// ForEach calls fn with a copy of every slot record, single-mode slot first,
// then the grid in row-major order.
//
// Parameters:
//   - fn: callback receiving each record copy
func (r *Registry) ForEach(fn func(Slot)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.single)
	for row := 0; row < GridRows; row++ {
		for col := 0; col < GridCols; col++ {
			fn(r.grid[row][col])
		}
	}
}

// slot returns the live record pointer. Caller must hold the lock and have
// validated the identity.
func (r *Registry) slot(id ID) *Slot {
	if id.IsSingle() {
		return &r.single
	}
	return &r.grid[id.Row][id.Col]
}
