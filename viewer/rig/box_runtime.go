package rig

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/rigview-go/common"
	"github.com/Carmen-Shannon/rigview-go/viewer/render"
)

// boxRuntime is a reference Runtime that presents each rig as its skeleton's
// declared bounding box. It decodes only the animation names, skin names, and
// setup-pose dimensions from the skeleton JSON; pose evaluation and skinning
// are left to a full skeletal runtime. Useful for exercising the binding and
// slot pipeline end to end without a GPU skinning implementation.
type boxRuntime struct {
	source DataSource
}

var _ Runtime = &boxRuntime{}

// NewBoxRuntime creates a Runtime that renders rigs as skeleton-sized boxes.
//
// Parameters:
//   - source: resolver from registration keys to loaded resource bytes
//
// Returns:
//   - Runtime: the box runtime
func NewBoxRuntime(source DataSource) Runtime {
	return &boxRuntime{source: source}
}

// skeletonHeader mirrors the subset of the skeleton JSON the box runtime
// reads: setup-pose dimensions, skin names, and animation names. Skins appear
// either as an array of objects (current exports) or as an object keyed by
// name (legacy exports); both are accepted.
type skeletonHeader struct {
	Skeleton struct {
		Width  float32 `json:"width"`
		Height float32 `json:"height"`
	} `json:"skeleton"`
	Skins      json.RawMessage            `json:"skins"`
	Animations map[string]json.RawMessage `json:"animations"`
}

func (r *boxRuntime) Instantiate(_ context.Context, skeletonKey, _ string) (Instance, error) {
	data, ok := r.source.Resource(skeletonKey)
	if !ok {
		return nil, fmt.Errorf("rig: skeleton %q is not loaded", skeletonKey)
	}

	var header skeletonHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("rig: failed to decode skeleton %q: %w", skeletonKey, err)
	}

	animations := make([]string, 0, len(header.Animations))
	for name := range header.Animations {
		animations = append(animations, name)
	}
	sort.Strings(animations)

	skins, err := skinNames(header.Skins)
	if err != nil {
		return nil, fmt.Errorf("rig: failed to decode skins of %q: %w", skeletonKey, err)
	}

	width := header.Skeleton.Width
	height := header.Skeleton.Height
	if width <= 0 {
		width = defaultBoxSize
	}
	if height <= 0 {
		height = defaultBoxSize
	}

	return &boxInstance{
		width:      width,
		height:     height,
		animations: animations,
		skins:      skins,
		visible:    true,
		playing:    true,
		scale:      1,
	}, nil
}

// skinNames extracts skin names from either export format.
func skinNames(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var asArray []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &asArray); err == nil {
		names := make([]string, 0, len(asArray))
		for _, s := range asArray {
			names = append(names, s.Name)
		}
		return names, nil
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(asObject))
	for name := range asObject {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// defaultBoxSize is used when the skeleton declares no setup-pose dimensions.
const defaultBoxSize = float32(128)

// boxInstance implements Instance with a center-anchored rectangle sized by
// the skeleton's setup pose and the applied uniform scale.
// Thread-safe for concurrent access.
type boxInstance struct {
	mu sync.RWMutex

	width  float32
	height float32

	position common.Vec2
	visible  bool
	disposed bool

	animations []string
	skins      []string
	animation  string
	skin       string
	loop       bool
	playing    bool
	scale      float32
}

var _ Instance = &boxInstance{}

func (b *boxInstance) Animations() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.animations))
	copy(out, b.animations)
	return out
}

func (b *boxInstance) Skins() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.skins))
	copy(out, b.skins)
	return out
}

func (b *boxInstance) Animation() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.animation
}

func (b *boxInstance) SetAnimation(name string, loop bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.animations {
		if a == name {
			b.animation = name
			b.loop = loop
			return nil
		}
	}
	return fmt.Errorf("rig: unknown animation %q", name)
}

func (b *boxInstance) Skin() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.skin
}

func (b *boxInstance) SetSkin(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.skins {
		if s == name {
			b.skin = name
			return nil
		}
	}
	return fmt.Errorf("rig: unknown skin %q", name)
}

func (b *boxInstance) Loop() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loop
}

func (b *boxInstance) SetLoop(loop bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loop = loop
}

func (b *boxInstance) Playing() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.playing
}

func (b *boxInstance) SetPlaying(playing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playing = playing
}

func (b *boxInstance) Scale() float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scale
}

func (b *boxInstance) SetScale(scale float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if scale > 0 {
		b.scale = scale
	}
}

func (b *boxInstance) SetPosition(x, y float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.position = common.Vec2{X: x, Y: y}
}

func (b *boxInstance) Position() common.Vec2 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.position
}

func (b *boxInstance) ScreenBounds() common.Rect {
	b.mu.RLock()
	defer b.mu.RUnlock()
	w := b.width * b.scale
	h := b.height * b.scale
	return common.Rect{X: b.position.X - w/2, Y: b.position.Y - h/2, W: w, H: h}
}

func (b *boxInstance) Visible() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visible && !b.disposed
}

func (b *boxInstance) SetVisible(visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible = visible
}

func (b *boxInstance) Draw(list *render.DrawList) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.visible || b.disposed {
		return
	}

	w := b.width * b.scale
	h := b.height * b.scale
	rect := common.Rect{X: b.position.X - w/2, Y: b.position.Y - h/2, W: w, H: h}

	fill := render.Color{R: 0.35, G: 0.55, B: 0.85, A: 0.35}
	if !b.playing {
		fill = render.Color{R: 0.55, G: 0.55, B: 0.55, A: 0.35}
	}
	list.Quads = append(list.Quads, render.Quad{Rect: rect, Color: fill})

	// Diagonals mark the box as a stand-in rather than a rendered skin.
	edge := render.Color{R: 0.8, G: 0.85, B: 0.95, A: 0.9}
	list.Lines = append(list.Lines,
		render.Line{From: common.Vec2{X: rect.X, Y: rect.Y}, To: common.Vec2{X: rect.X + w, Y: rect.Y + h}, Color: edge},
		render.Line{From: common.Vec2{X: rect.X + w, Y: rect.Y}, To: common.Vec2{X: rect.X, Y: rect.Y + h}, Color: edge},
	)
}

func (b *boxInstance) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disposed = true
}
