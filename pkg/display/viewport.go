// Package display tracks the destination viewport: its pixel size and the
// current display rotation. Every change triggers a fresh fit pass through
// the registered callback; nothing is cached between changes.
package display

import (
	"sync"

	"github.com/camkit/go-viewfit/pkg/preview"
)

// State is a snapshot of the viewport.
type State struct {
	Window   preview.Size            `json:"window"`
	Rotation preview.DisplayRotation `json:"rotation"`
}

// Ready reports whether the viewport has been laid out. A zero window is a
// legitimate state before first layout and must not reach the transform math.
func (s State) Ready() bool {
	return s.Window.Width > 0 && s.Window.Height > 0
}

// Viewport holds the current viewport state.
type Viewport struct {
	mu    sync.RWMutex
	state State

	// Callback when the viewport changes (size or rotation)
	OnChange func(State)
}

// NewViewport creates a viewport with no layout yet.
func NewViewport() *Viewport {
	return &Viewport{}
}

// State returns the current viewport snapshot.
func (v *Viewport) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// SetWindow updates the viewport pixel size.
func (v *Viewport) SetWindow(window preview.Size) {
	v.update(func(s *State) { s.Window = window })
}

// SetRotation updates the display rotation.
func (v *Viewport) SetRotation(rotation preview.DisplayRotation) {
	v.update(func(s *State) { s.Rotation = rotation })
}

// Set replaces the whole viewport state.
func (v *Viewport) Set(state State) {
	v.update(func(s *State) { *s = state })
}

func (v *Viewport) update(apply func(*State)) {
	v.mu.Lock()
	before := v.state
	apply(&v.state)
	after := v.state
	callback := v.OnChange
	v.mu.Unlock()

	if callback != nil && after != before {
		callback(after)
	}
}
