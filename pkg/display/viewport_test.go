package display

import (
	"sync"
	"testing"

	"github.com/camkit/go-viewfit/pkg/preview"
)

func TestViewportInitialState(t *testing.T) {
	v := NewViewport()

	state := v.State()
	if state.Ready() {
		t.Error("fresh viewport should not be ready")
	}
	if state.Rotation != preview.Rotation0 {
		t.Errorf("initial rotation = %v, want Rotation0", state.Rotation)
	}
}

func TestViewportSetWindow(t *testing.T) {
	v := NewViewport()

	var got State
	calls := 0
	v.OnChange = func(s State) {
		got = s
		calls++
	}

	v.SetWindow(preview.Size{Width: 1080, Height: 1920})

	if calls != 1 {
		t.Fatalf("OnChange called %d times, want 1", calls)
	}
	if !got.Ready() {
		t.Error("viewport with a laid-out window should be ready")
	}
	if got.Window != (preview.Size{Width: 1080, Height: 1920}) {
		t.Errorf("window = %v", got.Window)
	}
}

func TestViewportNoCallbackOnNoop(t *testing.T) {
	v := NewViewport()
	v.SetWindow(preview.Size{Width: 1080, Height: 1920})

	calls := 0
	v.OnChange = func(State) { calls++ }

	// Same value again: no change, no callback.
	v.SetWindow(preview.Size{Width: 1080, Height: 1920})
	v.SetRotation(preview.Rotation0)

	if calls != 0 {
		t.Errorf("OnChange called %d times for no-op updates, want 0", calls)
	}
}

func TestViewportSetRotation(t *testing.T) {
	v := NewViewport()

	var got State
	v.OnChange = func(s State) { got = s }

	v.SetRotation(preview.Rotation270)
	if got.Rotation != preview.Rotation270 {
		t.Errorf("rotation = %v, want Rotation270", got.Rotation)
	}
}

func TestViewportConcurrentUpdates(t *testing.T) {
	v := NewViewport()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			v.SetWindow(preview.Size{Width: n + 1, Height: n + 1})
		}(i)
		go func() {
			defer wg.Done()
			_ = v.State()
		}()
	}
	wg.Wait()

	if !v.State().Ready() {
		t.Error("viewport should be ready after updates")
	}
}
