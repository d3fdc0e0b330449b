package preview

import (
	"errors"
	"math"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestBuildTransformPortraitWindowLandscapeBuffer(t *testing.T) {
	// 1080x1920 portrait viewport fed by a 1920x1080 sensor buffer on a
	// device in its natural orientation.
	tr, err := BuildTransform(Size{1080, 1920}, Size{1920, 1080}, 90, LensFacingBack, Rotation0)
	if err != nil {
		t.Fatalf("BuildTransform returned error: %v", err)
	}

	if !floatEquals(tr.ScaleX, 1) || !floatEquals(tr.ScaleY, 1) {
		t.Errorf("scale = (%v, %v), want (1, 1)", tr.ScaleX, tr.ScaleY)
	}
	if !floatEquals(tr.RotationDegrees, 0) {
		t.Errorf("rotation = %v, want 0", tr.RotationDegrees)
	}
	if !floatEquals(tr.PivotX, 540) || !floatEquals(tr.PivotY, 960) {
		t.Errorf("pivot = (%v, %v), want (540, 960)", tr.PivotX, tr.PivotY)
	}
}

func TestBuildTransformRotatedDisplay(t *testing.T) {
	// Same hardware, display rotated a quarter turn: axes align, so the
	// buffer only needs the aspect correction plus a counter-rotation.
	tr, err := BuildTransform(Size{1080, 1920}, Size{1920, 1080}, 90, LensFacingBack, Rotation90)
	if err != nil {
		t.Fatalf("BuildTransform returned error: %v", err)
	}

	want := 1920.0 / 1080.0
	if !floatEquals(tr.ScaleX, want) {
		t.Errorf("ScaleX = %v, want %v", tr.ScaleX, want)
	}
	if !floatEquals(tr.ScaleY, want) {
		t.Errorf("ScaleY = %v, want %v", tr.ScaleY, want)
	}
	if !floatEquals(tr.RotationDegrees, -90) {
		t.Errorf("rotation = %v, want -90", tr.RotationDegrees)
	}
}

func TestBuildTransformZeroPreviewSize(t *testing.T) {
	// The selector sentinel must surface as a reported failure, never as a
	// divide by zero.
	selected := SelectBestSize(Size{1080, 1920}, nil)
	if !selected.IsZero() {
		t.Fatalf("expected zero sentinel from empty candidates, got %v", selected)
	}

	_, err := BuildTransform(Size{1080, 1920}, selected, 90, LensFacingBack, Rotation0)
	if !errors.Is(err, ErrInvalidPreviewSize) {
		t.Errorf("error = %v, want ErrInvalidPreviewSize", err)
	}
}

func TestBuildTransformZeroWindowSize(t *testing.T) {
	_, err := BuildTransform(Size{}, Size{1920, 1080}, 90, LensFacingBack, Rotation0)
	if !errors.Is(err, ErrInvalidWindowSize) {
		t.Errorf("error = %v, want ErrInvalidWindowSize", err)
	}
}

func TestBuildTransformCropToFill(t *testing.T) {
	// When axes swap, the crop scale must leave one axis at exactly 1 and
	// never shrink the other below 1: covering, not letterboxing.
	windows := []Size{{1080, 1920}, {720, 1280}, {1440, 3120}}
	previews := []Size{{1920, 1080}, {1280, 720}, {4032, 3024}}

	for _, facing := range []LensFacing{LensFacingBack, LensFacingFront} {
		for _, window := range windows {
			for _, previewSize := range previews {
				for _, rotation := range []DisplayRotation{Rotation0, Rotation180} {
					rel := RelativeRotation(90, rotation.Degrees(), facing)
					if rel%180 == 0 {
						continue
					}
					tr, err := BuildTransform(window, previewSize, 90, facing, rotation)
					if err != nil {
						t.Fatalf("BuildTransform(%v, %v) error: %v", window, previewSize, err)
					}
					lo := math.Min(tr.ScaleX, tr.ScaleY)
					hi := math.Max(tr.ScaleX, tr.ScaleY)
					if !floatEquals(lo, 1) {
						t.Errorf("window=%v preview=%v: min scale = %v, want 1", window, previewSize, lo)
					}
					if hi < 1-floatTolerance {
						t.Errorf("window=%v preview=%v: max scale = %v, want >= 1", window, previewSize, hi)
					}
				}
			}
		}
	}
}

func TestBuildTransformLandscapeSensor(t *testing.T) {
	// A landscape-native sensor flips the axis pairing relative to the 90
	// degree mounting for the same relative rotation.
	tr, err := BuildTransform(Size{1920, 1080}, Size{1920, 1080}, 0, LensFacingBack, Rotation0)
	if err != nil {
		t.Fatalf("BuildTransform returned error: %v", err)
	}

	// relative rotation 0 -> no axis swap, but the pairing table
	// cross-compares: scaleX = 1920/1080, scaleY = 1080/1920, and the
	// non-rotated aspect correction is applied on top.
	scaleX := 1920.0 / 1080.0
	scaleY := 1080.0 / 1920.0
	final := math.Max(scaleX, scaleY)
	wantX := 1080.0 / 1920.0 / scaleY * final
	wantY := 1920.0 / 1080.0 / scaleX * final
	if !floatEquals(tr.ScaleX, wantX) {
		t.Errorf("ScaleX = %v, want %v", tr.ScaleX, wantX)
	}
	if !floatEquals(tr.ScaleY, wantY) {
		t.Errorf("ScaleY = %v, want %v", tr.ScaleY, wantY)
	}
}

func TestTransformMatrixPivotFixedPoint(t *testing.T) {
	tr, err := BuildTransform(Size{1080, 1920}, Size{1920, 1080}, 90, LensFacingBack, Rotation90)
	if err != nil {
		t.Fatalf("BuildTransform returned error: %v", err)
	}

	m := tr.Matrix()
	x, y := m.Apply(tr.PivotX, tr.PivotY)
	if !floatEquals(x, tr.PivotX) || !floatEquals(y, tr.PivotY) {
		t.Errorf("pivot moved: (%v, %v) -> (%v, %v)", tr.PivotX, tr.PivotY, x, y)
	}
}

func TestMatrixScaleThenRotate(t *testing.T) {
	tr := Transform{ScaleX: 2, ScaleY: 1, RotationDegrees: -90}

	m := tr.Matrix()
	x, y := m.Apply(1, 0)
	// Scale first: (1,0) -> (2,0). Then rotate -90: (2,0) -> (0,-2).
	if !floatEquals(x, 0) || !floatEquals(y, -2) {
		t.Errorf("Apply(1, 0) = (%v, %v), want (0, -2)", x, y)
	}
}

func TestMatrixIdentity(t *testing.T) {
	m := Identity()
	x, y := m.Apply(123.5, -7)
	if !floatEquals(x, 123.5) || !floatEquals(y, -7) {
		t.Errorf("identity moved point to (%v, %v)", x, y)
	}
}
