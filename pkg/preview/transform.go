package preview

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidPreviewSize is returned when the selected capture size has a
	// zero dimension, typically the SelectBestSize sentinel.
	ErrInvalidPreviewSize = errors.New("preview: invalid preview size")

	// ErrInvalidWindowSize is returned when the viewport has a zero
	// dimension, e.g. before the view has been laid out.
	ErrInvalidWindowSize = errors.New("preview: invalid window size")
)

// Transform is a non-uniform scale about a pivot followed by a rotation about
// the same pivot. The pivot is always the viewport center.
type Transform struct {
	ScaleX          float64 `json:"scale_x"`
	ScaleY          float64 `json:"scale_y"`
	RotationDegrees float64 `json:"rotation_degrees"`
	PivotX          float64 `json:"pivot_x"`
	PivotY          float64 `json:"pivot_y"`
}

// axisKey selects a row of the scale pairing table.
type axisKey struct {
	sensorLandscape  bool // sensor mounted at 0 degrees
	rotationRequired bool // relative rotation swaps axes
}

// scalePairing says, per sensor-mounting/rotation combination, whether window
// axes are cross-compared against buffer axes. The raw buffer always arrives
// in the sensor's native axis order, so the buffer axis that maps to each
// screen axis depends on both booleans.
var scalePairing = map[axisKey]bool{
	{sensorLandscape: false, rotationRequired: false}: false,
	{sensorLandscape: false, rotationRequired: true}:  true,
	{sensorLandscape: true, rotationRequired: false}:  true,
	{sensorLandscape: true, rotationRequired: true}:   false,
}

// BuildTransform derives the transform that maps a capture buffer of
// previewSize onto a viewport of window size with crop-to-fill scaling and
// upright orientation. The caller is responsible for also setting previewSize
// as the buffer size of the rendering target; this function only computes
// geometry.
func BuildTransform(window, previewSize Size, sensorOrientationDegrees int, facing LensFacing, rotation DisplayRotation) (Transform, error) {
	if window.Width <= 0 || window.Height <= 0 {
		return Transform{}, fmt.Errorf("%w: %s", ErrInvalidWindowSize, window)
	}
	if previewSize.Width <= 0 || previewSize.Height <= 0 {
		return Transform{}, fmt.Errorf("%w: %s", ErrInvalidPreviewSize, previewSize)
	}

	surfaceRotationDegrees := rotation.Degrees()
	relativeRotation := RelativeRotation(sensorOrientationDegrees, surfaceRotationDegrees, facing)
	rotationRequired := relativeRotation%180 != 0

	ww := float64(window.Width)
	wh := float64(window.Height)
	pw := float64(previewSize.Width)
	ph := float64(previewSize.Height)

	var scaleX, scaleY float64
	if scalePairing[axisKey{sensorOrientationDegrees == 0, rotationRequired}] {
		scaleX = ww / ph
		scaleY = wh / pw
	} else {
		scaleX = ww / pw
		scaleY = wh / ph
	}

	// Crop-to-fill: the axis needing less scale is over-scaled to match.
	finalScale := math.Max(scaleX, scaleY)

	t := Transform{
		PivotX:          ww / 2,
		PivotY:          wh / 2,
		RotationDegrees: -float64(surfaceRotationDegrees),
	}
	if rotationRequired {
		t.ScaleX = finalScale / scaleX
		t.ScaleY = finalScale / scaleY
	} else {
		// The screen axes must be cross-normalized before the crop scale
		// when no axis swap happens.
		t.ScaleX = wh / ww / scaleY * finalScale
		t.ScaleY = ww / wh / scaleX * finalScale
	}
	return t, nil
}
