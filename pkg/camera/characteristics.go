package camera

import (
	"fmt"

	"github.com/camkit/go-viewfit/pkg/preview"
)

// Characteristics are the immutable facts about a camera device that the fit
// calculation needs: how the sensor is mounted, which way the lens points and
// which resolutions the hardware can emit. The size list may be empty when
// the capability query returned no data.
type Characteristics struct {
	SensorOrientation int                `json:"sensor_orientation"` // degrees, clockwise from natural orientation
	Facing            preview.LensFacing `json:"facing"`
	SupportedSizes    []preview.Size     `json:"supported_sizes"`
}

// Validate checks the characteristics for values the fit math cannot handle.
func (c Characteristics) Validate() error {
	if c.SensorOrientation%90 != 0 || c.SensorOrientation < 0 || c.SensorOrientation >= 360 {
		return fmt.Errorf("camera: sensor orientation %d is not a quarter turn", c.SensorOrientation)
	}
	for _, s := range c.SupportedSizes {
		if s.Width < 0 || s.Height < 0 {
			return fmt.Errorf("camera: negative supported size %s", s)
		}
	}
	return nil
}

// BestSizeFor selects the capture resolution for the given viewport from the
// supported size list. Returns the zero Size when nothing qualifies.
func (c Characteristics) BestSizeFor(window preview.Size) preview.Size {
	return preview.SelectBestSize(window, c.SupportedSizes)
}

// TransformFor computes the fit transform for the given viewport and display
// rotation, selecting the capture size first. The selected size is returned
// alongside the transform so the caller can apply it to the capture buffer.
func (c Characteristics) TransformFor(window preview.Size, rotation preview.DisplayRotation) (preview.Transform, preview.Size, error) {
	size := c.BestSizeFor(window)
	t, err := preview.BuildTransform(window, size, c.SensorOrientation, c.Facing, rotation)
	if err != nil {
		return preview.Transform{}, size, err
	}
	return t, size, nil
}
