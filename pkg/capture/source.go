// Package capture acquires preview frames from a camera device and applies
// the selected buffer size to it. The fit pipeline only sees the Source
// interface, so local webcams and remote cameras are interchangeable.
package capture

import "github.com/camkit/go-viewfit/pkg/preview"

// Source delivers preview frames as JPEG.
type Source interface {
	// ReadJPEG captures one frame encoded at the given JPEG quality.
	ReadJPEG(quality int) ([]byte, error)

	// Size returns the buffer size frames are currently delivered in.
	Size() preview.Size

	// SetSize requests a new buffer size. The device may settle on a
	// different one; Size reports what it actually delivers.
	SetSize(size preview.Size) error

	// Close releases the device.
	Close() error
}

// CommonSizes is the candidate list probed when a driver cannot enumerate
// its supported output sizes.
var CommonSizes = []preview.Size{
	{Width: 640, Height: 480},
	{Width: 1280, Height: 720},
	{Width: 1920, Height: 1080},
	{Width: 2560, Height: 1440},
	{Width: 3840, Height: 2160},
}
