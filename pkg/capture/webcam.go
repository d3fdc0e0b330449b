package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/camkit/go-viewfit/pkg/preview"
)

// Webcam captures frames from a local V4L2/AVFoundation device via OpenCV.
type Webcam struct {
	webcam   *gocv.VideoCapture
	deviceID int
	size     preview.Size
	mu       sync.Mutex
}

// OpenWebcam opens the capture device and applies the requested buffer size.
// The driver may settle on a different resolution; Size reports the actual
// one.
func OpenWebcam(deviceID int, size preview.Size) (*Webcam, error) {
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", deviceID, err)
	}

	w := &Webcam{webcam: webcam, deviceID: deviceID}
	if err := w.SetSize(size); err != nil {
		webcam.Close()
		return nil, err
	}
	return w, nil
}

// ReadJPEG captures one frame and encodes it as JPEG.
func (w *Webcam) ReadJPEG(quality int) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.webcam == nil {
		return nil, fmt.Errorf("capture: device %d is closed", w.deviceID)
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := w.webcam.Read(&img); !ok || img.Empty() {
		return nil, fmt.Errorf("capture: no frame from device %d", w.deviceID)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("capture: jpeg encode failed: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close, so copy out.
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Size returns the buffer size the device actually delivers.
func (w *Webcam) Size() preview.Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// SetSize applies a buffer size to the device and reads back what the driver
// accepted.
func (w *Webcam) SetSize(size preview.Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("capture: %w: %s", preview.ErrInvalidPreviewSize, size)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.webcam == nil {
		return fmt.Errorf("capture: device %d is closed", w.deviceID)
	}

	w.webcam.Set(gocv.VideoCaptureFrameWidth, float64(size.Width))
	w.webcam.Set(gocv.VideoCaptureFrameHeight, float64(size.Height))

	w.size = preview.Size{
		Width:  int(w.webcam.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(w.webcam.Get(gocv.VideoCaptureFrameHeight)),
	}
	return nil
}

// ProbeSizes tries each candidate on the device and returns the ones the
// driver honors exactly. The original buffer size is restored afterwards.
func (w *Webcam) ProbeSizes(candidates []preview.Size) []preview.Size {
	original := w.Size()

	var supported []preview.Size
	for _, candidate := range candidates {
		if err := w.SetSize(candidate); err != nil {
			continue
		}
		if w.Size() == candidate {
			supported = append(supported, candidate)
		}
	}

	w.SetSize(original)
	return supported
}

// Close releases the camera.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.webcam != nil {
		err := w.webcam.Close()
		w.webcam = nil
		return err
	}
	return nil
}
