package remote

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/camkit/go-viewfit/internal/httpc"
	"github.com/camkit/go-viewfit/pkg/camera"
	"github.com/camkit/go-viewfit/pkg/preview"
)

// FetchCharacteristics queries the remote camera's capability endpoint.
// The size list may legitimately come back empty; the selector handles that
// with its zero sentinel.
func FetchCharacteristics(apiURL string) (camera.Characteristics, error) {
	var chars camera.Characteristics

	resp, err := httpc.Get(apiURL + "/api/camera/characteristics")
	if err != nil {
		return chars, fmt.Errorf("remote: capability query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return chars, fmt.Errorf("remote: capability query returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&chars); err != nil {
		return chars, fmt.Errorf("remote: decoding characteristics: %w", err)
	}
	if err := chars.Validate(); err != nil {
		return chars, err
	}
	return chars, nil
}

// Characteristics fetches the device facts for this camera.
func (c *Camera) Characteristics() (camera.Characteristics, error) {
	return FetchCharacteristics(c.apiURL)
}

// Size returns the buffer size last applied to the remote camera.
func (c *Camera) Size() preview.Size {
	c.sizeMu.Lock()
	defer c.sizeMu.Unlock()
	return c.size
}

// SetSize asks the remote camera to reconfigure its capture buffer.
func (c *Camera) SetSize(size preview.Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("remote: %w: %s", preview.ErrInvalidPreviewSize, size)
	}

	body, err := json.Marshal(map[string]int{
		"width":  size.Width,
		"height": size.Height,
	})
	if err != nil {
		return err
	}

	resp, err := httpc.Post(c.apiURL+"/api/camera/config", "application/json", body)
	if err != nil {
		return fmt.Errorf("remote: config update failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote: config update returned %s", resp.Status)
	}

	c.sizeMu.Lock()
	c.size = size
	c.sizeMu.Unlock()
	return nil
}
