package web

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http/httptest"
	"testing"

	"github.com/camkit/go-viewfit/pkg/camera"
	"github.com/camkit/go-viewfit/pkg/display"
	"github.com/camkit/go-viewfit/pkg/preview"
	"github.com/camkit/go-viewfit/pkg/protocol"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func newTestServer(chars camera.Characteristics) *Server {
	mgr := camera.NewManager(chars)
	viewport := display.NewViewport()
	return New("0", mgr, viewport)
}

func portraitPhoneChars() camera.Characteristics {
	return camera.Characteristics{
		SensorOrientation: 90,
		Facing:            preview.LensFacingBack,
		SupportedSizes: []preview.Size{
			{Width: 1280, Height: 720},
			{Width: 1920, Height: 1080},
		},
	}
}

func TestHandleCharacteristics(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	req := httptest.NewRequest("GET", "/api/camera/characteristics", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var chars camera.Characteristics
	if err := json.NewDecoder(resp.Body).Decode(&chars); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if chars.SensorOrientation != 90 {
		t.Errorf("SensorOrientation = %d, want 90", chars.SensorOrientation)
	}
	if len(chars.SupportedSizes) != 2 {
		t.Errorf("SupportedSizes = %v, want 2 entries", chars.SupportedSizes)
	}
}

func TestHandleViewportFit(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	body, _ := json.Marshal(ViewportRequest{Width: 1080, Height: 1920, Rotation: 0})
	req := httptest.NewRequest("POST", "/api/viewport", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result FitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	want := preview.Size{Width: 1920, Height: 1080}
	if result.Size != want {
		t.Errorf("selected size = %s, want %s", result.Size, want)
	}
	if !floatEquals(result.Transform.ScaleX, 1) || !floatEquals(result.Transform.ScaleY, 1) {
		t.Errorf("scale = (%v, %v), want (1, 1)", result.Transform.ScaleX, result.Transform.ScaleY)
	}
	if !floatEquals(result.Transform.PivotX, 540) || !floatEquals(result.Transform.PivotY, 960) {
		t.Errorf("pivot = (%v, %v), want (540, 960)", result.Transform.PivotX, result.Transform.PivotY)
	}

	// The fit must have been applied to the capture config.
	cfg := s.cameraMgr.GetConfig()
	if cfg.Width != 1920 || cfg.Height != 1080 {
		t.Errorf("config after fit = %dx%d, want 1920x1080", cfg.Width, cfg.Height)
	}
}

func TestHandleViewportNoUsableSize(t *testing.T) {
	s := newTestServer(camera.Characteristics{
		SensorOrientation: 90,
		Facing:            preview.LensFacingBack,
	})

	body, _ := json.Marshal(ViewportRequest{Width: 1080, Height: 1920})
	req := httptest.NewRequest("POST", "/api/viewport", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 422 {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}

	var errResp struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if errResp.Kind != protocol.ErrKindNoPreviewSize {
		t.Errorf("kind = %q, want %q", errResp.Kind, protocol.ErrKindNoPreviewSize)
	}
}

func TestHandleViewportBadBody(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	req := httptest.NewRequest("POST", "/api/viewport", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleGetTransformBeforeLayout(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	req := httptest.NewRequest("GET", "/api/transform", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 409 {
		t.Errorf("status = %d, want 409 before any viewport report", resp.StatusCode)
	}
}

func TestHandleSetConfigPreset(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	body := []byte(`{"preset": "720p"}`)
	req := httptest.NewRequest("POST", "/api/camera/config", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	// The response body is the applied config with snake_case keys.
	var echoed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&echoed); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	for _, key := range []string{"width", "height", "framerate", "quality"} {
		if _, ok := echoed[key]; !ok {
			t.Errorf("config response missing %q", key)
		}
	}
	if echoed["width"] != float64(1280) {
		t.Errorf("echoed width = %v, want 1280", echoed["width"])
	}

	cfg := s.cameraMgr.GetConfig()
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("config = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
}

func TestHandleSetConfigInvalid(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	body := []byte(`{"preset": "8k-imax"}`)
	req := httptest.NewRequest("POST", "/api/camera/config", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 422 {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	req := httptest.NewRequest("GET", "/api/stats", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var stats map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	for _, key := range []string{"uptime_seconds", "frame_clients", "fit_clients", "current_config"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("stats missing %q", key)
		}
	}
}

func TestSessionViewportMessage(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	msg, err := protocol.NewViewportMessage(preview.Size{Width: 1080, Height: 1920}, preview.Rotation0)
	if err != nil {
		t.Fatalf("building viewport message: %v", err)
	}

	reply := s.handleSessionMessage(msg)
	if reply == nil {
		t.Fatal("expected a reply for a viewport message")
	}
	if reply.Type != protocol.TypeTransform {
		t.Fatalf("reply type = %s, want %s", reply.Type, protocol.TypeTransform)
	}

	data, err := reply.GetTransformData()
	if err != nil {
		t.Fatalf("parsing transform data: %v", err)
	}
	if data.PreviewWidth != 1920 || data.PreviewHeight != 1080 {
		t.Errorf("preview size = %dx%d, want 1920x1080", data.PreviewWidth, data.PreviewHeight)
	}
	if !floatEquals(data.ScaleX, 1) || !floatEquals(data.ScaleY, 1) {
		t.Errorf("scale = (%v, %v), want (1, 1)", data.ScaleX, data.ScaleY)
	}
}

func TestSessionViewportMessageError(t *testing.T) {
	s := newTestServer(camera.Characteristics{
		SensorOrientation: 90,
		Facing:            preview.LensFacingBack,
	})

	msg, err := protocol.NewViewportMessage(preview.Size{Width: 1080, Height: 1920}, preview.Rotation0)
	if err != nil {
		t.Fatalf("building viewport message: %v", err)
	}

	reply := s.handleSessionMessage(msg)
	if reply == nil || reply.Type != protocol.TypeError {
		t.Fatalf("reply = %v, want an error message", reply)
	}

	data, err := reply.GetErrorData()
	if err != nil {
		t.Fatalf("parsing error data: %v", err)
	}
	if data.Kind != protocol.ErrKindNoPreviewSize {
		t.Errorf("kind = %q, want %q", data.Kind, protocol.ErrKindNoPreviewSize)
	}
}

func TestSessionPingMessage(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	msg, err := protocol.NewPingMessage("ping-1")
	if err != nil {
		t.Fatalf("building ping message: %v", err)
	}

	reply := s.handleSessionMessage(msg)
	if reply == nil || reply.Type != protocol.TypePong {
		t.Fatalf("reply = %v, want a pong message", reply)
	}

	data, err := reply.GetPongData()
	if err != nil {
		t.Fatalf("parsing pong data: %v", err)
	}
	if data.ID != "ping-1" {
		t.Errorf("pong ID = %q, want %q", data.ID, "ping-1")
	}
}

func TestSessionConfigMessage(t *testing.T) {
	s := newTestServer(portraitPhoneChars())

	msg, err := protocol.NewMessage(protocol.TypeConfig, protocol.ConfigUpdate{Preset: "1080p"})
	if err != nil {
		t.Fatalf("building config message: %v", err)
	}

	if reply := s.handleSessionMessage(msg); reply != nil {
		t.Fatalf("reply = %v, want none for a valid config update", reply)
	}

	cfg := s.cameraMgr.GetConfig()
	if cfg.Width != 1920 || cfg.Height != 1080 {
		t.Errorf("config = %dx%d, want 1920x1080", cfg.Width, cfg.Height)
	}
}

func TestErrorKindMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		size preview.Size
		want string
	}{
		{"invalid window", preview.ErrInvalidWindowSize, preview.Size{}, protocol.ErrKindInvalidWindowSize},
		{"no usable size", preview.ErrInvalidPreviewSize, preview.Size{}, protocol.ErrKindNoPreviewSize},
		{"degenerate size", preview.ErrInvalidPreviewSize, preview.Size{Width: 640}, protocol.ErrKindInvalidPreviewSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorKind(tt.err, tt.size); got != tt.want {
				t.Errorf("errorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
