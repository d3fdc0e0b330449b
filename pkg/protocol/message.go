// Package protocol defines the WebSocket message types exchanged between a
// viewfit service and its preview clients. Clients report their viewport;
// the service answers with the selected capture size and fit transform, and
// streams frames.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → Service messages
	TypeViewport MessageType = "viewport" // Viewport size/rotation report
	TypeConfig   MessageType = "config"   // Capture configuration update

	// Service → Client messages
	TypeTransform       MessageType = "transform"       // Fit transform for the reported viewport
	TypeFrame           MessageType = "frame"           // Preview frame
	TypeCharacteristics MessageType = "characteristics" // Camera device facts
	TypeError           MessageType = "error"           // Value-level failure report

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Client → Service Message Types
// =============================================================================

// ViewportData reports the destination view's pixel size and rotation.
// Rotation is a quarter-turn index in [0,3].
type ViewportData struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	Rotation int `json:"rotation"`
}

// ConfigUpdate contains capture configuration changes
type ConfigUpdate struct {
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Framerate int    `json:"framerate,omitempty"`
	Quality   int    `json:"quality,omitempty"`
	Preset    string `json:"preset,omitempty"` // "720p", "1080p", "4k"
}

// =============================================================================
// Service → Client Message Types
// =============================================================================

// TransformData carries the fit result for a reported viewport: the affine
// transform to apply to the rendering surface and the capture size the
// buffer was configured to.
type TransformData struct {
	ScaleX          float64 `json:"scale_x"`
	ScaleY          float64 `json:"scale_y"`
	RotationDegrees float64 `json:"rotation_degrees"`
	PivotX          float64 `json:"pivot_x"`
	PivotY          float64 `json:"pivot_y"`
	PreviewWidth    int     `json:"preview_width"`
	PreviewHeight   int     `json:"preview_height"`
}

// FrameData contains a preview frame
type FrameData struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format"` // "jpeg"
	Data    string `json:"data"`   // base64 encoded
	FrameID uint64 `json:"frame_id,omitempty"`
}

// CharacteristicsData describes the camera device feeding the preview
type CharacteristicsData struct {
	SensorOrientation int      `json:"sensor_orientation"`
	Facing            string   `json:"facing"`
	SupportedSizes    [][2]int `json:"supported_sizes"`
}

// Error kinds for ErrorData
const (
	ErrKindInvalidPreviewSize = "invalid_preview_size"
	ErrKindInvalidWindowSize  = "invalid_window_size"
	ErrKindNoPreviewSize      = "no_preview_size"
)

// ErrorData reports a value-level failure; the client decides whether to
// retry (e.g. after the next layout pass) or give up.
type ErrorData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
