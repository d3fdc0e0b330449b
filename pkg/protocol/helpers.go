package protocol

import (
	"encoding/base64"

	"github.com/camkit/go-viewfit/pkg/preview"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewViewportMessage creates a viewport report message
func NewViewportMessage(window preview.Size, rotation preview.DisplayRotation) (*Message, error) {
	return NewMessage(TypeViewport, ViewportData{
		Width:    window.Width,
		Height:   window.Height,
		Rotation: int(rotation),
	})
}

// NewTransformMessage creates a transform message from a fit result
func NewTransformMessage(t preview.Transform, previewSize preview.Size) (*Message, error) {
	return NewMessage(TypeTransform, TransformData{
		ScaleX:          t.ScaleX,
		ScaleY:          t.ScaleY,
		RotationDegrees: t.RotationDegrees,
		PivotX:          t.PivotX,
		PivotY:          t.PivotY,
		PreviewWidth:    previewSize.Width,
		PreviewHeight:   previewSize.Height,
	})
}

// NewFrameMessage creates a frame message from raw JPEG data
func NewFrameMessage(width, height int, jpegData []byte, frameID uint64) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Width:   width,
		Height:  height,
		Format:  "jpeg",
		Data:    base64.StdEncoding.EncodeToString(jpegData),
		FrameID: frameID,
	})
}

// NewCharacteristicsMessage creates a characteristics message
func NewCharacteristicsMessage(sensorOrientation int, facing preview.LensFacing, sizes []preview.Size) (*Message, error) {
	pairs := make([][2]int, 0, len(sizes))
	for _, s := range sizes {
		pairs = append(pairs, [2]int{s.Width, s.Height})
	}
	return NewMessage(TypeCharacteristics, CharacteristicsData{
		SensorOrientation: sensorOrientation,
		Facing:            facing.String(),
		SupportedSizes:    pairs,
	})
}

// NewErrorMessage creates an error report message
func NewErrorMessage(kind, message string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{
		Kind:    kind,
		Message: message,
	})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetViewportData extracts viewport data from a message
func (m *Message) GetViewportData() (*ViewportData, error) {
	var data ViewportData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Window returns the viewport as a preview Size.
func (v *ViewportData) Window() preview.Size {
	return preview.Size{Width: v.Width, Height: v.Height}
}

// DisplayRotation returns the reported rotation as a quarter-turn value.
func (v *ViewportData) DisplayRotation() preview.DisplayRotation {
	return preview.DisplayRotation(v.Rotation)
}

// GetTransformData extracts transform data from a message
func (m *Message) GetTransformData() (*TransformData, error) {
	var data TransformData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetFrameData extracts frame data from a message
func (m *Message) GetFrameData() (*FrameData, error) {
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DecodeFrameData decodes the base64 image data
func (f *FrameData) DecodeFrameData() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Data)
}

// GetCharacteristicsData extracts characteristics data from a message
func (m *Message) GetCharacteristicsData() (*CharacteristicsData, error) {
	var data CharacteristicsData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetConfigUpdate extracts config update from a message
func (m *Message) GetConfigUpdate() (*ConfigUpdate, error) {
	var data ConfigUpdate
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
