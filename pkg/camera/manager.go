package camera

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/camkit/go-viewfit/pkg/preview"
)

// Manager holds the current camera configuration and handles updates.
type Manager struct {
	config          Config
	characteristics Characteristics
	mu              sync.RWMutex

	// Callback when config changes (for applying to the capture device)
	OnConfigChange func(cfg Config) error
}

// NewManager creates a new camera manager with default config.
func NewManager(characteristics Characteristics) *Manager {
	return &Manager{
		config:          DefaultConfig(),
		characteristics: characteristics,
	}
}

// Characteristics returns the device facts the manager was created with.
func (m *Manager) Characteristics() Characteristics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.characteristics
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig updates the camera configuration.
func (m *Manager) SetConfig(cfg Config) error {
	// Validate
	if errors := cfg.Validate(); len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	m.mu.Lock()
	m.config = cfg
	callback := m.OnConfigChange
	m.mu.Unlock()

	// Notify callback if set
	if callback != nil {
		if err := callback(cfg); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	return nil
}

// ApplySize sets the capture buffer dimensions to the selected preview size,
// keeping framerate and quality as they are. This is the side effect that
// makes a computed transform visually meaningful.
func (m *Manager) ApplySize(size preview.Size) error {
	if size.IsZero() {
		return fmt.Errorf("camera: %w", preview.ErrInvalidPreviewSize)
	}

	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	cfg.Width = size.Width
	cfg.Height = size.Height
	return m.SetConfig(cfg)
}

// UpdateConfig updates specific fields of the configuration.
// Accepts a map of field names to values.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	m.mu.Lock()
	cfg := m.config
	m.mu.Unlock()

	// Check for preset first
	if presetName, ok := params["preset"].(string); ok {
		preset := GetPreset(presetName)
		if preset == nil {
			return fmt.Errorf("unknown preset: %s", presetName)
		}
		cfg = *preset
		// Remove preset from params so we can still apply other overrides
		delete(params, "preset")
	}

	// Apply individual parameters
	for key, value := range params {
		switch key {
		case "width":
			if v, ok := toInt(value); ok {
				cfg.Width = v
			}
		case "height":
			if v, ok := toInt(value); ok {
				cfg.Height = v
			}
		case "framerate":
			if v, ok := toInt(value); ok {
				cfg.Framerate = v
			}
		case "quality":
			if v, ok := toInt(value); ok {
				cfg.Quality = v
			}
		}
	}

	return m.SetConfig(cfg)
}

// toInt converts loosely typed JSON values to int.
func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case json.Number:
		i, err := val.Int64()
		if err == nil {
			return int(i), true
		}
	}
	return 0, false
}
