// Package camera models the capture side of the preview pipeline: the static
// facts about a camera device and the runtime-tunable capture configuration.
package camera

// Config holds the capture configuration parameters.
// These can be modified via the camera API at runtime.
type Config struct {
	Width     int `json:"width"`     // Frame width in pixels
	Height    int `json:"height"`    // Frame height in pixels
	Framerate int `json:"framerate"` // Target FPS
	Quality   int `json:"quality"`   // JPEG quality 1-100
}

// Capture limits for resolution validation.
const (
	MinWidth  = 160
	MinHeight = 120
	MaxWidth  = 4608
	MaxHeight = 2592
)

// DefaultConfig returns the recommended capture configuration.
// 1280x720 keeps transform math exact while staying cheap to encode.
func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		Framerate: 30,
		Quality:   85,
	}
}

// LegacyConfig returns the original 640x480 configuration.
// Use this if higher resolution causes issues.
func LegacyConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, "width must be between 160 and 4608")
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, "height must be between 120 and 2592")
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		errors = append(errors, "framerate must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}
