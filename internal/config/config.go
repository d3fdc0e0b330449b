// Package config provides configuration helpers for go-viewfit commands.
package config

import (
	"os"
	"strconv"

	"github.com/camkit/go-viewfit/pkg/preview"
)

// Default service configuration.
const (
	DefaultPort        = "8080"
	DefaultCameraIndex = 0
)

// Port returns the HTTP port from VIEWFIT_PORT env var.
// Falls back to DefaultPort if not set.
func Port() string {
	if port := os.Getenv("VIEWFIT_PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// LogLevel returns the log level from LOG_LEVEL env var, defaulting to info.
func LogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

// CameraIndex returns the local capture device index from CAMERA_INDEX.
func CameraIndex() int {
	if v := os.Getenv("CAMERA_INDEX"); v != "" {
		if idx, err := strconv.Atoi(v); err == nil && idx >= 0 {
			return idx
		}
	}
	return DefaultCameraIndex
}

// CameraURL returns the remote camera base URL from CAMERA_URL.
// Empty means use the local capture device instead.
func CameraURL() string {
	return os.Getenv("CAMERA_URL")
}

// CameraProducer returns the producer name to request from a remote camera's
// signalling server, from CAMERA_PRODUCER. Defaults to "camera".
func CameraProducer() string {
	if name := os.Getenv("CAMERA_PRODUCER"); name != "" {
		return name
	}
	return "camera"
}

// SensorOrientation returns the sensor mounting orientation in degrees from
// SENSOR_ORIENTATION. Only quarter-turn values are accepted; anything else
// falls back to 0.
func SensorOrientation() int {
	if v := os.Getenv("SENSOR_ORIENTATION"); v != "" {
		if deg, err := strconv.Atoi(v); err == nil && deg%90 == 0 && deg >= 0 && deg < 360 {
			return deg
		}
	}
	return 0
}

// Facing returns the lens facing from LENS_FACING ("back", "front",
// "external"), defaulting to back.
func Facing() preview.LensFacing {
	return preview.ParseLensFacing(os.Getenv("LENS_FACING"))
}
