package preview

// LensFacing identifies which way a camera lens points.
type LensFacing int

const (
	// LensFacingBack points away from the user.
	LensFacingBack LensFacing = iota
	// LensFacingFront points toward the user. Front frames are mirrored
	// relative to device rotation.
	LensFacingFront
	// LensFacingExternal is a detachable or remote camera.
	LensFacingExternal
)

// String returns the lens facing name.
func (f LensFacing) String() string {
	switch f {
	case LensFacingFront:
		return "front"
	case LensFacingExternal:
		return "external"
	default:
		return "back"
	}
}

// ParseLensFacing maps a facing name to its LensFacing value.
// Unknown names map to LensFacingBack.
func ParseLensFacing(s string) LensFacing {
	switch s {
	case "front":
		return LensFacingFront
	case "external":
		return LensFacingExternal
	default:
		return LensFacingBack
	}
}

// DisplayRotation is the UI rotation as a quarter-turn index, matching the
// windowing system's surface rotation constants.
type DisplayRotation int

const (
	Rotation0 DisplayRotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// Degrees returns the rotation in degrees. Out-of-range indices wrap.
func (r DisplayRotation) Degrees() int {
	return ((int(r)%4)+4)%4 * 90
}

// RelativeRotation returns the angle, in [0,360), that a sensor frame must be
// rotated to line up with the display surface. Front-facing lenses are
// mirrored relative to device rotation, which flips the sign of the surface
// term.
func RelativeRotation(sensorOrientationDegrees, surfaceRotationDegrees int, facing LensFacing) int {
	sign := -1
	if facing == LensFacingFront {
		sign = 1
	}
	return ((sensorOrientationDegrees-surfaceRotationDegrees*sign)%360 + 360) % 360
}
