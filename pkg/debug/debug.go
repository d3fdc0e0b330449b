// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Frames controls whether verbose per-frame logs are shown (capture, encode,
// broadcast). Use --debug-frames to enable these very chatty logs.
var Frames bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Println(msg)
	}
}

// FrameLog prints a message only if frame debug mode is enabled
func FrameLog(format string, args ...interface{}) {
	if Frames {
		fmt.Printf(format, args...)
	}
}
