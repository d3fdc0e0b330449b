// Package preview computes how a camera capture buffer should be fitted to a
// display viewport. It selects the best capture resolution for a viewport and
// derives the crop-to-fill transform that maps that buffer onto the view with
// the correct orientation, given the sensor mounting, lens facing and the
// current display rotation.
//
// Both entry points are pure functions. They keep no state between calls and
// are safe to call concurrently from any goroutine; the caller recomputes on
// every viewport or rotation change.
package preview
