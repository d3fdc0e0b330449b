// Command viewfit computes the preview fit for a viewport on the command
// line: which capture resolution to use and what transform to apply to the
// rendering surface.
//
//	viewfit -window 1080x1920 -sizes 1920x1080,1280x720 -sensor 90
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/camkit/go-viewfit/pkg/preview"
)

func main() {
	window := flag.String("window", "", "Viewport size as WxH, e.g. 1080x1920")
	sizes := flag.String("sizes", "", "Comma-separated capture sizes, e.g. 1920x1080,1280x720")
	sensor := flag.Int("sensor", 90, "Sensor mounting orientation in degrees (0, 90, 180, 270)")
	facing := flag.String("facing", "back", "Lens facing: back, front, external")
	rotation := flag.Int("rotation", 0, "Display rotation as quarter turns (0-3)")
	showMatrix := flag.Bool("matrix", false, "Also print the 3x3 transform matrix")
	flag.Parse()

	if *window == "" || *sizes == "" {
		flag.Usage()
		os.Exit(2)
	}

	windowSize, err := parseSize(*window)
	if err != nil {
		fatalf("invalid -window: %v", err)
	}

	available, err := parseSizeList(*sizes)
	if err != nil {
		fatalf("invalid -sizes: %v", err)
	}

	selected := preview.SelectBestSize(windowSize, available)
	if selected.IsZero() {
		fatalf("no capture size qualifies for window %s", windowSize)
	}
	fmt.Printf("selected: %s\n", selected)

	t, err := preview.BuildTransform(windowSize, selected, *sensor,
		preview.ParseLensFacing(*facing), preview.DisplayRotation(*rotation))
	if err != nil {
		fatalf("transform: %v", err)
	}

	fmt.Printf("scale:    (%.6f, %.6f)\n", t.ScaleX, t.ScaleY)
	fmt.Printf("rotation: %.1f°\n", t.RotationDegrees)
	fmt.Printf("pivot:    (%.1f, %.1f)\n", t.PivotX, t.PivotY)

	if *showMatrix {
		m := t.Matrix()
		fmt.Println("matrix:")
		for row := 0; row < 3; row++ {
			fmt.Printf("  [%10.4f %10.4f %10.4f]\n", m[row*3], m[row*3+1], m[row*3+2])
		}
	}
}

func parseSize(s string) (preview.Size, error) {
	var size preview.Size
	if _, err := fmt.Sscanf(s, "%dx%d", &size.Width, &size.Height); err != nil {
		return size, fmt.Errorf("want WxH, got %q", s)
	}
	if size.Width <= 0 || size.Height <= 0 {
		return size, fmt.Errorf("dimensions must be positive, got %q", s)
	}
	return size, nil
}

func parseSizeList(s string) ([]preview.Size, error) {
	parts := strings.Split(s, ",")
	sizes := make([]preview.Size, 0, len(parts))
	for _, part := range parts {
		size, err := parseSize(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "viewfit: "+format+"\n", args...)
	os.Exit(1)
}
