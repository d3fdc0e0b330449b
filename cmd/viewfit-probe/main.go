// Command viewfit-probe connects to a running viewfit service's viewport
// channel, reports a viewport and prints the fit the service answers with.
// Useful for checking a deployment without a real preview client.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/camkit/go-viewfit/pkg/preview"
	"github.com/camkit/go-viewfit/pkg/protocol"
)

const readTimeout = 5 * time.Second

func main() {
	addr := flag.String("addr", "localhost:8080", "Service host:port")
	width := flag.Int("width", 1080, "Viewport width in pixels")
	height := flag.Int("height", 1920, "Viewport height in pixels")
	rotation := flag.Int("rotation", 0, "Display rotation as quarter turns (0-3)")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws/viewport", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fatalf("connect to %s: %v", url, err)
	}
	defer conn.Close()

	// The service greets with its camera characteristics.
	msg, err := readMessage(conn)
	if err != nil {
		fatalf("read greeting: %v", err)
	}
	if msg.Type == protocol.TypeCharacteristics {
		chars, err := msg.GetCharacteristicsData()
		if err != nil {
			fatalf("parse characteristics: %v", err)
		}
		fmt.Printf("camera: sensor %d°, %s facing, %d sizes\n",
			chars.SensorOrientation, chars.Facing, len(chars.SupportedSizes))
	}

	// Round-trip latency first.
	start := time.Now()
	ping, err := protocol.NewPingMessage("probe")
	if err != nil {
		fatalf("build ping: %v", err)
	}
	if err := writeMessage(conn, ping); err != nil {
		fatalf("send ping: %v", err)
	}
	if msg, err = readMessage(conn); err != nil {
		fatalf("pong: %v", err)
	}
	if msg.Type != protocol.TypePong {
		fatalf("expected pong, got %s", msg.Type)
	}
	fmt.Printf("latency: %s\n", time.Since(start).Round(time.Millisecond))

	// Report the viewport and print the fit.
	report, err := protocol.NewViewportMessage(
		preview.Size{Width: *width, Height: *height},
		preview.DisplayRotation(*rotation))
	if err != nil {
		fatalf("build viewport report: %v", err)
	}
	if err := writeMessage(conn, report); err != nil {
		fatalf("send viewport report: %v", err)
	}

	msg, err = readMessage(conn)
	if err != nil {
		fatalf("read fit: %v", err)
	}

	switch msg.Type {
	case protocol.TypeTransform:
		t, err := msg.GetTransformData()
		if err != nil {
			fatalf("parse transform: %v", err)
		}
		fmt.Printf("preview:  %dx%d\n", t.PreviewWidth, t.PreviewHeight)
		fmt.Printf("scale:    (%.6f, %.6f)\n", t.ScaleX, t.ScaleY)
		fmt.Printf("rotation: %.1f°\n", t.RotationDegrees)
		fmt.Printf("pivot:    (%.1f, %.1f)\n", t.PivotX, t.PivotY)

	case protocol.TypeError:
		e, err := msg.GetErrorData()
		if err != nil {
			fatalf("parse error report: %v", err)
		}
		fatalf("fit failed: %s (%s)", e.Message, e.Kind)

	default:
		fatalf("unexpected reply type %s", msg.Type)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "viewfit-probe: "+format+"\n", args...)
	os.Exit(1)
}

func readMessage(conn *websocket.Conn) (*protocol.Message, error) {
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return protocol.ParseMessage(data)
}

func writeMessage(conn *websocket.Conn, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
