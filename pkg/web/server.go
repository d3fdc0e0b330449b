// Package web provides the HTTP and WebSocket surface of the viewfit
// service: REST endpoints for capability and config queries, a control
// channel where clients report their viewport, and broadcast streams for
// preview frames and fit updates.
package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/camkit/go-viewfit/internal/log"
	"github.com/camkit/go-viewfit/pkg/camera"
	"github.com/camkit/go-viewfit/pkg/display"
	"github.com/camkit/go-viewfit/pkg/hub"
	"github.com/camkit/go-viewfit/pkg/preview"
	"github.com/camkit/go-viewfit/pkg/protocol"
)

// FitResult is what a viewport report produces: the selected capture size
// and the transform for the reporting view.
type FitResult struct {
	Transform preview.Transform `json:"transform"`
	Size      preview.Size      `json:"size"`
}

// Server is the viewfit web server
type Server struct {
	app  *fiber.App
	port string

	cameraMgr *camera.Manager
	viewport  *display.Viewport

	// Hubs for websocket broadcast (thread-safe!)
	frameHub *hub.Hub
	fitHub   *hub.Hub

	startedAt time.Time
}

// New creates the server and wires the viewport so every size or rotation
// change triggers a fresh fit pass.
func New(port string, cameraMgr *camera.Manager, viewport *display.Viewport) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	s := &Server{
		app:       app,
		port:      port,
		cameraMgr: cameraMgr,
		viewport:  viewport,
		frameHub:  hub.New("frames"),
		fitHub:    hub.New("fit"),
		startedAt: time.Now(),
	}

	viewport.OnChange = s.onViewportChange

	s.registerRoutes()
	return s
}

// FrameHub returns the hub preview frames are broadcast on.
func (s *Server) FrameHub() *hub.Hub {
	return s.frameHub
}

// Start runs the hubs and blocks serving HTTP.
func (s *Server) Start() error {
	go s.frameHub.Run()
	go s.fitHub.Run()

	log.Info("viewfit server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// fit runs the full pipeline for a viewport state: select the capture size,
// apply it to the camera, build the transform.
func (s *Server) fit(state display.State) (FitResult, error) {
	chars := s.cameraMgr.Characteristics()

	transform, size, err := chars.TransformFor(state.Window, state.Rotation)
	if err != nil {
		return FitResult{Size: size}, err
	}

	// The transform is only meaningful once the capture buffer matches the
	// selected size.
	if err := s.cameraMgr.ApplySize(size); err != nil {
		return FitResult{Size: size}, err
	}

	return FitResult{Transform: transform, Size: size}, nil
}

// onViewportChange recomputes the fit and broadcasts the outcome to all fit
// stream subscribers.
func (s *Server) onViewportChange(state display.State) {
	result, err := s.fit(state)

	var msg *protocol.Message
	var buildErr error
	if err != nil {
		kind := errorKind(err, result.Size)
		log.Warn("fit failed", "kind", kind, "error", err)
		msg, buildErr = protocol.NewErrorMessage(kind, err.Error())
	} else {
		log.Debug("fit computed",
			"window", state.Window.String(),
			"preview", result.Size.String(),
			"rotation", state.Rotation.Degrees())
		msg, buildErr = protocol.NewTransformMessage(result.Transform, result.Size)
	}
	if buildErr != nil {
		log.Error("failed to build fit message", "error", buildErr)
		return
	}

	data, buildErr := msg.Bytes()
	if buildErr != nil {
		log.Error("failed to encode fit message", "error", buildErr)
		return
	}
	s.fitHub.Broadcast(hub.NewJSONMessage(data))
}

// errorKind maps a fit error to its protocol error kind. A zero selected
// size means the capability list had nothing usable, which clients treat
// differently from a not-yet-laid-out view.
func errorKind(err error, size preview.Size) string {
	switch {
	case errors.Is(err, preview.ErrInvalidWindowSize):
		return protocol.ErrKindInvalidWindowSize
	case errors.Is(err, preview.ErrInvalidPreviewSize):
		if size.IsZero() {
			return protocol.ErrKindNoPreviewSize
		}
		return protocol.ErrKindInvalidPreviewSize
	}
	return "internal"
}

// registerRoutes sets up REST and WebSocket endpoints.
func (s *Server) registerRoutes() {
	api := s.app.Group("/api")
	api.Get("/camera/characteristics", s.handleCharacteristics)
	api.Get("/camera/sizes", s.handleSizes)
	api.Get("/camera/config", s.handleGetConfig)
	api.Post("/camera/config", s.handleSetConfig)
	api.Get("/transform", s.handleGetTransform)
	api.Post("/viewport", s.handleViewport)
	api.Get("/stats", s.handleStats)

	// WebSocket upgrade middleware
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	s.app.Get("/ws/preview", websocket.New(s.handlePreviewWS))
	s.app.Get("/ws/fit", websocket.New(s.handleFitWS))
	s.registerViewportWS()
}

// handlePreviewWS subscribes a client to the binary frame stream.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	client := hub.NewClient(s.frameHub, c)
	client.Run() // Blocks until disconnect
}

// handleFitWS subscribes a client to the JSON fit stream.
func (s *Server) handleFitWS(c *websocket.Conn) {
	client := hub.NewClient(s.fitHub, c)
	client.Run()
}
