package web

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/camkit/go-viewfit/pkg/display"
	"github.com/camkit/go-viewfit/pkg/preview"
)

// handleCharacteristics returns the camera device facts
func (s *Server) handleCharacteristics(c *fiber.Ctx) error {
	return c.JSON(s.cameraMgr.Characteristics())
}

// handleSizes returns the supported capture resolutions
func (s *Server) handleSizes(c *fiber.Ctx) error {
	return c.JSON(s.cameraMgr.Characteristics().SupportedSizes)
}

// handleGetConfig returns the current capture configuration
func (s *Server) handleGetConfig(c *fiber.Ctx) error {
	return c.JSON(s.cameraMgr.GetConfig())
}

// handleSetConfig updates capture configuration fields
func (s *Server) handleSetConfig(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	if err := s.cameraMgr.UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(s.cameraMgr.GetConfig())
}

// ViewportRequest is the request body for viewport reports
type ViewportRequest struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	Rotation int `json:"rotation"`
}

// handleViewport records a reported viewport and returns the fit for it
func (s *Server) handleViewport(c *fiber.Ctx) error {
	var req ViewportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	state := display.State{
		Window:   preview.Size{Width: req.Width, Height: req.Height},
		Rotation: preview.DisplayRotation(req.Rotation),
	}
	// Record first: OnChange broadcasts to fit stream subscribers.
	s.viewport.Set(state)

	result, err := s.fit(state)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
			"kind":  errorKind(err, result.Size),
		})
	}

	return c.JSON(result)
}

// handleGetTransform returns the fit for the current viewport state
func (s *Server) handleGetTransform(c *fiber.Ctx) error {
	state := s.viewport.State()
	if !state.Ready() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "no viewport reported yet",
		})
	}

	result, err := s.fit(state)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
			"kind":  errorKind(err, result.Size),
		})
	}
	return c.JSON(result)
}

// handleStats returns service statistics
func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"frame_clients":  s.frameHub.ClientCount(),
		"fit_clients":    s.fitHub.ClientCount(),
		"frames_sent":    s.frameHub.MessagesSent(),
		"frames_dropped": s.frameHub.Dropped(),
		"current_config": s.cameraMgr.GetConfig(),
		"viewport":       s.viewport.State(),
	})
}
