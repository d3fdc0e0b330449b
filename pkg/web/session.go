package web

import (
	"time"

	contribws "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/camkit/go-viewfit/internal/log"
	"github.com/camkit/go-viewfit/pkg/display"
	"github.com/camkit/go-viewfit/pkg/protocol"
)

// registerViewportWS sets up the per-session viewport control channel.
// Unlike the broadcast streams, this channel is request/response: the client
// reports viewports and gets its fit back on the same connection.
func (s *Server) registerViewportWS() {
	s.app.Get("/ws/viewport", contribws.New(s.handleViewportSession))
}

func (s *Server) handleViewportSession(c *contribws.Conn) {
	sessionID := uuid.New().String()
	log.Info("viewport session opened", "session", sessionID)
	defer log.Info("viewport session closed", "session", sessionID)

	// Greet with the device characteristics so the client can set up its
	// surface before reporting a viewport.
	chars := s.cameraMgr.Characteristics()
	if msg, err := protocol.NewCharacteristicsMessage(chars.SensorOrientation, chars.Facing, chars.SupportedSizes); err == nil {
		s.writeSessionMessage(c, msg)
	}

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			reply, _ := protocol.NewErrorMessage("bad_message", err.Error())
			s.writeSessionMessage(c, reply)
			continue
		}

		if reply := s.handleSessionMessage(msg); reply != nil {
			s.writeSessionMessage(c, reply)
		}
	}
}

func (s *Server) writeSessionMessage(c *contribws.Conn, msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		log.Error("failed to encode session message", "error", err)
		return
	}
	if err := c.WriteMessage(contribws.TextMessage, data); err != nil {
		log.Debug("session write failed", "error", err)
	}
}

// handleSessionMessage processes one client message and returns the reply,
// or nil when no reply is due.
func (s *Server) handleSessionMessage(msg *protocol.Message) *protocol.Message {
	switch msg.Type {
	case protocol.TypeViewport:
		viewport, err := msg.GetViewportData()
		if err != nil {
			reply, _ := protocol.NewErrorMessage("bad_message", err.Error())
			return reply
		}

		state := display.State{
			Window:   viewport.Window(),
			Rotation: viewport.DisplayRotation(),
		}
		s.viewport.Set(state)

		result, err := s.fit(state)
		if err != nil {
			reply, _ := protocol.NewErrorMessage(errorKind(err, result.Size), err.Error())
			return reply
		}
		reply, _ := protocol.NewTransformMessage(result.Transform, result.Size)
		return reply

	case protocol.TypeConfig:
		update, err := msg.GetConfigUpdate()
		if err != nil {
			reply, _ := protocol.NewErrorMessage("bad_message", err.Error())
			return reply
		}

		params := make(map[string]interface{})
		if update.Preset != "" {
			params["preset"] = update.Preset
		}
		if update.Width > 0 {
			params["width"] = update.Width
		}
		if update.Height > 0 {
			params["height"] = update.Height
		}
		if update.Framerate > 0 {
			params["framerate"] = update.Framerate
		}
		if update.Quality > 0 {
			params["quality"] = update.Quality
		}

		if err := s.cameraMgr.UpdateConfig(params); err != nil {
			reply, _ := protocol.NewErrorMessage("bad_config", err.Error())
			return reply
		}
		return nil

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			return nil
		}
		reply, _ := protocol.NewPongMessage(ping.ID, msg.Timestamp, time.Now().UnixMilli())
		return reply
	}

	return nil
}
