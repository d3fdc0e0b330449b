// Package remote consumes a network camera's WebRTC stream and exposes it as
// a capture source, so the fit pipeline does not care whether frames come
// from local hardware or the network.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"

	"github.com/camkit/go-viewfit/internal/log"
	"github.com/camkit/go-viewfit/pkg/debug"
	"github.com/camkit/go-viewfit/pkg/preview"
)

const (
	connectTimeout = 15 * time.Second
	decodeInterval = 100 * time.Millisecond
)

// Camera connects to a network camera via its GStreamer-style signalling
// server and receives the H264 preview stream over WebRTC.
type Camera struct {
	signallingURL string
	apiURL        string
	producerName  string

	ws      *websocket.Conn
	pc      *webrtc.PeerConnection
	wsMutex sync.Mutex

	myPeerID   string
	producerID string
	sessionID  string

	// Latest decoded frame
	latestFrame []byte
	frameMutex  sync.RWMutex
	frameReady  chan struct{}

	size   preview.Size
	sizeMu sync.Mutex

	closed atomic.Bool
}

// NewCamera creates a client for the camera reachable at host.
// The signalling server is expected on port 8443, the HTTP API on 8000.
func NewCamera(host, producerName string) *Camera {
	return &Camera{
		signallingURL: fmt.Sprintf("ws://%s:8443", host),
		apiURL:        fmt.Sprintf("http://%s:8000", host),
		producerName:  producerName,
		frameReady:    make(chan struct{}, 1),
	}
}

// Connect establishes the WebRTC connection and waits for the first frame.
func (c *Camera) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	var err error
	c.ws, _, err = dialer.Dial(c.signallingURL, nil)
	if err != nil {
		return fmt.Errorf("signalling connect failed: %w", err)
	}

	if err := c.waitForWelcome(); err != nil {
		return fmt.Errorf("welcome failed: %w", err)
	}
	log.Debug("signalling welcome received", "peer_id", c.myPeerID)

	if err := c.findProducer(); err != nil {
		return fmt.Errorf("find producer failed: %w", err)
	}

	if err := c.createPeerConnection(); err != nil {
		return fmt.Errorf("peer connection failed: %w", err)
	}

	if err := c.startSession(); err != nil {
		return fmt.Errorf("start session failed: %w", err)
	}

	go c.handleSignalling()

	select {
	case <-c.frameReady:
		log.Info("remote camera connected", "producer", c.producerName)
	case <-time.After(connectTimeout):
		return fmt.Errorf("timeout waiting for video from %s", c.producerName)
	}

	return nil
}

func (c *Camera) waitForWelcome() error {
	c.ws.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := c.ws.ReadMessage()
	c.ws.SetReadDeadline(time.Time{})

	if err != nil {
		return err
	}

	var welcome struct {
		Type   string `json:"type"`
		PeerID string `json:"peerId"`
	}
	if err := json.Unmarshal(msg, &welcome); err != nil {
		return err
	}
	if welcome.Type != "welcome" {
		return fmt.Errorf("expected welcome, got %s", welcome.Type)
	}
	c.myPeerID = welcome.PeerID
	return nil
}

func (c *Camera) findProducer() error {
	c.wsMutex.Lock()
	err := c.ws.WriteJSON(map[string]string{"type": "list"})
	c.wsMutex.Unlock()
	if err != nil {
		return err
	}

	c.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := c.ws.ReadMessage()
	c.ws.SetReadDeadline(time.Time{})
	if err != nil {
		return err
	}

	var listResp struct {
		Type      string `json:"type"`
		Producers []struct {
			ID   string            `json:"id"`
			Meta map[string]string `json:"meta"`
		} `json:"producers"`
	}
	if err := json.Unmarshal(msg, &listResp); err != nil {
		return err
	}

	for _, p := range listResp.Producers {
		if name, ok := p.Meta["name"]; ok && name == c.producerName {
			c.producerID = p.ID
			return nil
		}
	}
	return fmt.Errorf("producer %q not found in %d producers", c.producerName, len(listResp.Producers))
}

func (c *Camera) createPeerConnection() error {
	config := webrtc.Configuration{}

	var err error
	c.pc, err = webrtc.NewPeerConnection(config)
	if err != nil {
		return err
	}

	// We want to receive video
	if _, err = c.pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	}); err != nil {
		return err
	}

	c.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Debug("got track", "kind", track.Kind().String(), "codec", track.Codec().MimeType)
		if track.Kind() == webrtc.RTPCodecTypeVideo {
			go c.handleVideoTrack(track)
		}
	})

	c.pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate != nil {
			c.sendICECandidate(candidate)
		}
	})

	c.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Debug("connection state changed", "state", state.String())
	})

	return nil
}

func (c *Camera) startSession() error {
	c.wsMutex.Lock()
	err := c.ws.WriteJSON(map[string]string{
		"type":   "startSession",
		"peerId": c.producerID,
	})
	c.wsMutex.Unlock()
	return err
}

func (c *Camera) handleSignalling() {
	for !c.closed.Load() {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if !c.closed.Load() {
				log.Warn("signalling error", "error", err)
			}
			return
		}

		var baseMsg struct {
			Type      string `json:"type"`
			SessionID string `json:"sessionId"`
		}
		if err := json.Unmarshal(msg, &baseMsg); err != nil {
			log.Warn("malformed signalling message", "error", err)
			continue
		}

		switch baseMsg.Type {
		case "sessionStarted":
			c.sessionID = baseMsg.SessionID

		case "peer":
			c.handlePeerMessage(msg)

		case "endSession":
			return
		}
	}
}

func (c *Camera) handlePeerMessage(msg []byte) {
	// The signalling server relays whatever the producer sends; never trust
	// the shape of a peer message.
	var peerMsg map[string]interface{}
	if err := json.Unmarshal(msg, &peerMsg); err != nil {
		log.Warn("malformed peer message", "error", err)
		return
	}

	if sdpData, ok := peerMsg["sdp"]; ok {
		sdpMap, ok := sdpData.(map[string]interface{})
		if !ok {
			log.Warn("peer message sdp is not an object")
			return
		}
		sdpType, typeOK := sdpMap["type"].(string)
		sdpStr, sdpOK := sdpMap["sdp"].(string)
		if !typeOK || !sdpOK {
			log.Warn("peer message sdp missing type or sdp string")
			return
		}

		if sdpType == "offer" {
			offer := webrtc.SessionDescription{
				Type: webrtc.SDPTypeOffer,
				SDP:  sdpStr,
			}

			if err := c.pc.SetRemoteDescription(offer); err != nil {
				log.Warn("SetRemoteDescription failed", "error", err)
				return
			}

			answer, err := c.pc.CreateAnswer(nil)
			if err != nil {
				log.Warn("CreateAnswer failed", "error", err)
				return
			}

			if err := c.pc.SetLocalDescription(answer); err != nil {
				log.Warn("SetLocalDescription failed", "error", err)
				return
			}

			c.sendSDP(answer)
		}
	}

	if iceData, ok := peerMsg["ice"]; ok {
		iceMap, ok := iceData.(map[string]interface{})
		if !ok {
			log.Warn("peer message ice is not an object")
			return
		}
		candidate, ok := iceMap["candidate"].(string)
		if !ok {
			log.Warn("peer message ice missing candidate string")
			return
		}

		var sdpMid string
		if mid, ok := iceMap["sdpMid"].(string); ok {
			sdpMid = mid
		}

		var sdpMLineIndex uint16
		if idx, ok := iceMap["sdpMLineIndex"].(float64); ok {
			sdpMLineIndex = uint16(idx)
		}

		c.pc.AddICECandidate(webrtc.ICECandidateInit{
			Candidate:     candidate,
			SDPMid:        &sdpMid,
			SDPMLineIndex: &sdpMLineIndex,
		})
	}
}

func (c *Camera) sendSDP(sdp webrtc.SessionDescription) {
	msg := map[string]interface{}{
		"type":      "peer",
		"sessionId": c.sessionID,
		"sdp": map[string]string{
			"type": sdp.Type.String(),
			"sdp":  sdp.SDP,
		},
	}
	c.wsMutex.Lock()
	c.ws.WriteJSON(msg)
	c.wsMutex.Unlock()
}

func (c *Camera) sendICECandidate(candidate *webrtc.ICECandidate) {
	if c.sessionID == "" {
		return
	}

	init := candidate.ToJSON()
	msg := map[string]interface{}{
		"type":      "peer",
		"sessionId": c.sessionID,
		"ice": map[string]interface{}{
			"candidate":     init.Candidate,
			"sdpMid":        init.SDPMid,
			"sdpMLineIndex": init.SDPMLineIndex,
		},
	}
	c.wsMutex.Lock()
	c.ws.WriteJSON(msg)
	c.wsMutex.Unlock()
}

func (c *Camera) handleVideoTrack(track *webrtc.TrackRemote) {
	select {
	case c.frameReady <- struct{}{}:
	default:
	}

	// Collect H264 NAL units and decode periodically
	var nalBuffer bytes.Buffer
	lastDecode := time.Now()

	for !c.closed.Load() {
		var pkt *rtp.Packet
		var err error
		pkt, _, err = track.ReadRTP()
		if err != nil {
			return
		}

		nalBuffer.Write(pkt.Payload)

		if time.Since(lastDecode) > decodeInterval {
			c.decodeH264ToJPEG(nalBuffer.Bytes())
			nalBuffer.Reset()
			lastDecode = time.Now()
		}
	}
}

func (c *Camera) decodeH264ToJPEG(h264Data []byte) {
	if len(h264Data) < 100 {
		return
	}

	tmpH264 := "/tmp/viewfit_stream.h264"
	tmpJPEG := "/tmp/viewfit_frame.jpg"

	os.WriteFile(tmpH264, h264Data, 0644)

	// ffmpeg is the pragmatic H264 decoder here; a keyframe arrives at
	// least once per second, so most intervals produce a usable frame.
	cmd := exec.Command("ffmpeg", "-y", "-i", tmpH264, "-vframes", "1", "-f", "image2", tmpJPEG)
	cmd.Run()

	jpegData, err := os.ReadFile(tmpJPEG)
	if err == nil && len(jpegData) > 1000 {
		c.frameMutex.Lock()
		c.latestFrame = jpegData
		c.frameMutex.Unlock()
		debug.FrameLog("decoded remote frame: %d bytes from %d h264 bytes\n", len(jpegData), len(h264Data))
	}
}

// ReadJPEG returns the latest decoded frame. The quality argument is ignored:
// the remote end owns encoding.
func (c *Camera) ReadJPEG(quality int) ([]byte, error) {
	c.frameMutex.RLock()
	defer c.frameMutex.RUnlock()

	if c.latestFrame == nil {
		return nil, fmt.Errorf("remote: no frame received yet from %s", c.producerName)
	}
	return append([]byte(nil), c.latestFrame...), nil
}

// Close shuts down the peer connection and signalling socket.
func (c *Camera) Close() error {
	c.closed.Store(true)
	if c.pc != nil {
		c.pc.Close()
	}
	if c.ws != nil {
		return c.ws.Close()
	}
	return nil
}
