package features

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-attention/pkg/scoring"
)

// remoteFrame is the wire format a remote extractor (typically a
// browser running the landmark model) pushes per frame.
type remoteFrame struct {
	EAR      float64 `json:"ear"`
	GazeH    float64 `json:"gaze_h"`
	GazeV    float64 `json:"gaze_v"`
	Detected bool    `json:"detected"`
}

// RemoteSource receives pre-extracted frame signals over a websocket
// instead of running detection locally. The remote side owns the
// deadzone squash; timestamps are assigned on receipt.
type RemoteSource struct {
	url string

	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

// NewRemoteSource creates a source for the given websocket URL.
// Call Connect before the first Next.
func NewRemoteSource(url string) *RemoteSource {
	return &RemoteSource{url: url}
}

// Connect dials the remote extractor.
func (s *RemoteSource) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.Dial(s.url, nil)
	if err != nil {
		return fmt.Errorf("extractor connect failed: %w", err)
	}

	s.mu.Lock()
	s.ws = ws
	s.closed = false
	s.mu.Unlock()
	return nil
}

// Next blocks until the next frame arrives and returns it as a
// FrameSignal stamped with the local receive time.
func (s *RemoteSource) Next() (scoring.FrameSignal, error) {
	s.mu.Lock()
	ws := s.ws
	s.mu.Unlock()

	if ws == nil {
		return scoring.FrameSignal{}, fmt.Errorf("extractor not connected")
	}

	var msg remoteFrame
	if err := ws.ReadJSON(&msg); err != nil {
		return scoring.FrameSignal{}, fmt.Errorf("extractor read: %w", err)
	}

	return scoring.FrameSignal{
		Timestamp: time.Now(),
		EAR:       msg.EAR,
		GazeH:     msg.GazeH,
		GazeV:     msg.GazeV,
		Detected:  msg.Detected,
	}, nil
}

// Close shuts the connection down. Safe to call more than once.
func (s *RemoteSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.ws == nil {
		return nil
	}
	s.closed = true
	return s.ws.Close()
}
