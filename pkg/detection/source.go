package detection

import (
	"time"

	"github.com/teslashibe/go-attention/pkg/capture"
	"github.com/teslashibe/go-attention/pkg/features"
	"github.com/teslashibe/go-attention/pkg/scoring"
)

// FrameSource runs the local extraction pipeline: capture a frame,
// detect the best face, extract eye features. A frame with no usable
// face comes back as detected=false, not as an error; errors are
// reserved for capture and inference failures.
type FrameSource struct {
	capture capture.Source
	det     Detector
}

// NewFrameSource composes a capture source and a detector.
func NewFrameSource(cap capture.Source, det Detector) *FrameSource {
	return &FrameSource{capture: cap, det: det}
}

// Next produces the frame signal for the current camera frame.
func (s *FrameSource) Next() (scoring.FrameSignal, error) {
	now := time.Now()
	miss := scoring.FrameSignal{Timestamp: now}

	jpeg, err := s.capture.CaptureJPEG()
	if err != nil {
		return miss, err
	}

	faces, err := s.det.Detect(jpeg)
	if err != nil {
		return miss, err
	}

	best := SelectBest(faces)
	if best == nil || len(best.Landmarks) == 0 {
		return miss, nil
	}

	frame, ok := features.Extract(best.Landmarks, now)
	if !ok {
		return miss, nil
	}
	return frame, nil
}

// Close releases the detector and the capture device.
func (s *FrameSource) Close() error {
	derr := s.det.Close()
	cerr := s.capture.Close()
	if derr != nil {
		return derr
	}
	return cerr
}
