package detection

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/teslashibe/go-attention/pkg/features"
)

type fakeCapture struct {
	err    error
	closed bool
}

func (f *fakeCapture) CaptureJPEG() ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0xff, 0xd8}, nil
}

func (f *fakeCapture) Close() error {
	f.closed = true
	return nil
}

// refinedLandmarks builds a synthetic landmark set of the size the
// mesh detector emits: both eyes open (EAR 1/3) with centered irises.
func refinedLandmarks() []features.Point {
	lm := make([]features.Point, meshLandmarks)

	setEye := func(idx [6]int, cx float64) {
		lm[idx[0]] = features.Point{X: cx - 15, Y: 100}
		lm[idx[3]] = features.Point{X: cx + 15, Y: 100}
		lm[idx[1]] = features.Point{X: cx - 5, Y: 95}
		lm[idx[5]] = features.Point{X: cx - 5, Y: 105}
		lm[idx[2]] = features.Point{X: cx + 5, Y: 95}
		lm[idx[4]] = features.Point{X: cx + 5, Y: 105}
	}
	setIris := func(idx [4]int, cx float64) {
		lm[idx[0]] = features.Point{X: cx, Y: 99}
		lm[idx[1]] = features.Point{X: cx + 1, Y: 100}
		lm[idx[2]] = features.Point{X: cx, Y: 101}
		lm[idx[3]] = features.Point{X: cx - 1, Y: 100}
	}

	setEye(features.LeftEye, 60)
	setIris(features.LeftIris, 60)
	setEye(features.RightEye, 140)
	setIris(features.RightIris, 140)
	return lm
}

// The extractor indexes the iris block (indices 468-475), so the mesh
// model's landmark count must cover it or every camera frame would be
// rejected as undetected.
func TestMeshLandmarkCountCoversIrisIndices(t *testing.T) {
	if meshLandmarks <= features.LeftIris[3] {
		t.Fatalf("mesh emits %d landmarks, extractor needs index %d",
			meshLandmarks, features.LeftIris[3])
	}

	frame, ok := features.Extract(refinedLandmarks(), time.Now())
	if !ok || !frame.Detected {
		t.Fatalf("mesh-sized landmark set rejected: ok=%v detected=%v", ok, frame.Detected)
	}
}

func TestFrameSource_DetectedFace(t *testing.T) {
	det := NewMock([]Face{{Confidence: 0.9, W: 0.3, H: 0.3, Landmarks: refinedLandmarks()}})
	src := NewFrameSource(&fakeCapture{}, det)

	frame, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !frame.Detected {
		t.Fatal("face not detected")
	}
	if math.Abs(frame.EAR-1.0/3.0) > 1e-9 {
		t.Errorf("EAR = %v, want 1/3", frame.EAR)
	}
	if frame.GazeH != 0 || frame.GazeV != 0 {
		t.Errorf("centered iris gave gaze (%v, %v)", frame.GazeH, frame.GazeV)
	}
	if frame.Timestamp.IsZero() {
		t.Error("frame not timestamped")
	}
}

func TestFrameSource_NoFaceIsAMiss(t *testing.T) {
	src := NewFrameSource(&fakeCapture{}, NewMock(nil))

	frame, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if frame.Detected {
		t.Error("empty detection reported a face")
	}
}

func TestFrameSource_ShortLandmarksIsAMiss(t *testing.T) {
	short := make([]features.Point, 10)
	src := NewFrameSource(&fakeCapture{}, NewMock([]Face{{Confidence: 0.9, Landmarks: short}}))

	frame, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if frame.Detected {
		t.Error("unindexable landmarks reported a face")
	}
}

func TestFrameSource_CaptureErrorPropagates(t *testing.T) {
	wantErr := errors.New("device gone")
	src := NewFrameSource(&fakeCapture{err: wantErr}, NewMock(nil))

	frame, err := src.Next()
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want capture error", err)
	}
	if frame.Detected {
		t.Error("failed capture reported a face")
	}
}

func TestFrameSource_CloseReleasesBoth(t *testing.T) {
	cap := &fakeCapture{}
	src := NewFrameSource(cap, NewMock(nil))

	if err := src.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !cap.closed {
		t.Error("capture source not closed")
	}
}
