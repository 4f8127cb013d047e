// Package features derives the scoring inputs (eye-aspect-ratio and
// deadzone-squashed gaze offsets) from facial landmarks. It is
// stateless: every function maps one landmark set to one value, and
// all smoothing happens downstream in pkg/scoring.
package features

import (
	"math"
	"time"

	"github.com/teslashibe/go-attention/pkg/scoring"
)

// Gaze deadzone and scaling. Offsets inside the deadzone are squashed
// to exactly zero, which is what the calibrator keys on to recognize a
// centered gaze.
const (
	GazeDeadzoneX = 0.10
	GazeDeadzoneY = 0.08

	gazeScaleX = 0.5
	gazeScaleY = 0.4

	minEyeWidth = 1e-6
)

// FaceMesh landmark indices for the eye contours (p1..p6, outer corner
// first) and the irises.
var (
	LeftEye   = [6]int{33, 160, 158, 133, 153, 144}
	RightEye  = [6]int{362, 385, 387, 263, 373, 380}
	RightIris = [4]int{468, 469, 470, 471}
	LeftIris  = [4]int{472, 473, 474, 475}
)

// Point is a 2D landmark position. Units cancel out in every formula
// here, so pixel and normalized coordinates both work as long as one
// landmark set sticks to one of them.
type Point struct {
	X float64
	Y float64
}

// EAR computes the eye-aspect-ratio of one eye: the mean of the two
// vertical eyelid gaps over the horizontal eye width. Lower values
// mean more closed eyes. Returns 0 when the eye width degenerates.
func EAR(eye [6]Point) float64 {
	a := dist(eye[1], eye[5])
	b := dist(eye[2], eye[4])
	c := dist(eye[0], eye[3])
	if c < minEyeWidth {
		return 0
	}
	return (a + b) / (2 * c)
}

// GazeOffset computes the normalized horizontal/vertical displacement
// of the iris center from the eye center, relative to the eye width.
// Displacements inside the deadzone are squashed to zero; the rest are
// scaled and clamped to [0,1].
func GazeOffset(eye [6]Point, iris []Point) (h, v float64) {
	eyeW := dist(eye[0], eye[3])
	if eyeW < minEyeWidth {
		return 0, 0
	}

	eyeC := centerOf(eye[:])
	irisC := centerOf(iris)

	dx := (irisC.X - eyeC.X) / eyeW
	dy := (irisC.Y - eyeC.Y) / eyeW
	if math.Abs(dx) < GazeDeadzoneX {
		dx = 0
	}
	if math.Abs(dy) < GazeDeadzoneY {
		dy = 0
	}

	h = clamp01(math.Abs(dx) / gazeScaleX)
	v = clamp01(math.Abs(dy) / gazeScaleY)
	return h, v
}

// Extract converts a full FaceMesh landmark set into one FrameSignal,
// averaging EAR and gaze over both eyes. ok is false when the landmark
// set is too small to index.
func Extract(landmarks []Point, now time.Time) (frame scoring.FrameSignal, ok bool) {
	if len(landmarks) <= LeftIris[3] {
		return scoring.FrameSignal{Timestamp: now}, false
	}

	left := eyePoints(landmarks, LeftEye)
	right := eyePoints(landmarks, RightEye)

	ghL, gvL := GazeOffset(left, irisPoints(landmarks, LeftIris))
	ghR, gvR := GazeOffset(right, irisPoints(landmarks, RightIris))

	return scoring.FrameSignal{
		Timestamp: now,
		EAR:       (EAR(left) + EAR(right)) / 2,
		GazeH:     (ghL + ghR) / 2,
		GazeV:     (gvL + gvR) / 2,
		Detected:  true,
	}, true
}

func eyePoints(landmarks []Point, idx [6]int) [6]Point {
	var eye [6]Point
	for i, j := range idx {
		eye[i] = landmarks[j]
	}
	return eye
}

func irisPoints(landmarks []Point, idx [4]int) []Point {
	pts := make([]Point, len(idx))
	for i, j := range idx {
		pts[i] = landmarks[j]
	}
	return pts
}

func centerOf(pts []Point) Point {
	var c Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	return Point{X: c.X / n, Y: c.Y / n}
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
