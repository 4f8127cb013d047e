// Package detection provides facial landmark detection backends for
// the attention pipeline.
package detection

import "github.com/teslashibe/go-attention/pkg/features"

// Face represents a detected face with its landmark set.
type Face struct {
	X, Y       float64 // Top-left of the bounding box (0-1 normalized)
	W, H       float64 // Width and height (0-1 normalized)
	Confidence float64 // Detection confidence (0-1)

	// Landmarks in FaceMesh index order, normalized to the full
	// image. Empty when the backend only locates the face.
	Landmarks []features.Point
}

// Center returns the center point of the face bounding box.
func (f Face) Center() (x, y float64) {
	return f.X + f.W/2, f.Y + f.H/2
}

// Area returns the area of the bounding box.
func (f Face) Area() float64 {
	return f.W * f.H
}

// Detector is the interface for landmark detection backends.
type Detector interface {
	// Detect finds faces in the JPEG image.
	Detect(jpeg []byte) ([]Face, error)

	// Close releases resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	FaceModelPath    string  // Path to the face locator ONNX model
	MeshModelPath    string  // Path to the iris-refined landmark mesh ONNX model (478 points)
	ConfidenceThresh float64 // Minimum face confidence (default 0.5)
	MeshInputSize    int     // Mesh model input size (square)
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		FaceModelPath:    "models/face_detection_yunet.onnx",
		MeshModelPath:    "models/face_mesh.onnx",
		ConfidenceThresh: 0.5,
		MeshInputSize:    192,
	}
}

// SelectBest picks the best face from multiple detections.
// Priority: confidence * 0.7 + area * 0.3, so the scored subject is
// the clearest, closest face rather than a background passerby.
func SelectBest(faces []Face) *Face {
	if len(faces) == 0 {
		return nil
	}

	if len(faces) == 1 {
		return &faces[0]
	}

	maxArea := 0.0
	for _, f := range faces {
		if f.Area() > maxArea {
			maxArea = f.Area()
		}
	}

	bestScore := -1.0
	var best *Face

	for i := range faces {
		score := faces[i].Confidence*0.7 + (faces[i].Area()/maxArea)*0.3
		if score > bestScore {
			bestScore = score
			best = &faces[i]
		}
	}

	return best
}
