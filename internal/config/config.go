// Package config provides environment-based configuration for the
// attention service commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the attention service.
const (
	DefaultPort     = "8600"
	DefaultLogDir   = "logs"
	DefaultLogLevel = "info"
	DefaultCamera   = 0
)

// Port returns the HTTP port from ATTENTION_PORT or the default.
func Port() string {
	if p := os.Getenv("ATTENTION_PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// LogDir returns the telemetry directory from ATTENTION_LOG_DIR or the default.
func LogDir() string {
	if d := os.Getenv("ATTENTION_LOG_DIR"); d != "" {
		return d
	}
	return DefaultLogDir
}

// LogLevel returns the log level from ATTENTION_LEVEL or the default.
func LogLevel() string {
	if l := os.Getenv("ATTENTION_LEVEL"); l != "" {
		return l
	}
	return DefaultLogLevel
}

// CameraIndex returns the capture device index from ATTENTION_CAMERA.
// Falls back to the default camera if unset or malformed.
func CameraIndex() int {
	if v := os.Getenv("ATTENTION_CAMERA"); v != "" {
		if idx, err := strconv.Atoi(v); err == nil && idx >= 0 {
			return idx
		}
	}
	return DefaultCamera
}

// VideoPath returns a video file path from ATTENTION_VIDEO.
// Empty means capture from the camera instead.
func VideoPath() string {
	return os.Getenv("ATTENTION_VIDEO")
}

// FaceModelPath returns the face locator model path from
// ATTENTION_FACE_MODEL. Empty means the detector default.
func FaceModelPath() string {
	return os.Getenv("ATTENTION_FACE_MODEL")
}

// MeshModelPath returns the landmark mesh model path from
// ATTENTION_MESH_MODEL. Empty means the detector default.
func MeshModelPath() string {
	return os.Getenv("ATTENTION_MESH_MODEL")
}

// ExtractorURL returns a remote feature extractor websocket URL from
// ATTENTION_EXTRACTOR_URL. Empty means extract features locally.
func ExtractorURL() string {
	return os.Getenv("ATTENTION_EXTRACTOR_URL")
}

// StartAt100 reports whether ATTENTION_START_100 is set.
// When true the gauge starts at 100 and the warm-up ramp is disabled.
func StartAt100() bool {
	v := os.Getenv("ATTENTION_START_100")
	return v == "1" || v == "true"
}
