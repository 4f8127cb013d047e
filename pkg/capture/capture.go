// Package capture provides JPEG frame sources for the attention
// service: a webcam or a prerecorded video file, both through gocv.
package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Source is the interface the pipeline captures frames through.
type Source interface {
	// CaptureJPEG grabs the next frame as JPEG bytes.
	CaptureJPEG() ([]byte, error)

	// Close releases the underlying device.
	Close() error
}

// Config holds capture parameters.
type Config struct {
	Width   int // Requested frame width (cameras only)
	Height  int // Requested frame height (cameras only)
	Quality int // JPEG quality 1-100
}

// DefaultConfig returns the capture defaults.
func DefaultConfig() Config {
	return Config{
		Width:   1280,
		Height:  720,
		Quality: 85,
	}
}

// Camera captures frames from a webcam or a video file.
type Camera struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	frame  gocv.Mat
	config Config
	closed bool
}

// OpenCamera opens the capture device at the given index.
func OpenCamera(index int, cfg Config) (*Camera, error) {
	cap, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", index, err)
	}

	if cfg.Width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}

	return &Camera{cap: cap, frame: gocv.NewMat(), config: cfg}, nil
}

// OpenVideo opens a prerecorded video file.
func OpenVideo(path string, cfg Config) (*Camera, error) {
	cap, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	return &Camera{cap: cap, frame: gocv.NewMat(), config: cfg}, nil
}

// CaptureJPEG grabs and encodes the next frame.
func (c *Camera) CaptureJPEG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("capture closed")
	}
	if ok := c.cap.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, fmt.Errorf("no frame from source")
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, c.frame,
		[]int{gocv.IMWriteJpegQuality, c.config.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// Copy out: the native buffer is freed on Close.
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// Close releases the device. Safe to call more than once.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.frame.Close()
	return c.cap.Close()
}
