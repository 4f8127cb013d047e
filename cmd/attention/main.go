// Attention scoring service: captures frames, scores attention per
// tick and serves the gauge over HTTP and websocket.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-attention/internal/config"
	"github.com/teslashibe/go-attention/internal/log"
	"github.com/teslashibe/go-attention/pkg/capture"
	"github.com/teslashibe/go-attention/pkg/detection"
	"github.com/teslashibe/go-attention/pkg/features"
	"github.com/teslashibe/go-attention/pkg/runner"
	"github.com/teslashibe/go-attention/pkg/web"
)

type options struct {
	port       string
	logDir     string
	level      string
	camera     int
	video      string
	extractor  string
	startAt100 bool
}

func main() {
	opts := parseFlags()
	log.Init(opts.level)

	source, cleanup, err := buildSource(opts)
	if err != nil {
		log.Error("source setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	runnerCfg := runner.DefaultConfig()
	runnerCfg.Scoring.StartAt100 = opts.startAt100

	srv := web.NewServer(opts.port, opts.logDir, runnerCfg, source)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	if err := srv.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

// parseFlags merges flags over environment configuration.
func parseFlags() options {
	port := flag.String("port", config.Port(), "HTTP port")
	logDir := flag.String("log-dir", config.LogDir(), "Telemetry directory")
	level := flag.String("level", config.LogLevel(), "Log level: debug, info, warn, error")
	camera := flag.Int("camera", config.CameraIndex(), "Capture device index")
	video := flag.String("video", config.VideoPath(), "Score a video file instead of the camera")
	extractor := flag.String("extractor", config.ExtractorURL(), "Remote feature extractor websocket URL")
	start100 := flag.Bool("start-100", config.StartAt100(), "Start the gauge at 100 and skip warm-up")
	flag.Parse()

	return options{
		port:       *port,
		logDir:     *logDir,
		level:      *level,
		camera:     *camera,
		video:      *video,
		extractor:  *extractor,
		startAt100: *start100,
	}
}

// buildSource picks the frame source: a remote extractor when
// configured, the local capture+detection pipeline otherwise.
func buildSource(opts options) (runner.FrameSource, func(), error) {
	if opts.extractor != "" {
		remote := features.NewRemoteSource(opts.extractor)
		if err := remote.Connect(); err != nil {
			return nil, func() {}, err
		}
		log.Info("using remote feature extractor", "url", opts.extractor)
		return remote, func() { remote.Close() }, nil
	}

	capCfg := capture.DefaultConfig()
	var (
		cam *capture.Camera
		err error
	)
	if opts.video != "" {
		cam, err = capture.OpenVideo(opts.video, capCfg)
		log.Info("scoring video file", "path", opts.video)
	} else {
		cam, err = capture.OpenCamera(opts.camera, capCfg)
		log.Info("scoring camera", "index", opts.camera)
	}
	if err != nil {
		return nil, func() {}, err
	}

	detCfg := detection.DefaultConfig()
	if p := config.FaceModelPath(); p != "" {
		detCfg.FaceModelPath = p
	}
	if p := config.MeshModelPath(); p != "" {
		detCfg.MeshModelPath = p
	}

	det, err := detection.NewMesh(detCfg)
	if err != nil {
		cam.Close()
		return nil, func() {}, err
	}

	source := detection.NewFrameSource(cam, det)
	return source, func() { source.Close() }, nil
}
