// Package web exposes the attention service over HTTP: run lifecycle
// control, stored telemetry, and a live sample stream.
package web

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-attention/internal/log"
	"github.com/teslashibe/go-attention/pkg/hub"
	"github.com/teslashibe/go-attention/pkg/runner"
	"github.com/teslashibe/go-attention/pkg/telemetry"
)

// Server is the attention service HTTP server. It owns the active run
// (at most one at a time) and the websocket hub samples stream over.
type Server struct {
	app    *fiber.App
	port   string
	logDir string

	runnerCfg runner.Config
	source    runner.FrameSource
	store     *telemetry.Store
	samples   *hub.Hub

	// Active run, guarded as a pair: the writer belongs to the runner.
	mu     sync.Mutex
	active *runner.Runner
	writer *telemetry.Writer
}

// NewServer creates the server. The frame source is shared across
// runs; each run gets its own session and CSV file.
func NewServer(port, logDir string, cfg runner.Config, source runner.FrameSource) *Server {
	s := &Server{
		port:      port,
		logDir:    logDir,
		runnerCfg: cfg,
		source:    source,
		store:     telemetry.NewStore(logDir),
		samples:   hub.New("samples"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Attention Service",
		DisableStartupMessage: true,
	})

	// Permissive CORS; the dashboard is served from a dev origin.
	app.Use(cors.New())

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Post("/run/start", s.handleRunStart)
	api.Post("/run/pause", s.handleRunPause)
	api.Post("/run/resume", s.handleRunResume)
	api.Post("/run/stop", s.handleRunStop)
	api.Get("/status", s.handleStatus)
	api.Get("/runs", s.handleListRuns)
	api.Get("/runs/:id/latest", s.handleRunLatest)
	api.Get("/runs/:id/samples", s.handleRunSamples)
	api.Get("/latest", s.handleLatest)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/samples", websocket.New(s.handleSamplesWS))

	s.app = app
	return s
}

// Start runs the hub and blocks serving HTTP.
func (s *Server) Start() error {
	go s.samples.Run()
	log.Info("attention service listening", "port", s.port, "log_dir", s.logDir)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the active run, closes its log and shuts the HTTP
// server down.
func (s *Server) Shutdown() error {
	s.stopActive()
	return s.app.Shutdown()
}

// stopActive tears the active run down; no-op when idle. Returns the
// stopped run's ID.
func (s *Server) stopActive() string {
	s.mu.Lock()
	active, writer := s.active, s.writer
	s.active, s.writer = nil, nil
	s.mu.Unlock()

	if active == nil {
		return ""
	}
	active.Stop()
	if writer != nil {
		if err := writer.Close(); err != nil {
			log.Warn("closing run log", "run_id", active.RunID(), "error", err)
		}
	}
	return active.RunID()
}
