package web

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-attention/pkg/hub"
	"github.com/teslashibe/go-attention/pkg/runner"
	"github.com/teslashibe/go-attention/pkg/telemetry"
)

// handleHealth reports liveness and where logs land.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":      true,
		"log_dir": s.logDir,
	})
}

// handleRunStart starts a new run. Only one run may be active.
func (s *Server) handleRunStart(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && s.active.Running() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a run is already active",
		})
	}

	runID := telemetry.NewRunID()
	writer, err := telemetry.NewWriter(s.logDir, runID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	r := runner.New(s.runnerCfg, runID, s.source, writer, s.samples)
	r.Start(context.Background())
	s.active, s.writer = r, writer

	s.samples.BroadcastJSON(fiber.Map{"event": "run_started", "run_id": runID})
	return c.JSON(fiber.Map{
		"run_id": runID,
		"log":    writer.Path(),
	})
}

// handleRunPause pauses the active run.
func (s *Server) handleRunPause(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return noActiveRun(c)
	}
	s.active.Pause()
	return c.JSON(fiber.Map{"run_id": s.active.RunID(), "paused": true})
}

// handleRunResume resumes a paused run.
func (s *Server) handleRunResume(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return noActiveRun(c)
	}
	s.active.Resume()
	return c.JSON(fiber.Map{"run_id": s.active.RunID(), "paused": false})
}

// handleRunStop stops the active run and closes its log file.
func (s *Server) handleRunStop(c *fiber.Ctx) error {
	runID := s.stopActive()
	if runID == "" {
		return noActiveRun(c)
	}
	s.samples.BroadcastJSON(fiber.Map{"event": "run_stopped", "run_id": runID})
	return c.JSON(fiber.Map{"run_id": runID, "stopped": true})
}

// handleStatus returns the active run snapshot, or an idle one.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	if active == nil {
		return c.JSON(runner.Snapshot{})
	}
	return c.JSON(active.Snapshot())
}

// handleListRuns lists stored runs, newest first.
func (s *Server) handleListRuns(c *fiber.Ctx) error {
	runs, err := s.store.ListRuns()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if runs == nil {
		runs = []telemetry.RunInfo{}
	}
	return c.JSON(runs)
}

// handleRunLatest returns the last sample of one run.
func (s *Server) handleRunLatest(c *fiber.Ctx) error {
	rec, err := s.store.Latest(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "run not found",
		})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "run has no samples",
		})
	}
	return c.JSON(rec)
}

// handleRunSamples returns every sample of one run.
func (s *Server) handleRunSamples(c *fiber.Ctx) error {
	records, err := s.store.Read(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "run not found",
		})
	}
	if records == nil {
		records = []telemetry.Record{}
	}
	return c.JSON(records)
}

// handleLatest returns the last sample of the newest run.
func (s *Server) handleLatest(c *fiber.Ctx) error {
	rec, err := s.store.LatestAny()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no runs recorded",
		})
	}
	return c.JSON(rec)
}

// handleSamplesWS streams live samples to a dashboard client.
func (s *Server) handleSamplesWS(c *websocket.Conn) {
	client := hub.NewClient(s.samples, c)
	client.Run()
}

func noActiveRun(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"error": "no active run",
	})
}
