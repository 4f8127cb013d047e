// Replay scores a recorded feature CSV offline: every row runs
// through a fresh scoring session at full speed and the resulting
// samples land in the telemetry directory like a live run.
//
// Input format, one row per tick:
//
//	ts,ear,gaze_h,gaze_v,detected
//	2025-06-01 09:00:00.000,0.2800,0.0000,0.0000,1
package main

import (
	"encoding/csv"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/teslashibe/go-attention/internal/config"
	"github.com/teslashibe/go-attention/internal/log"
	"github.com/teslashibe/go-attention/pkg/scoring"
	"github.com/teslashibe/go-attention/pkg/telemetry"
)

const timeLayout = "2006-01-02 15:04:05.000"

func main() {
	in := flag.String("in", "", "Feature CSV to replay (required)")
	logDir := flag.String("log-dir", config.LogDir(), "Telemetry directory for the scored run")
	level := flag.String("level", config.LogLevel(), "Log level: debug, info, warn, error")
	start100 := flag.Bool("start-100", config.StartAt100(), "Start the gauge at 100 and skip warm-up")
	flag.Parse()

	log.Init(*level)
	if *in == "" {
		log.Error("missing -in feature CSV")
		os.Exit(2)
	}

	frames, err := loadFrames(*in)
	if err != nil {
		log.Error("loading features", "path", *in, "error", err)
		os.Exit(1)
	}
	if len(frames) == 0 {
		log.Error("no usable rows", "path", *in)
		os.Exit(1)
	}

	runID := telemetry.NewRunID()
	writer, err := telemetry.NewWriter(*logDir, runID)
	if err != nil {
		log.Error("creating run log", "error", err)
		os.Exit(1)
	}

	cfg := scoring.DefaultConfig()
	cfg.StartAt100 = *start100
	session := scoring.NewSession(cfg)

	for _, frame := range frames {
		if err := writer.Append(session.ProcessTick(frame)); err != nil {
			log.Error("writing sample", "error", err)
			os.Exit(1)
		}
	}
	if err := writer.Close(); err != nil {
		log.Error("closing run log", "error", err)
		os.Exit(1)
	}

	log.Info("replay complete",
		"run_id", runID,
		"frames", len(frames),
		"final_score", session.Score(),
		"log", writer.Path())
}

// loadFrames parses the feature CSV. The header and malformed rows
// are skipped with a warning.
func loadFrames(path string) ([]scoring.FrameSignal, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var frames []scoring.FrameSignal
	for i, row := range rows {
		frame, ok := parseFrame(row)
		if !ok {
			if i != 0 { // Row 0 is usually the header
				log.Warn("skipping malformed row", "line", i+1)
			}
			continue
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func parseFrame(row []string) (scoring.FrameSignal, bool) {
	if len(row) < 5 {
		return scoring.FrameSignal{}, false
	}

	ts, err := time.Parse(timeLayout, strings.TrimSpace(row[0]))
	if err != nil {
		return scoring.FrameSignal{}, false
	}

	vals := make([]float64, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return scoring.FrameSignal{}, false
		}
		vals[i] = v
	}

	detected := false
	switch strings.TrimSpace(row[4]) {
	case "1", "true":
		detected = true
	case "0", "false":
	default:
		return scoring.FrameSignal{}, false
	}

	return scoring.FrameSignal{
		Timestamp: ts,
		EAR:       vals[0],
		GazeH:     vals[1],
		GazeV:     vals[2],
		Detected:  detected,
	}, true
}
