// Package telemetry persists score samples as per-run CSV files and
// serves them back for the dashboard: one file per run, one row per
// tick, newest run first.
package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/teslashibe/go-attention/pkg/scoring"
)

// CSV layout. Column order is part of the telemetry contract; the
// frontend charts are positional.
var header = []string{"ts", "score", "ear", "gaze_h", "gaze_v"}

const timeLayout = "2006-01-02 15:04:05.000"

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return "run_" + uuid.NewString()[:8]
}

// Writer appends score samples to one run's CSV file. Rows are flushed
// as they arrive so a crash loses at most the current row.
type Writer struct {
	mu    sync.Mutex
	file  *os.File
	csv   *csv.Writer
	runID string
	path  string
}

// NewWriter creates the run file (and the log directory if needed) and
// writes the header row.
func NewWriter(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, runID+".csv")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}

	w := &Writer{
		file:  file,
		csv:   csv.NewWriter(file),
		runID: runID,
		path:  path,
	}
	if err := w.csv.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	w.csv.Flush()
	return w, w.csv.Error()
}

// Append writes one sample row and flushes it.
func (w *Writer) Append(s scoring.ScoreSample) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	row := []string{
		s.Timestamp.Format(timeLayout),
		strconv.FormatFloat(s.Score, 'f', 3, 64),
		strconv.FormatFloat(s.EAR, 'f', 4, 64),
		strconv.FormatFloat(s.GazeH, 'f', 4, 64),
		strconv.FormatFloat(s.GazeV, 'f', 4, 64),
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	w.csv.Flush()
	return w.csv.Error()
}

// RunID returns the run this writer belongs to.
func (w *Writer) RunID() string {
	return w.runID
}

// Path returns the file the run is written to.
func (w *Writer) Path() string {
	return w.path
}

// Close flushes and closes the run file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
