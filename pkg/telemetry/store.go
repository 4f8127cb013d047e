package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RunInfo describes one stored run.
type RunInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Record is one stored sample row.
type Record struct {
	TS    time.Time `json:"ts"`
	Score float64   `json:"score"`
	EAR   float64   `json:"ear"`
	GazeH float64   `json:"gaze_h"`
	GazeV float64   `json:"gaze_v"`
}

// Store reads runs back from the log directory.
type Store struct {
	dir string
}

// NewStore creates a store over the given directory. The directory
// does not have to exist yet; an empty listing is returned until the
// first run is written.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// ListRuns returns all stored runs, newest first.
func (s *Store) ListRuns() ([]RunInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	var runs []RunInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		runs = append(runs, RunInfo{
			ID:        strings.TrimSuffix(e.Name(), ".csv"),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// Read returns every valid sample row of a run in file order.
func (s *Store) Read(runID string) ([]Record, error) {
	rows, err := s.readRows(runID)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, row := range rows {
		if rec, ok := parseRow(row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Latest returns the last valid sample of a run, or nil when the run
// holds no data rows yet.
func (s *Store) Latest(runID string) (*Record, error) {
	rows, err := s.readRows(runID)
	if err != nil {
		return nil, err
	}

	// Scan backwards, skipping the header and malformed rows.
	for i := len(rows) - 1; i >= 0; i-- {
		if rec, ok := parseRow(rows[i]); ok {
			return &rec, nil
		}
	}
	return nil, nil
}

// LatestAny returns the last sample of the newest run, or nil when no
// runs exist.
func (s *Store) LatestAny() (*Record, error) {
	runs, err := s.ListRuns()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return s.Latest(runs[0].ID)
}

func (s *Store) readRows(runID string) ([][]string, error) {
	path := filepath.Join(s.dir, runID+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run %s: %w", runID, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1 // Tolerate short rows, parseRow filters them
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	return rows, nil
}

func parseRow(row []string) (Record, bool) {
	if len(row) < 5 {
		return Record{}, false
	}
	if strings.EqualFold(strings.TrimSpace(row[0]), "ts") {
		return Record{}, false // header
	}

	ts, err := time.Parse(timeLayout, strings.TrimSpace(row[0]))
	if err != nil {
		return Record{}, false
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Record{}, false
		}
		vals[i] = v
	}

	return Record{
		TS:    ts,
		Score: vals[0],
		EAR:   vals[1],
		GazeH: vals[2],
		GazeV: vals[3],
	}, true
}
