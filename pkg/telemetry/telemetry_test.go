package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-attention/pkg/scoring"
)

func sampleAt(t time.Time, score float64) scoring.ScoreSample {
	return scoring.ScoreSample{
		Timestamp: t,
		Score:     score,
		EAR:       0.25,
		GazeH:     0.1,
		GazeV:     0.05,
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	runID := NewRunID()

	w, err := NewWriter(dir, runID)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := w.Append(sampleAt(t0.Add(time.Duration(i)*100*time.Millisecond), float64(90+i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store := NewStore(dir)
	records, err := store.Read(runID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("read %d records, want 3", len(records))
	}
	if records[0].Score != 90 || records[2].Score != 92 {
		t.Errorf("scores out of order: %v, %v", records[0].Score, records[2].Score)
	}
	if records[0].EAR != 0.25 || records[0].GazeH != 0.1 || records[0].GazeV != 0.05 {
		t.Errorf("features mangled: %+v", records[0])
	}
	if !records[1].TS.Equal(t0.Add(100 * time.Millisecond)) {
		t.Errorf("timestamp mangled: %v", records[1].TS)
	}
}

func TestWriter_HeaderAndColumnOrder(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "run_test")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.Close()

	data, err := os.ReadFile(filepath.Join(dir, "run_test.csv"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "ts,score,ear,gaze_h,gaze_v" {
		t.Errorf("header = %q, want ts,score,ear,gaze_h,gaze_v", got)
	}
}

func TestStore_Latest(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewWriter(dir, "run_a")
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w.Append(sampleAt(t0, 50))
	w.Append(sampleAt(t0.Add(time.Second), 75))
	w.Close()

	store := NewStore(dir)
	rec, err := store.Latest("run_a")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec == nil || rec.Score != 75 {
		t.Fatalf("latest = %+v, want score 75", rec)
	}
}

func TestStore_LatestSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_b.csv")
	content := "ts,score,ear,gaze_h,gaze_v\n" +
		"2025-06-01 09:00:00.000,50.000,0.2500,0.0000,0.0000\n" +
		"garbage\n" +
		"not-a-time,1,2,3,4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rec, err := NewStore(dir).Latest("run_b")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec == nil || rec.Score != 50 {
		t.Fatalf("latest = %+v, want the last valid row (score 50)", rec)
	}
}

func TestStore_EmptyRunHasNoLatest(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewWriter(dir, "run_empty")
	w.Close()

	rec, err := NewStore(dir).Latest("run_empty")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec != nil {
		t.Fatalf("latest = %+v for an empty run, want nil", rec)
	}
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	dir := t.TempDir()

	for i, id := range []string{"run_old", "run_mid", "run_new"} {
		w, err := NewWriter(dir, id)
		if err != nil {
			t.Fatalf("writer %s: %v", id, err)
		}
		w.Close()
		// Space the mtimes out explicitly; sub-second file clocks are
		// not reliable across filesystems.
		mtime := time.Now().Add(time.Duration(i-3) * time.Minute)
		if err := os.Chtimes(filepath.Join(dir, id+".csv"), mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := NewStore(dir).ListRuns()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("listed %d runs, want 3", len(runs))
	}
	want := []string{"run_new", "run_mid", "run_old"}
	for i, r := range runs {
		if r.ID != want[i] {
			t.Errorf("runs[%d] = %s, want %s", i, r.ID, want[i])
		}
	}
}

func TestStore_MissingDirIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"))
	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("listed %d runs from a missing dir", len(runs))
	}
	if _, err := store.LatestAny(); err != nil {
		t.Fatalf("latest-any: %v", err)
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if !strings.HasPrefix(a, "run_") {
		t.Errorf("run ID %q missing prefix", a)
	}
	if a == b {
		t.Error("run IDs collide")
	}
}
