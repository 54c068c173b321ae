package diag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ddugovic/tasbot/internal/player"
)

func TestHTMLLogAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test-log.html")

	l, err := OpenHTMLLog(path)
	if err != nil {
		t.Fatalf("OpenHTMLLog: %v", err)
	}
	l.Roundf("round %d", 1)
	l.Close()

	// Reopening appends; the preamble is not rewritten.
	l, err = OpenHTMLLog(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	l.Backtrackf("backtrack at %d", 300)
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Count(content, "<!DOCTYPE html>") != 1 {
		t.Error("preamble written more than once")
	}
	if !strings.Contains(content, "round 1") || !strings.Contains(content, "backtrack at 300") {
		t.Error("entries missing after reopen")
	}
}

func TestPlotTrajectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traj.svg")
	frames := []int{100, 200, 300}
	values := []float64{0.1, 0.4, 0.7}
	if err := PlotTrajectory(path, frames, values); err != nil {
		t.Fatalf("PlotTrajectory: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("no SVG written: %v", err)
	}
}

func TestPlotScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.svg")
	if err := PlotScores(path, 7, []float64{1, -2, 3.5}, 2); err != nil {
		t.Fatalf("PlotScores: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("no SVG written: %v", err)
	}
}

func TestReporterWithNilSinks(t *testing.T) {
	r := NewReporter("g", "", nil, nil, nil, zerolog.Nop())
	// Every sink disabled: records must be dropped silently.
	r.Round(player.RoundReport{Iter: 1, MovieLen: 10, Normalized: 0.5})
	r.Backtrack(player.BacktrackReport{Iter: 1, Movenum: 5})
}
