// Package diag renders the engine's diagnostic outputs: the
// append-only HTML log, SVG plots of objective and score
// trajectories, and the composite reporter that fans round records
// out to every sink.
package diag

import (
	"fmt"
	"os"
	"time"
)

// HTMLLog is the append-only <game>-log.html writer. Entries are
// self-contained divs so a partially-written file still renders.
type HTMLLog struct {
	f *os.File
}

// OpenHTMLLog opens the log for appending, writing the preamble when
// the file is new.
func OpenHTMLLog(path string) (*HTMLLog, error) {
	info, statErr := os.Stat(path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open html log: %w", err)
	}
	l := &HTMLLog{f: f}
	if fresh {
		fmt.Fprintln(f, `<!DOCTYPE html>`)
		fmt.Fprintln(f, `<meta charset="utf-8">`)
		fmt.Fprintln(f, `<title>tasbot log</title>`)
		fmt.Fprintln(f, `<style>body{font-family:monospace;background:#111;color:#ddd}`+
			`.round{color:#8c8}.backtrack{color:#fc6}.note{color:#99f}</style>`)
	}
	return l, nil
}

// Close closes the underlying file.
func (l *HTMLLog) Close() error { return l.f.Close() }

func (l *HTMLLog) entry(class, format string, args ...any) {
	fmt.Fprintf(l.f, `<div class="%s">[%s] %s</div>`+"\n",
		class, time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// Roundf appends a round entry.
func (l *HTMLLog) Roundf(format string, args ...any) { l.entry("round", format, args...) }

// Backtrackf appends a backtrack entry.
func (l *HTMLLog) Backtrackf(format string, args ...any) { l.entry("backtrack", format, args...) }

// Notef appends a free-form entry.
func (l *HTMLLog) Notef(format string, args ...any) { l.entry("note", format, args...) }
