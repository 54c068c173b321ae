// Package movie reads and writes the FM2 movie format used for
// recorded input traces: a key-value header followed by one
// pipe-delimited line per frame. Only the single-controller subset
// the engine needs is handled.
package movie

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/ddugovic/tasbot/internal/domain"
)

// Read parses an FM2 file into its input bytes.
func Read(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read movie: %w", err)
	}
	defer f.Close()

	var inputs []byte
	sc := bufio.NewScanner(f)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if !strings.HasPrefix(line, "|") {
			// Header or subtitle line.
			continue
		}
		fields := strings.Split(line, "|")
		// "|cmd|port0|port1|port2|" splits into at least 4 fields with
		// the controller columns at index 2.
		if len(fields) < 3 {
			return nil, fmt.Errorf("%s:%d: %w", path, lineno, domain.ErrMovieMalformed)
		}
		inputs = append(inputs, domain.ParseInput(fields[2]))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read movie: %w", err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrMovieEmpty)
	}
	return inputs, nil
}

// Write produces an FM2 file for the inputs. Annotations, when
// non-nil, must parallel inputs and are emitted as subtitle lines so
// a viewer shows which search phase committed each frame.
func Write(path, game string, inputs []byte, annotations []string) error {
	if annotations != nil && len(annotations) != len(inputs) {
		panic(fmt.Sprintf("movie: %d annotations for %d inputs", len(annotations), len(inputs)))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write movie: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "version 3")
	fmt.Fprintln(w, "emuVersion 22020")
	fmt.Fprintln(w, "rerecordCount 0")
	fmt.Fprintln(w, "palFlag 0")
	fmt.Fprintf(w, "romFilename %s\n", game)
	fmt.Fprintf(w, "guid %s\n", strings.ToUpper(uuid.NewString()))
	fmt.Fprintln(w, "fourscore 0")
	fmt.Fprintln(w, "microphone 0")
	fmt.Fprintln(w, "port0 1")
	fmt.Fprintln(w, "port1 0")
	fmt.Fprintln(w, "port2 0")
	fmt.Fprintln(w, "FDS 0")
	fmt.Fprintln(w, "NewPPU 0")

	if annotations != nil {
		last := ""
		for i, a := range annotations {
			if a != "" && a != last {
				fmt.Fprintf(w, "subtitle %d %s\n", i, a)
			}
			last = a
		}
	}

	for _, in := range inputs {
		fmt.Fprintf(w, "|0|%s|||\n", domain.FormatInput(in))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write movie: %w", err)
	}
	return nil
}
