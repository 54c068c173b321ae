package motif

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ddugovic/tasbot/internal/domain"
)

// Save writes the library as line-oriented text, one motif per line:
// "<weight> <picked> <fragment-hex>".
func (l *Library) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save motifs: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, m := range l.order {
		fmt.Fprintf(w, "%s %d %s\n",
			strconv.FormatFloat(m.Weight, 'g', -1, 64),
			m.Picked,
			hex.EncodeToString(m.Inputs))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("save motifs: %w", err)
	}
	return nil
}

// Load reads a library previously written by Save.
func Load(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load motifs: %w", err)
	}
	defer f.Close()

	l := NewLibrary()
	sc := bufio.NewScanner(f)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%s:%d: %w", path, lineno, domain.ErrMotifsMalformed)
		}
		weight, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || weight <= 0 {
			return nil, fmt.Errorf("%s:%d: bad weight %q: %w", path, lineno, fields[0], domain.ErrMotifsMalformed)
		}
		picked, err := strconv.Atoi(fields[1])
		if err != nil || picked < 0 {
			return nil, fmt.Errorf("%s:%d: bad pick count %q: %w", path, lineno, fields[1], domain.ErrMotifsMalformed)
		}
		inputs, err := hex.DecodeString(fields[2])
		if err != nil || len(inputs) != domain.MotifLength {
			return nil, fmt.Errorf("%s:%d: bad fragment %q: %w", path, lineno, fields[2], domain.ErrMotifsMalformed)
		}
		m := &Motif{Inputs: inputs, Weight: weight, Picked: picked}
		l.insert(m)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("load motifs: %w", err)
	}
	return l, nil
}
