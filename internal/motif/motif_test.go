package motif

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/infra/rng"
)

// fragment returns a length-10 fragment filled with b.
func fragment(b byte) []byte {
	return bytes.Repeat([]byte{b}, domain.MotifLength)
}

func TestAddInputsChunking(t *testing.T) {
	inputs := make([]byte, 0, 35)
	inputs = append(inputs, fragment(1)...)
	inputs = append(inputs, fragment(2)...)
	inputs = append(inputs, fragment(1)...)
	inputs = append(inputs, 9, 9, 9, 9, 9) // ragged tail, dropped

	l := NewLibrary()
	l.AddInputs(inputs, 0)

	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
	if m := l.Lookup(fragment(1)); m == nil || m.Weight != 2 {
		t.Errorf("duplicate fragment weight = %v, want 2", m)
	}
	if m := l.Lookup(fragment(2)); m == nil || m.Weight != 1 {
		t.Errorf("single fragment weight = %v, want 1", m)
	}
	if got := l.TotalWeight(); got != 3 {
		t.Errorf("TotalWeight = %v, want 3", got)
	}
}

func TestAddInputsSkipPrefix(t *testing.T) {
	inputs := append(fragment(1), fragment(2)...)
	l := NewLibrary()
	l.AddInputs(inputs, domain.MotifLength)
	if l.Len() != 1 || l.Lookup(fragment(2)) == nil {
		t.Errorf("skip prefix kept wrong motifs: len=%d", l.Len())
	}
}

func TestRandomWeightedNotIn(t *testing.T) {
	l := NewLibrary()
	l.AddInputs(append(fragment(1), fragment(2)...), 0)
	r := rng.NewSeeded("sample")

	seen := map[string]bool{string(fragment(1)): true}
	for i := 0; i < 10; i++ {
		m := l.RandomWeightedNotIn(seen, r)
		if m == nil {
			t.Fatal("sampler returned nil with an eligible motif present")
		}
		if !bytes.Equal(m.Inputs, fragment(2)) {
			t.Fatalf("sampled excluded motif %v", m.Inputs)
		}
	}

	seen[string(fragment(2))] = true
	if m := l.RandomWeightedNotIn(seen, r); m != nil {
		t.Errorf("sampler returned %v with every motif excluded", m.Inputs)
	}
}

func TestPickAndCheckpoint(t *testing.T) {
	l := NewLibrary()
	l.AddInputs(fragment(1), 0)
	m := l.Lookup(fragment(1))

	l.Pick(m)
	l.Pick(m)
	if m.Picked != 2 {
		t.Errorf("Picked = %d, want 2", m.Picked)
	}

	l.Checkpoint(100)
	l.Checkpoint(200)
	if len(m.History) != 2 || m.History[0].Frame != 100 || m.History[1].Frame != 200 {
		t.Errorf("History = %v, want frames [100 200]", m.History)
	}
}

func TestReweightShareCap(t *testing.T) {
	l := NewLibrary()
	for b := byte(1); b <= 20; b++ {
		l.AddInputs(fragment(b), 0)
	}
	m := l.Lookup(fragment(1))

	// Repeated wins must never push the share past the cap.
	for i := 0; i < 50; i++ {
		before := m.Weight
		l.Reweight(m, true)
		if m.Weight < before {
			t.Fatalf("winning reweight reduced weight: %v -> %v", before, m.Weight)
		}
		if m.Weight > before {
			if share := m.Weight / l.TotalWeight(); share > shareCap+1e-12 {
				t.Fatalf("share %v exceeds cap after increase", share)
			}
		}
	}
}

func TestReweightFloorSuppressed(t *testing.T) {
	l := NewLibrary()
	l.AddInputs(fragment(1), 0)
	l.AddInputs(fragment(2), 0)
	tiny := l.Lookup(fragment(1))
	big := l.Lookup(fragment(2))
	big.Weight = 1e6
	tiny.Weight = 1e6 * 1e-6 // share 1e-6, already below the floor

	before := tiny.Weight
	l.Reweight(tiny, false)
	if tiny.Weight != before {
		t.Errorf("losing reweight below floor changed weight: %v -> %v", before, tiny.Weight)
	}
}

func TestReweightLoss(t *testing.T) {
	l := NewLibrary()
	for b := byte(1); b <= 4; b++ {
		l.AddInputs(fragment(b), 0)
	}
	m := l.Lookup(fragment(1))
	l.Reweight(m, false)
	if m.Weight != alpha {
		t.Errorf("losing reweight = %v, want %v", m.Weight, alpha)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	l := NewLibrary()
	l.AddInputs(append(fragment(3), fragment(7)...), 0)
	l.Lookup(fragment(3)).Weight = 2.5
	l.Lookup(fragment(3)).Picked = 4

	path := filepath.Join(t.TempDir(), "test.motifs")
	if err := l.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded %d motifs, want 2", loaded.Len())
	}
	m := loaded.Lookup(fragment(3))
	if m == nil || m.Weight != 2.5 || m.Picked != 4 {
		t.Errorf("loaded motif = %+v, want weight 2.5 picked 4", m)
	}
}
