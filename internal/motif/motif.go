// Package motif maintains the library of short input fragments
// harvested from the recorded human trace, with weighted sampling and
// outcome-driven reweighting.
package motif

import (
	"sort"

	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/infra/rng"
)

const (
	// alpha is the multiplicative reweighting factor: winners gain
	// 1/alpha, losers lose alpha.
	alpha = 0.8

	// shareCap bounds any single motif to 10% of the total weight
	// after an increase.
	shareCap = 0.1

	// shareFloor suppresses decreases that would push a motif's share
	// below 1e-5 of the total.
	shareFloor = 1e-5
)

// WeightPoint is one entry of a motif's chronological weight history.
type WeightPoint struct {
	Frame  int
	Weight float64
}

// Motif is a fixed-length input fragment with a positive weight.
type Motif struct {
	Inputs  []byte
	Weight  float64
	Picked  int
	History []WeightPoint
}

// Library is the motif collection, keyed by the fragment bytes.
// Iteration during sampling follows the sorted key order so a seeded
// random stream reproduces identical picks.
type Library struct {
	byKey map[string]*Motif
	order []*Motif // sorted by fragment bytes
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{byKey: make(map[string]*Motif)}
}

// Len returns the number of distinct motifs.
func (l *Library) Len() int { return len(l.order) }

// All returns the motifs in sorted key order. Shared slice; callers
// must not mutate it.
func (l *Library) All() []*Motif { return l.order }

// AddInputs segments inputs[skipPrefix:] into consecutive
// MotifLength-byte chunks and inserts each with weight 1. Duplicate
// fragments aggregate by weight sum. The ragged tail is dropped.
func (l *Library) AddInputs(inputs []byte, skipPrefix int) {
	for i := skipPrefix; i+domain.MotifLength <= len(inputs); i += domain.MotifLength {
		chunk := inputs[i : i+domain.MotifLength]
		if m, ok := l.byKey[string(chunk)]; ok {
			m.Weight++
			continue
		}
		m := &Motif{Inputs: append([]byte(nil), chunk...), Weight: 1}
		l.insert(m)
	}
}

// insert places m at its sorted position.
func (l *Library) insert(m *Motif) {
	k := string(m.Inputs)
	l.byKey[k] = m
	pos := sort.Search(len(l.order), func(i int) bool {
		return string(l.order[i].Inputs) >= k
	})
	l.order = append(l.order, nil)
	copy(l.order[pos+1:], l.order[pos:])
	l.order[pos] = m
}

// Lookup returns the motif with exactly these input bytes, or nil.
func (l *Library) Lookup(inputs []byte) *Motif {
	return l.byKey[string(inputs)]
}

// TotalWeight recomputes the sum of all motif weights.
func (l *Library) TotalWeight() float64 {
	total := 0.0
	for _, m := range l.order {
		total += m.Weight
	}
	return total
}

// Random returns a uniformly random motif, or nil if the library is
// empty.
func (l *Library) Random(r *rng.Rand) *Motif {
	if len(l.order) == 0 {
		return nil
	}
	return l.order[r.Intn(len(l.order))]
}

// RandomWeighted samples a motif proportionally to weight, or nil if
// the library is empty.
func (l *Library) RandomWeighted(r *rng.Rand) *Motif {
	total := l.TotalWeight()
	if total <= 0 {
		return nil
	}
	target := r.Double() * total
	for _, m := range l.order {
		target -= m.Weight
		if target < 0 {
			return m
		}
	}
	return l.order[len(l.order)-1]
}

// RandomWeightedNotIn samples proportionally to weight among motifs
// whose fragment is absent from seen. Returns nil when every motif is
// already in seen.
func (l *Library) RandomWeightedNotIn(seen map[string]bool, r *rng.Rand) *Motif {
	total := 0.0
	for _, m := range l.order {
		if !seen[string(m.Inputs)] {
			total += m.Weight
		}
	}
	if total <= 0 {
		return nil
	}
	target := r.Double() * total
	var last *Motif
	for _, m := range l.order {
		if seen[string(m.Inputs)] {
			continue
		}
		last = m
		target -= m.Weight
		if target < 0 {
			return m
		}
	}
	return last
}

// Pick increments the picked counter.
func (l *Library) Pick(m *Motif) { m.Picked++ }

// Checkpoint records (frame, weight) in every motif's history.
func (l *Library) Checkpoint(frame int) {
	for _, m := range l.order {
		m.History = append(m.History, WeightPoint{Frame: frame, Weight: m.Weight})
	}
}

// Reweight applies the outcome of committing m. A rise multiplies the
// weight by 1/alpha, capped so the motif's post-update share of the
// total stays at or below shareCap; a fall multiplies by alpha,
// suppressed entirely if the share would drop below shareFloor.
func (l *Library) Reweight(m *Motif, rose bool) {
	total := l.TotalWeight()
	rest := total - m.Weight
	if rose {
		next := m.Weight / alpha
		// Cap against the post-update total: next ≤ shareCap·(rest+next).
		limit := shareCap * rest / (1 - shareCap)
		if next > limit {
			next = limit
		}
		if next > m.Weight {
			m.Weight = next
		}
		return
	}
	next := m.Weight * alpha
	if rest+next > 0 && next/(rest+next) < shareFloor {
		return
	}
	m.Weight = next
}
