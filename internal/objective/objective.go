// Package objective implements the RAM-based progress model: ordered
// index tuples interpreted as lexicographic preorders over console
// memory, collected into a weighted set that scores state transitions.
package objective

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/infra/rng"
)

const (
	// maxHistory bounds the per-objective observation history used for
	// normalization.
	maxHistory = 64

	// maxTupleLen bounds enumerated tuple length. Longer tuples add
	// noise without discriminating power.
	maxTupleLen = 10
)

// Objective is a non-empty ordered tuple of distinct RAM indices. A
// memory m ranks below m' iff the tuple projection of m is
// lexicographically less than that of m'.
type Objective struct {
	Indices []int
	Weight  float64

	// history holds up to maxHistory previously observed projections,
	// sorted ascending. Used only to normalize instantaneous values.
	history [][]byte
}

// NewObjective validates the tuple and returns an objective with the
// given weight. Panics on an empty tuple or out-of-range index.
func NewObjective(indices []int, weight float64) *Objective {
	if len(indices) == 0 {
		panic("objective: empty index tuple")
	}
	for _, idx := range indices {
		if idx < 0 || idx >= domain.RAMSize {
			panic(fmt.Sprintf("objective: index %d out of range [0,%d)", idx, domain.RAMSize))
		}
	}
	return &Objective{Indices: indices, Weight: weight}
}

// Project extracts the tuple projection of mem.
func (o *Objective) Project(mem []byte) []byte {
	out := make([]byte, len(o.Indices))
	for i, idx := range o.Indices {
		out[i] = mem[idx]
	}
	return out
}

// Less reports whether the projection of a is strictly
// lexicographically less than that of b.
func (o *Objective) Less(a, b []byte) bool {
	for _, idx := range o.Indices {
		if a[idx] != b[idx] {
			return a[idx] < b[idx]
		}
	}
	return false
}

// Rank returns the signed radix-2 discounted lexicographic delta from
// a to b: starting from the last index, v ← (v + b[idx] − a[idx]) / 2.
// Changes in higher-order positions dominate without reducing to a
// pure ordinal comparison.
func (o *Objective) Rank(a, b []byte) float64 {
	v := 0.0
	for i := len(o.Indices) - 1; i >= 0; i-- {
		idx := o.Indices[i]
		v = (v + float64(b[idx]) - float64(a[idx])) / 2
	}
	return v
}

// Observe records the projection of mem in the history. Below capacity
// the projection is appended; at capacity it overwrites a uniformly
// random slot. The history is re-sorted afterwards.
func (o *Objective) Observe(mem []byte, r *rng.Rand) {
	p := o.Project(mem)
	if len(o.history) < maxHistory {
		o.history = append(o.history, p)
	} else {
		o.history[r.Intn(len(o.history))] = p
	}
	sort.Slice(o.history, func(i, j int) bool {
		return bytes.Compare(o.history[i], o.history[j]) < 0
	})
}

// HistoryLen returns the number of recorded observations.
func (o *Objective) HistoryLen() int { return len(o.history) }

// historySorted reports whether the history is sorted ascending.
// Exposed for invariant checks in tests via the package test file.
func (o *Objective) historySorted() bool {
	for i := 1; i < len(o.history); i++ {
		if bytes.Compare(o.history[i-1], o.history[i]) > 0 {
			return false
		}
	}
	return true
}

// NormalizedFrac returns the lower-bound insertion rank of mem's
// projection against the sorted history, divided by the history
// length. ok is false when nothing has been observed yet.
func (o *Objective) NormalizedFrac(mem []byte) (float64, bool) {
	if len(o.history) == 0 {
		return 0, false
	}
	p := o.Project(mem)
	rank := sort.Search(len(o.history), func(i int) bool {
		return bytes.Compare(o.history[i], p) >= 0
	})
	return float64(rank) / float64(len(o.history)), true
}

// key returns the identity of the tuple, used for deduplication.
func (o *Objective) key() string {
	b := make([]byte, 2*len(o.Indices))
	for i, idx := range o.Indices {
		b[2*i] = byte(idx >> 8)
		b[2*i+1] = byte(idx)
	}
	return string(b)
}

// ─── Enumeration ────────────────────────────────────────────────────────────

// EnumerateFull proposes one ordered index tuple whose lexicographic
// value never decreases across the referenced frames of mems. Indices
// are accreted greedily: a candidate must not order any still-tied
// consecutive pair backwards, and must break at least one tie, so the
// tuple keeps gaining discriminating power. Returns nil when no such
// tuple exists.
func EnumerateFull(mems [][]byte, frames []int, r *rng.Rand) []int {
	type pair struct{ a, b int }
	undecided := make([]pair, 0, len(frames))
	for i := 0; i+1 < len(frames); i++ {
		undecided = append(undecided, pair{frames[i], frames[i+1]})
	}

	var used [domain.RAMSize]bool
	var prefix []int
	for len(undecided) > 0 && len(prefix) < maxTupleLen {
		var strict []int
		for c := 0; c < domain.RAMSize; c++ {
			if used[c] {
				continue
			}
			ok, any := true, false
			for _, p := range undecided {
				av, bv := mems[p.a][c], mems[p.b][c]
				if av > bv {
					ok = false
					break
				}
				if av < bv {
					any = true
				}
			}
			if ok && any {
				strict = append(strict, c)
			}
		}
		if len(strict) == 0 {
			break
		}
		c := strict[r.Intn(len(strict))]
		prefix = append(prefix, c)
		used[c] = true

		kept := undecided[:0]
		for _, p := range undecided {
			if mems[p.a][c] == mems[p.b][c] {
				kept = append(kept, p)
			}
		}
		undecided = kept
	}
	if len(prefix) == 0 {
		return nil
	}
	return prefix
}
