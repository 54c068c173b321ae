package objective

import (
	"bytes"
	"sort"

	"github.com/ddugovic/tasbot/internal/infra/rng"
)

// Set is a weighted collection of objectives with stable identity
// keyed by the index tuple. Iteration order is insertion order, so
// evaluation results are reproducible.
type Set struct {
	byKey map[string]*Objective
	order []*Objective
}

// NewSet returns an empty collection.
func NewSet() *Set {
	return &Set{byKey: make(map[string]*Objective)}
}

// Add inserts the tuple with the given weight. A tuple already present
// keeps its existing entry; duplicates are dropped, not re-weighted.
// Reports whether the tuple was new.
func (s *Set) Add(indices []int, weight float64) bool {
	o := NewObjective(indices, weight)
	k := o.key()
	if _, ok := s.byKey[k]; ok {
		return false
	}
	s.byKey[k] = o
	s.order = append(s.order, o)
	return true
}

// Len returns the number of objectives.
func (s *Set) Len() int { return len(s.order) }

// All returns the objectives in insertion order. Shared slice; callers
// must not mutate it.
func (s *Set) All() []*Objective { return s.order }

// ActiveWeight returns the sum of all objective weights.
func (s *Set) ActiveWeight() float64 {
	total := 0.0
	for _, o := range s.order {
		total += o.Weight
	}
	return total
}

// Observe records mem in every objective's history.
func (s *Set) Observe(mem []byte, r *rng.Rand) {
	for _, o := range s.order {
		o.Observe(mem, r)
	}
}

// Evaluate returns the weighted sum of radix-2 discounted deltas from
// a to b. It is antisymmetric: Evaluate(a,b) == -Evaluate(b,a), and
// zero for identical memories.
func (s *Set) Evaluate(a, b []byte) float64 {
	v := 0.0
	for _, o := range s.order {
		if o.Weight == 0 {
			continue
		}
		v += o.Weight * o.Rank(a, b)
	}
	return v
}

// WeightedLess sums the weights of objectives for which a ranks
// strictly below b. Ties do not count.
func (s *Set) WeightedLess(a, b []byte) float64 {
	v := 0.0
	for _, o := range s.order {
		if o.Weight == 0 {
			continue
		}
		if o.Less(a, b) {
			v += o.Weight
		}
	}
	return v
}

// NormalizedValue maps mem into [0,1]: the average over objectives of
// the rank of mem's projection within the observation history.
func (s *Set) NormalizedValue(mem []byte) float64 {
	sum, n := 0.0, 0
	for _, o := range s.order {
		if f, ok := o.NormalizedFrac(mem); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// WeightByExamples re-weights every objective against the trajectory:
// score = frac(last) − frac(first) over the unique sorted projection
// values seen along the trajectory. Objectives that net-decline get
// weight zero; risers get their score as weight.
func (s *Set) WeightByExamples(trajectory [][]byte) {
	if len(trajectory) == 0 {
		return
	}
	for _, o := range s.order {
		projections := make([][]byte, 0, len(trajectory))
		for _, mem := range trajectory {
			projections = append(projections, o.Project(mem))
		}
		values := uniqueSorted(projections)

		score := fracOf(values, projections[len(projections)-1]) - fracOf(values, projections[0])
		if score <= 0 {
			o.Weight = 0
		} else {
			o.Weight = score
		}
	}
}

// fracOf locates p within the unique sorted values and returns its
// position as a fraction of the value range.
func fracOf(values [][]byte, p []byte) float64 {
	if len(values) < 2 {
		return 0
	}
	i := sort.Search(len(values), func(j int) bool {
		return bytes.Compare(values[j], p) >= 0
	})
	return float64(i) / float64(len(values)-1)
}

func uniqueSorted(projections [][]byte) [][]byte {
	sorted := make([][]byte, len(projections))
	copy(sorted, projections)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i], sorted[j]) < 0
	})
	out := sorted[:0]
	for i, p := range sorted {
		if i == 0 || !bytes.Equal(p, out[len(out)-1]) {
			out = append(out, p)
		}
	}
	return out
}
