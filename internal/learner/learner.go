// Package learner derives the progress model from a recorded human
// trace: it replays the movie, enumerates candidate objectives over
// many views of the memory trajectory, weights them by how much they
// rise, and harvests the motif library from the inputs themselves.
package learner

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/emulator"
	"github.com/ddugovic/tasbot/internal/infra/rng"
	"github.com/ddugovic/tasbot/internal/motif"
	"github.com/ddugovic/tasbot/internal/objective"
)

// Learner owns the replay console and the enumeration schedule.
type Learner struct {
	console emulator.Console
	log     zerolog.Logger
}

// New creates a learner around a console.
func New(console emulator.Console, log zerolog.Logger) *Learner {
	return &Learner{console: console, log: log}
}

// Learn replays the recorded inputs, capturing the per-frame memory
// trajectory, and derives the weighted objective set and motif
// library from it.
func (l *Learner) Learn(inputs []byte) (*objective.Set, *motif.Library, error) {
	if len(inputs) == 0 {
		return nil, nil, domain.ErrMovieEmpty
	}

	trajectory := make([][]byte, 0, len(inputs)+1)
	trajectory = append(trajectory, l.console.ReadRAM())
	for _, in := range inputs {
		l.console.Step(in)
		trajectory = append(trajectory, l.console.ReadRAM())
	}
	l.log.Info().Int("frames", len(trajectory)).Msg("trajectory captured")

	objectives := l.enumerate(trajectory)
	objectives.WeightByExamples(trajectory)

	active := 0
	for _, o := range objectives.All() {
		if o.Weight > 0 {
			active++
		}
	}
	l.log.Info().
		Int("candidates", objectives.Len()).
		Int("active", active).
		Msg("objectives weighted")

	motifs := motif.NewLibrary()
	skip := 0
	for skip < len(inputs) && inputs[skip] == 0 {
		skip++
	}
	motifs.AddInputs(inputs, skip)
	l.log.Info().Int("motifs", motifs.Len()).Msg("motif library built")

	return objectives, motifs, nil
}

// enumerate runs the candidate-generation schedule: the whole
// trajectory many times, progressively finer slices, and sparse
// strided samples.
func (l *Learner) enumerate(trajectory [][]byte) *objective.Set {
	n := len(trajectory)
	objectives := objective.NewSet()

	add := func(frames []int, seed string, count int) {
		if len(frames) < 2 {
			return
		}
		r := rng.NewSeeded(seed)
		for i := 0; i < count; i++ {
			if t := objective.EnumerateFull(trajectory, frames, r); t != nil {
				objectives.Add(t, 1)
			}
		}
	}

	whole := spanFrames(0, n)
	for i := 0; i < 50; i++ {
		add(whole, fmt.Sprintf("full-%d", i), 1)
	}

	for k := 2; k <= 10; k++ {
		for s := 0; s < k; s++ {
			add(spanFrames(s*n/k, (s+1)*n/k), fmt.Sprintf("slice-%d-%d", k, s), 3)
		}
	}
	for s := 0; s < 50; s++ {
		add(spanFrames(s*n/50, (s+1)*n/50), fmt.Sprintf("fifty-%d", s), 2)
	}
	for s := 0; s < 100; s++ {
		add(spanFrames(s*n/100, (s+1)*n/100), fmt.Sprintf("hundred-%d", s), 1)
	}

	l.sparse(objectives, trajectory, 100, 10, 20)
	l.sparse(objectives, trajectory, 250, 10, 10)
	l.sparse(objectives, trajectory, 1000, 10, 5)

	return objectives
}

// sparse samples every stride-th frame from several offsets and
// enumerates tuples over each strided view until the budget is spent.
func (l *Learner) sparse(objectives *objective.Set, trajectory [][]byte, stride, offsets, tuples int) {
	n := len(trajectory)
	if n <= stride {
		return
	}
	per := (tuples + offsets - 1) / offsets
	emitted := 0
	for o := 0; o < offsets && emitted < tuples; o++ {
		r := rng.NewSeeded(fmt.Sprintf("sparse-%d-%d", stride, o))
		offset := r.Intn(stride)
		var frames []int
		for f := offset; f < n; f += stride {
			frames = append(frames, f)
		}
		if len(frames) < 2 {
			continue
		}
		for i := 0; i < per && emitted < tuples; i++ {
			if t := objective.EnumerateFull(trajectory, frames, r); t != nil {
				objectives.Add(t, 1)
			}
			emitted++
		}
	}
}

func spanFrames(lo, hi int) []int {
	frames := make([]int, 0, hi-lo)
	for f := lo; f < hi; f++ {
		frames = append(frames, f)
	}
	return frames
}
