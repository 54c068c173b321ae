// Package search implements the scoring engine behind both request
// kinds of the helper protocol: scoring candidate nexts against the
// futures pool, and hill-climbing improvements to committed movie
// segments. The master uses it directly when no helpers are
// configured; helpers use it to service requests.
package search

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/ddugovic/tasbot/internal/emulator"
	"github.com/ddugovic/tasbot/internal/motif"
	"github.com/ddugovic/tasbot/internal/objective"
	"github.com/ddugovic/tasbot/internal/wire"
)

// Engine owns a console and the learned model, and computes scores on
// demand. It is single-threaded: one console, one computation at a
// time.
type Engine struct {
	console    emulator.Console
	objectives *objective.Set
	motifs     *motif.Library
	log        zerolog.Logger
}

// NewEngine wires an engine around the given console and model.
func NewEngine(console emulator.Console, objectives *objective.Set, motifs *motif.Library, log zerolog.Logger) *Engine {
	return &Engine{
		console:    console,
		objectives: objectives,
		motifs:     motifs,
		log:        log,
	}
}

// Objectives returns the engine's objective set.
func (e *Engine) Objectives() *objective.Set { return e.objectives }

// Motifs returns the engine's motif library.
func (e *Engine) Motifs() *motif.Library { return e.motifs }

// Console returns the engine's console.
func (e *Engine) Console() emulator.Console { return e.console }

// ScoreIntegral executes inputs from state, accumulating the sum of
// per-step evaluate deltas. It returns the integral and the final
// memory. The sum is not normalized by length.
func (e *Engine) ScoreIntegral(state emulator.Snapshot, inputs []byte) (float64, []byte) {
	e.console.Load(state)
	prev := e.console.ReadRAM()
	integral := 0.0
	for _, in := range inputs {
		e.console.CachedStep(in)
		mem := e.console.ReadRAM()
		integral += e.objectives.Evaluate(prev, mem)
		prev = mem
	}
	return integral, prev
}

// ScoreNexts scores one candidate next against every future in the
// request, per the round scoring rules: immediate delta for the next
// itself, then per-future integral, positive and negative components,
// aggregated by repeated halving over the ascending integral scores
// so the higher half of futures dominates.
func (e *Engine) ScoreNexts(req *wire.ScoreNextsRequest) *wire.ScoreNextsResponse {
	e.console.Load(emulator.Snapshot(req.CurrentState))
	m0 := e.console.ReadRAM()
	for _, in := range req.Next {
		e.console.CachedStep(in)
	}
	m1 := e.console.ReadRAM()
	s1 := e.console.Save()

	resp := &wire.ScoreNextsResponse{
		Immediate:       e.objectives.Evaluate(m0, m1),
		Normalized:      e.objectives.NormalizedValue(m1),
		PerFutureScalar: make([]float64, len(req.Futures)),
	}

	integralScores := make([]float64, len(req.Futures))
	for i, f := range req.Futures {
		e.console.Load(s1)
		prev := m1
		integral := 0.0
		for _, in := range f {
			e.console.CachedStep(in)
			mem := e.console.ReadRAM()
			integral += e.objectives.Evaluate(prev, mem)
			prev = mem
		}
		integralScore := 0.0
		if len(f) > 0 {
			integralScore = integral / float64(len(f))
		}
		end := prev
		positive := e.objectives.WeightedLess(m1, end)
		negative := -e.objectives.WeightedLess(end, m1)

		integralScores[i] = integralScore
		resp.PerFutureScalar[i] = integralScore + positive + negative
	}

	sort.Float64s(integralScores)
	agg := 0.0
	for _, s := range integralScores {
		agg = agg/2 + s/2
	}
	resp.Aggregate = agg

	if len(resp.PerFutureScalar) > 0 {
		best, worst := resp.PerFutureScalar[0], resp.PerFutureScalar[0]
		for _, s := range resp.PerFutureScalar[1:] {
			if s > best {
				best = s
			}
			if s < worst {
				worst = s
			}
		}
		resp.BestFuture, resp.WorstFuture = best, worst
	}
	return resp
}
