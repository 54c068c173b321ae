package search

import (
	"fmt"

	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/emulator"
	"github.com/ddugovic/tasbot/internal/infra/rng"
	"github.com/ddugovic/tasbot/internal/wire"
)

// spanExponent biases improvement spans short.
const spanExponent = 2

// ImproveSegment hill-climbs a replacement for the segment in the
// request. Each iteration mutates the current candidate with the
// requested strategy and keeps it only if IsImprovement accepts it;
// a successful step feeds the next. The climb stops at the first
// failed iteration or after Iters iterations.
func (e *Engine) ImproveSegment(req *wire.ImproveSegmentRequest) *wire.ImproveSegmentResponse {
	rnd := rng.NewSeeded(req.Seed)

	e.console.Load(emulator.Snapshot(req.EndState))
	endMem := e.console.ReadRAM()

	cand := append([]byte(nil), req.Improveme...)
	resp := &wire.ImproveSegmentResponse{}

	for i := 0; i < req.Iters; i++ {
		resp.ItersTried++
		next, score, ok := e.improveOnce(req.Strategy, cand, rnd,
			emulator.Snapshot(req.StartState), endMem, req.EndIntegral)
		if !ok {
			break
		}
		resp.ItersBetter++
		cand = next
		e.recordBest(resp, next, score, req.MaxBest)
	}
	return resp
}

// recordBest inserts a candidate into the response, best score first,
// keeping at most maxBest entries.
func (e *Engine) recordBest(resp *wire.ImproveSegmentResponse, inputs []byte, score float64, maxBest int) {
	pos := 0
	for pos < len(resp.Scores) && resp.Scores[pos] >= score {
		pos++
	}
	resp.Inputs = append(resp.Inputs, nil)
	copy(resp.Inputs[pos+1:], resp.Inputs[pos:])
	resp.Inputs[pos] = append([]byte(nil), inputs...)
	resp.Scores = append(resp.Scores, 0)
	copy(resp.Scores[pos+1:], resp.Scores[pos:])
	resp.Scores[pos] = score
	if maxBest > 0 && len(resp.Scores) > maxBest {
		resp.Inputs = resp.Inputs[:maxBest]
		resp.Scores = resp.Scores[:maxBest]
	}
}

// IsImprovement tests a candidate segment against the committed one.
// It executes cand from startState, requires the resulting memory to
// rank strictly above the committed end memory, and scores the gain.
// The integral term is deliberately not normalized by length, so
// shorter candidates pay for the steps they skip.
func (e *Engine) IsImprovement(startState emulator.Snapshot, cand []byte, endMem []byte, endIntegral float64) (float64, bool) {
	nMinusS, newMem := e.ScoreIntegral(startState, cand)
	nMinusE := e.objectives.Evaluate(endMem, newMem)
	if nMinusE <= 0 {
		return 0, false
	}
	return (nMinusS - endIntegral) + nMinusE, true
}

// improveOnce applies one strategy iteration to cand. ok reports
// whether the returned candidate is an accepted improvement.
func (e *Engine) improveOnce(strategy wire.Strategy, cand []byte, rnd *rng.Rand,
	startState emulator.Snapshot, endMem []byte, endIntegral float64) ([]byte, float64, bool) {

	switch strategy {
	case wire.StrategyRandom:
		next := e.randomSegment(len(cand), rnd)
		if len(next) == 0 {
			return nil, 0, false
		}
		score, ok := e.IsImprovement(startState, next, endMem, endIntegral)
		return next, score, ok

	case wire.StrategyDualize:
		start, length := rnd.Span(len(cand), spanExponent)
		dualized := append([]byte(nil), cand...)
		domain.Dualize(dualized, start, length)
		score1, ok1 := e.IsImprovement(startState, dualized, endMem, endIntegral)

		reversed := append([]byte(nil), dualized...)
		domain.Reverse(reversed, start, length)
		score2, ok2 := e.IsImprovement(startState, reversed, endMem, endIntegral)

		if rnd.Coin(2) {
			return reversed, score2, ok2
		}
		return dualized, score1, ok1

	case wire.StrategyAblate:
		start, length := rnd.Span(len(cand), spanExponent)
		mask := rnd.Byte()
		for mask == 0xFF {
			mask = rnd.Byte()
		}
		prob := rnd.Double()
		next := append([]byte(nil), cand...)
		for i := start; i < start+length; i++ {
			if rnd.Double() < prob {
				next[i] &= mask
			}
		}
		score, ok := e.IsImprovement(startState, next, endMem, endIntegral)
		return next, score, ok

	case wire.StrategyChop:
		start, length := rnd.Span(len(cand), spanExponent)
		if length >= len(cand) {
			return nil, 0, false
		}
		next := make([]byte, 0, len(cand)-length)
		next = append(next, cand[:start]...)
		next = append(next, cand[start+length:]...)
		score, ok := e.IsImprovement(startState, next, endMem, endIntegral)
		return next, score, ok

	case wire.StrategyShuffle:
		start, length := rnd.Span(len(cand), spanExponent)
		next := append([]byte(nil), cand...)
		rnd.Shuffle(length, func(i, j int) {
			next[start+i], next[start+j] = next[start+j], next[start+i]
		})
		score, ok := e.IsImprovement(startState, next, endMem, endIntegral)
		return next, score, ok
	}
	panic(fmt.Sprintf("search: unknown strategy %q", strategy))
}

// randomSegment samples whole weighted motifs until the target length
// is covered, truncating the final motif.
func (e *Engine) randomSegment(length int, rnd *rng.Rand) []byte {
	out := make([]byte, 0, length)
	for len(out) < length {
		m := e.motifs.RandomWeighted(rnd)
		if m == nil {
			return nil
		}
		out = append(out, m.Inputs...)
	}
	return out[:length]
}
