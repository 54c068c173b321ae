package player

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/infra/observability"
	"github.com/ddugovic/tasbot/internal/wire"
)

// backtrack attempts to replace the movie segment between a recent
// checkpoint and now with a better-scoring one found by the
// improve-segment strategies. The current futures pool arbitrates:
// the original segment rides along annotated "original", and wins
// ties.
func (p *Player) backtrack(ctx context.Context) error {
	cp, ok := p.checkpoints.Latest(func(c domain.Checkpoint) bool {
		return p.movie.Len()-c.Movenum >= backtrackMinDistance && c.Movenum > p.watermark
	})
	if !ok {
		// No usable checkpoint yet; defer one input and try again.
		p.nextBacktrack = p.movie.Len() + 1
		observability.BacktracksAttempted.WithLabelValues("deferred").Inc()
		return nil
	}
	p.nextBacktrack = p.movie.Len() + TryBacktrackEvery
	oldLen := p.movie.Len()

	improveme := p.movie.Suffix(cp.Movenum)
	endState := p.console.Save()
	endIntegral, _ := p.engine.ScoreIntegral(cp.Snapshot, improveme)
	p.console.Load(endState)

	var reqs []*wire.Request
	for _, strategy := range wire.Strategies {
		for k := 0; k < improveCounts[strategy]; k++ {
			reqs = append(reqs, &wire.Request{
				ID: uuid.NewString(),
				ImproveSegment: &wire.ImproveSegmentRequest{
					StartState:  cp.Snapshot,
					Improveme:   improveme,
					EndState:    endState,
					EndIntegral: endIntegral,
					Strategy:    strategy,
					Seed:        fmt.Sprintf("%s-%d-%d", strategy, cp.Movenum, k),
					Iters:       improveIters,
					MaxBest:     improveMaxBest,
				},
			})
		}
	}
	resps, err := p.dispatcher.Do(ctx, reqs)
	if err != nil {
		return fmt.Errorf("backtrack at %d: %w", cp.Movenum, err)
	}

	seen := map[string]bool{string(improveme): true}
	trials := []candidate{{inputs: improveme, expl: "original"}}
	for i, resp := range resps {
		is := resp.ImproveSegment
		if is == nil {
			return fmt.Errorf("backtrack at %d: response %d: %w", cp.Movenum, i, domain.ErrShortResponse)
		}
		strategy := reqs[i].ImproveSegment.Strategy
		for _, inputs := range is.Inputs {
			if len(inputs) == 0 || seen[string(inputs)] {
				continue
			}
			seen[string(inputs)] = true
			trials = append(trials, candidate{
				inputs: inputs,
				expl:   fmt.Sprintf("bt-%s", strategy),
			})
		}
	}
	if len(trials) == 1 {
		p.log.Info().Int("movenum", cp.Movenum).Msg("improvement pass found nothing; backtrack abandoned")
		observability.BacktracksAttempted.WithLabelValues("empty").Inc()
		p.reporter.Backtrack(BacktrackReport{
			Iter: p.iter, Movenum: cp.Movenum, OldLen: oldLen, NewLen: oldLen,
		})
		return nil
	}

	// Rewind to the checkpoint and let a selector round pick among the
	// trials. Futures keep their heads: the trials are full segments,
	// not pool heads.
	p.movie.Rewind(cp.Movenum)
	p.checkpoints.TruncateAbove(cp.Movenum)
	p.lastCheckAt = cp.Movenum
	p.console.Load(cp.Snapshot)
	observability.MovieLength.Set(float64(p.movie.Len()))

	resps, err = p.scoreCandidates(ctx, cp.Snapshot, trials)
	if err != nil {
		return fmt.Errorf("backtrack at %d: %w", cp.Movenum, err)
	}
	best := 0
	bestScore := resps[0].ScoreNexts.Immediate + resps[0].ScoreNexts.Aggregate
	for i := 1; i < len(resps); i++ {
		if s := resps[i].ScoreNexts.Immediate + resps[i].ScoreNexts.Aggregate; s > bestScore {
			best, bestScore = i, s
		}
	}

	p.console.Load(cp.Snapshot)
	p.commit(trials[best].inputs, trials[best].expl)
	p.nextBacktrack = p.movie.Len() + TryBacktrackEvery

	improved := best != 0
	outcome := "kept"
	if improved {
		outcome = "improved"
	}
	observability.BacktracksAttempted.WithLabelValues(outcome).Inc()
	p.reporter.Backtrack(BacktrackReport{
		Iter:       p.iter,
		Movenum:    cp.Movenum,
		Candidates: len(trials) - 1,
		Improved:   improved,
		OldLen:     oldLen,
		NewLen:     p.movie.Len(),
	})
	p.log.Info().
		Int("movenum", cp.Movenum).
		Int("trials", len(trials)).
		Str("picked", trials[best].expl).
		Float64("score", bestScore).
		Msg("backtrack committed")

	if err := p.writeMovie(fmt.Sprintf("%s-playfun-backtrack-%d.fm2", p.cfg.Game, p.iter)); err != nil {
		return err
	}
	return nil
}
