// Package player implements the lookahead search that extends a
// partially-played movie: a pool of speculative futures proposes
// candidate nexts, a dispatcher scores them against the futures, the
// best next is committed, and the pool is culled, mutated, and
// refilled. Periodically a recent segment is handed to local-search
// strategies and replaced when they find something better.
package player

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ddugovic/tasbot/internal/dispatch"
	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/emulator"
	"github.com/ddugovic/tasbot/internal/infra/observability"
	"github.com/ddugovic/tasbot/internal/infra/rng"
	"github.com/ddugovic/tasbot/internal/motif"
	"github.com/ddugovic/tasbot/internal/movie"
	"github.com/ddugovic/tasbot/internal/objective"
	"github.com/ddugovic/tasbot/internal/search"
	"github.com/ddugovic/tasbot/internal/wire"
)

// Timing parameters.
const (
	// CheckpointEvery inserts a backtrack target every this many
	// committed inputs past the watermark.
	CheckpointEvery = 100

	// TryBacktrackEvery schedules a backtrack attempt every this many
	// committed inputs.
	TryBacktrackEvery = 180

	// backtrackMinDistance is the minimum segment length a backtrack
	// will try to improve.
	backtrackMinDistance = 300

	// movieWriteEvery writes a periodic movie snapshot every this many
	// rounds.
	movieWriteEvery = 5

	// improveIters is the hill-climb budget per improve-segment
	// request.
	improveIters = 200

	// improveMaxBest bounds candidates returned per request.
	improveMaxBest = 5
)

// improveCounts is the per-strategy request count of one backtrack
// batch.
var improveCounts = map[wire.Strategy]int{
	wire.StrategyDualize: 1,
	wire.StrategyAblate:  10,
	wire.StrategyChop:    10,
	wire.StrategyShuffle: 10,
	wire.StrategyRandom:  10,
}

// Config carries the player's external parameters.
type Config struct {
	Game        string
	OutDir      string
	Fastforward int

	// GoalLength stops the run once the movie reaches this many
	// inputs. Zero plays until the context is cancelled.
	GoalLength int
}

// RoundReport is the per-round diagnostic record: the scored
// distribution over candidate nexts plus the committed outcome.
type RoundReport struct {
	Iter       int
	StartFrame int
	Immediates []float64
	Positives  []float64
	Negatives  []float64
	Norms      []float64
	Chosen     int
	Score      float64
	Expl       string
	MovieLen   int
	Normalized float64
}

// BacktrackReport records one backtrack attempt's outcome.
type BacktrackReport struct {
	Iter       int
	Movenum    int
	Candidates int
	Improved   bool
	OldLen     int
	NewLen     int
}

// Reporter receives diagnostic records. Implementations must not
// block the search loop.
type Reporter interface {
	Round(RoundReport)
	Backtrack(BacktrackReport)
}

// nopReporter discards every record.
type nopReporter struct{}

func (nopReporter) Round(RoundReport)         {}
func (nopReporter) Backtrack(BacktrackReport) {}

// Player is the search master. It owns the console, the learned
// model, the movie, the futures pool, and the checkpoints; helpers
// hold nothing but their response cache.
type Player struct {
	cfg        Config
	console    emulator.Console
	objectives *objective.Set
	motifs     *motif.Library
	dispatcher *dispatch.Dispatcher
	engine     *search.Engine
	rnd        *rng.Rand
	log        zerolog.Logger
	reporter   Reporter

	movie       *domain.Movie
	checkpoints domain.Checkpoints
	watermark   int

	futures       []*Future
	iter          int
	nextBacktrack int
	lastCheckAt   int
}

// New constructs a player and replays the warmup prefix of the
// recorded movie: its leading zero inputs followed by the fastforward
// prefix, committed without scoring. The watermark is set past the
// warmup; backtracking never rewinds below it.
func New(cfg Config, console emulator.Console, objectives *objective.Set, motifs *motif.Library,
	dispatcher *dispatch.Dispatcher, rnd *rng.Rand, log zerolog.Logger, reporter Reporter, recorded []byte) *Player {

	if reporter == nil {
		reporter = nopReporter{}
	}
	p := &Player{
		cfg:        cfg,
		console:    console,
		objectives: objectives,
		motifs:     motifs,
		dispatcher: dispatcher,
		engine:     search.NewEngine(console, objectives, motifs, log),
		rnd:        rnd,
		log:        log,
		reporter:   reporter,
		movie:      domain.NewMovie(),
	}

	zeros := 0
	for zeros < len(recorded) && recorded[zeros] == 0 {
		zeros++
	}
	prefix := zeros + cfg.Fastforward
	if prefix > len(recorded) {
		prefix = len(recorded)
	}
	for i := 0; i < prefix; i++ {
		p.console.CachedStep(recorded[i])
		p.movie.Commit(recorded[i], "warmup")
	}
	p.watermark = p.movie.Len()
	p.lastCheckAt = p.watermark
	p.nextBacktrack = p.watermark + TryBacktrackEvery
	p.log.Info().
		Int("watermark", p.watermark).
		Int("zeros", zeros).
		Int("fastforward", cfg.Fastforward).
		Msg("warmup committed")
	return p
}

// Movie returns the movie under construction.
func (p *Player) Movie() *domain.Movie { return p.movie }

// Watermark returns the first mutable movie index.
func (p *Player) Watermark() int { return p.watermark }

// Checkpoints exposes the backtrack targets.
func (p *Player) Checkpoints() *domain.Checkpoints { return &p.checkpoints }

// Run drives rounds until the goal length is reached or ctx is
// cancelled.
func (p *Player) Run(ctx context.Context) error {
	p.populateFutures()
	for {
		select {
		case <-ctx.Done():
			return p.writeMovie(fmt.Sprintf("%s-playfun-%d.fm2", p.cfg.Game, p.iter))
		default:
		}
		if p.cfg.GoalLength > 0 && p.movie.Len() >= p.cfg.GoalLength {
			p.log.Info().Int("movie", p.movie.Len()).Msg("goal length reached")
			return p.writeMovie(fmt.Sprintf("%s-playfun-%d.fm2", p.cfg.Game, p.iter))
		}
		if err := p.playRound(ctx); err != nil {
			return err
		}
	}
}

// candidate is one scored next: the inputs a round may commit plus
// the explanation that ends up in the movie annotations.
type candidate struct {
	inputs []byte
	expl   string
}

// playRound executes one full selector round, then the periodic
// chores hanging off it: checkpointing, backtracking, and movie
// snapshots.
func (p *Player) playRound(ctx context.Context) error {
	if len(p.futures) != NFutures {
		panic(fmt.Sprintf("player: %d futures entering round, want %d", len(p.futures), NFutures))
	}
	p.iter++
	p.motifs.Checkpoint(p.movie.Len())

	nexts := p.enumerateNexts()
	s0 := p.console.Save()
	m0 := p.console.ReadRAM()
	startFrame := p.movie.Len()

	resps, err := p.scoreCandidates(ctx, s0, nexts)
	if err != nil {
		return err
	}

	totals := make([]float64, len(p.futures))
	for _, resp := range resps {
		sn := resp.ScoreNexts
		// The synthetic hold-last future occupies the final slot; its
		// scalar is not credited to any pool entry.
		for j := 0; j < len(totals) && j < len(sn.PerFutureScalar); j++ {
			totals[j] += sn.PerFutureScalar[j]
		}
	}

	best := 0
	bestScore := resps[0].ScoreNexts.Immediate + resps[0].ScoreNexts.Aggregate
	for i := 1; i < len(resps); i++ {
		if s := resps[i].ScoreNexts.Immediate + resps[i].ScoreNexts.Aggregate; s > bestScore {
			best, bestScore = i, s
		}
	}

	p.console.Load(s0)
	p.commit(nexts[best].inputs, nexts[best].expl)
	mPost := p.console.ReadRAM()

	p.chopFutures()
	p.cullFutures(totals)
	observability.FuturesDropped.Add(DropFutures + MutateFutures)

	if m := p.motifs.Lookup(nexts[best].inputs); m != nil {
		before := p.objectives.NormalizedValue(m0)
		after := p.objectives.NormalizedValue(mPost)
		if after != before {
			p.motifs.Reweight(m, after > before)
		}
	}

	p.objectives.Observe(mPost, p.rnd)
	p.populateFutures()
	if len(p.futures) != NFutures {
		panic(fmt.Sprintf("player: %d futures leaving round, want %d", len(p.futures), NFutures))
	}

	if p.movie.Len() >= p.lastCheckAt+CheckpointEvery {
		p.checkpoints.Push(domain.Checkpoint{Snapshot: p.console.Save(), Movenum: p.movie.Len()})
		p.lastCheckAt = p.movie.Len()
	}

	normalized := p.objectives.NormalizedValue(mPost)
	observability.RoundsTotal.Inc()
	observability.RoundScore.Set(bestScore)
	observability.NormalizedValue.Set(normalized)

	report := RoundReport{
		Iter:       p.iter,
		StartFrame: startFrame,
		Chosen:     best,
		Score:      bestScore,
		Expl:       nexts[best].expl,
		MovieLen:   p.movie.Len(),
		Normalized: normalized,
	}
	for _, resp := range resps {
		sn := resp.ScoreNexts
		report.Immediates = append(report.Immediates, sn.Immediate)
		report.Positives = append(report.Positives, sn.BestFuture)
		report.Negatives = append(report.Negatives, sn.WorstFuture)
		report.Norms = append(report.Norms, sn.Normalized)
	}
	p.reporter.Round(report)
	p.log.Info().
		Int("iter", p.iter).
		Int("movie", p.movie.Len()).
		Str("picked", nexts[best].expl).
		Float64("score", bestScore).
		Float64("norm", normalized).
		Msg("round committed")

	if p.movie.Len() >= p.nextBacktrack {
		if err := p.backtrack(ctx); err != nil {
			return err
		}
	}

	if p.iter%movieWriteEvery == 0 {
		if err := p.writeMovie(fmt.Sprintf("%s-playfun-%d.fm2", p.cfg.Game, p.iter)); err != nil {
			return err
		}
	}
	return nil
}

// commit appends inputs to the movie, stepping the console through
// the cache.
func (p *Player) commit(inputs []byte, expl string) {
	for _, in := range inputs {
		p.console.CachedStep(in)
		p.movie.Commit(in, expl)
	}
	observability.CommitsTotal.Add(float64(len(inputs)))
	observability.MovieLength.Set(float64(p.movie.Len()))
}

// enumerateNexts derives the candidate nexts: the head of every
// long-enough future, deduplicated, backfilled with weighted motifs
// not already present.
func (p *Player) enumerateNexts() []candidate {
	seen := make(map[string]bool)
	var nexts []candidate
	for i, f := range p.futures {
		if len(f.Inputs) < InputsPerNext {
			continue
		}
		head := f.Inputs[:InputsPerNext]
		if seen[string(head)] {
			continue
		}
		seen[string(head)] = true
		nexts = append(nexts, candidate{
			inputs: append([]byte(nil), head...),
			expl:   fmt.Sprintf("ftr-%d", i),
		})
	}
	for len(nexts) < NFutures {
		m := p.motifs.RandomWeightedNotIn(seen, p.rnd)
		if m == nil {
			break
		}
		seen[string(m.Inputs)] = true
		nexts = append(nexts, candidate{
			inputs: append([]byte(nil), m.Inputs...),
			expl:   "backfill",
		})
	}
	if len(nexts) == 0 {
		panic("player: no candidate nexts")
	}
	return nexts
}

// scoreCandidates builds one score-nexts request per candidate —
// each carrying the futures pool plus a synthetic future that holds
// the candidate's final input for the pool's average length — and
// dispatches the batch.
func (p *Player) scoreCandidates(ctx context.Context, s0 emulator.Snapshot, nexts []candidate) ([]*wire.Response, error) {
	avgLen := 0
	if len(p.futures) > 0 {
		total := 0
		for _, f := range p.futures {
			total += len(f.Inputs)
		}
		avgLen = total / len(p.futures)
	}
	if avgLen < 1 {
		avgLen = 1
	}

	reqs := make([]*wire.Request, len(nexts))
	for i, n := range nexts {
		futures := make([][]byte, 0, len(p.futures)+1)
		for _, f := range p.futures {
			futures = append(futures, f.Inputs)
		}
		hold := make([]byte, avgLen)
		for j := range hold {
			hold[j] = n.inputs[len(n.inputs)-1]
		}
		futures = append(futures, hold)

		reqs[i] = &wire.Request{
			ID: uuid.NewString(),
			ScoreNexts: &wire.ScoreNextsRequest{
				CurrentState: s0,
				Next:         n.inputs,
				Futures:      futures,
			},
		}
	}
	resps, err := p.dispatcher.Do(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("score round: %w", err)
	}
	for i, resp := range resps {
		if resp.ScoreNexts == nil {
			return nil, fmt.Errorf("score round: response %d: %w", i, domain.ErrShortResponse)
		}
	}
	return resps, nil
}

// writeMovie emits the current movie under the output directory.
func (p *Player) writeMovie(name string) error {
	path := filepath.Join(p.cfg.OutDir, name)
	if err := movie.Write(path, p.cfg.Game, p.movie.Inputs(), p.movie.Annotations()); err != nil {
		return err
	}
	p.log.Info().Str("path", path).Int("frames", p.movie.Len()).Msg("movie written")
	return nil
}
