package player

import (
	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/motif"
)

// Search pool parameters.
const (
	// NFutures is the steady-state futures pool size.
	NFutures = 40

	// NWeightedFutures is the minimum number of pool entries sampled
	// from weighted motifs; the remainder explore uniformly.
	NWeightedFutures = 35

	// InputsPerNext is the number of inputs committed per round.
	InputsPerNext = 10

	// DropFutures and MutateFutures are culled together each round:
	// the worst DropFutures+MutateFutures leave the pool, and
	// MutateFutures mutants of the best survivor replace part of them.
	DropFutures   = 5
	MutateFutures = 7

	// MinFutureLength and MaxFutureLength bound a future's desired
	// length.
	MinFutureLength = 50
	MaxFutureLength = 800

	// minMutantLength floors mutant truncation.
	minMutantLength = 10
)

// Future is one speculative continuation in the pool.
type Future struct {
	Inputs        []byte
	DesiredLength int
	Weighted      bool
	IsMutant      bool
}

// newFuture draws a fresh future with a random desired length.
func (p *Player) newFuture(weighted bool) *Future {
	return &Future{
		DesiredLength: MinFutureLength + p.rnd.Intn(MaxFutureLength-MinFutureLength+1),
		Weighted:      weighted,
	}
}

// mutateFuture clones src into a mutant: maybe flip the sampling
// flag, truncate to half the desired length, maybe dualize what
// remains.
func (p *Player) mutateFuture(src *Future) *Future {
	f := &Future{
		Inputs:        append([]byte(nil), src.Inputs...),
		DesiredLength: src.DesiredLength,
		Weighted:      src.Weighted,
		IsMutant:      true,
	}
	if p.rnd.Coin(8) {
		f.Weighted = !f.Weighted
	}
	limit := f.DesiredLength / 2
	if limit < minMutantLength {
		limit = minMutantLength
	}
	if len(f.Inputs) > limit {
		f.Inputs = f.Inputs[:limit]
	}
	if p.rnd.Coin(8) {
		domain.Dualize(f.Inputs, 0, len(f.Inputs))
	}
	return f
}

// populateFutures refills the pool to NFutures, keeps at least
// NWeightedFutures flagged weighted, and tops up every future's
// inputs to its desired length by appending whole motifs.
func (p *Player) populateFutures() {
	weighted := 0
	for _, f := range p.futures {
		if f.Weighted {
			weighted++
		}
	}
	for len(p.futures) < NFutures {
		f := p.newFuture(weighted < NWeightedFutures)
		if f.Weighted {
			weighted++
		}
		p.futures = append(p.futures, f)
	}
	for _, f := range p.futures {
		if weighted >= NWeightedFutures {
			break
		}
		if !f.Weighted {
			f.Weighted = true
			weighted++
		}
	}

	for _, f := range p.futures {
		for len(f.Inputs) < f.DesiredLength {
			var m *motif.Motif
			if f.Weighted {
				m = p.motifs.RandomWeighted(p.rnd)
			} else {
				m = p.motifs.Random(p.rnd)
			}
			if m == nil {
				break
			}
			p.motifs.Pick(m)
			need := f.DesiredLength - len(f.Inputs)
			if len(m.Inputs) > need {
				f.Inputs = append(f.Inputs, m.Inputs[:need]...)
			} else {
				f.Inputs = append(f.Inputs, m.Inputs...)
			}
		}
	}
}

// chopFutures strips the committed head from every future.
func (p *Player) chopFutures() {
	for _, f := range p.futures {
		if len(f.Inputs) > InputsPerNext {
			f.Inputs = f.Inputs[InputsPerNext:]
		} else {
			f.Inputs = nil
		}
	}
}

// cullFutures swap-removes the worst-scoring DropFutures+MutateFutures
// entries, then appends MutateFutures mutants of the best survivor.
// totals is parallel to p.futures.
func (p *Player) cullFutures(totals []float64) {
	if len(totals) != len(p.futures) {
		panic("player: future totals out of sync with pool")
	}
	for k := 0; k < DropFutures+MutateFutures && len(p.futures) > 1; k++ {
		worst := 0
		for i := 1; i < len(totals); i++ {
			if totals[i] < totals[worst] {
				worst = i
			}
		}
		last := len(p.futures) - 1
		p.futures[worst] = p.futures[last]
		p.futures = p.futures[:last]
		totals[worst] = totals[last]
		totals = totals[:last]
	}

	best := 0
	for i := 1; i < len(totals); i++ {
		if totals[i] > totals[best] {
			best = i
		}
	}
	for k := 0; k < MutateFutures; k++ {
		p.futures = append(p.futures, p.mutateFuture(p.futures[best]))
	}
}
