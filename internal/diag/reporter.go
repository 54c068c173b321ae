package diag

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ddugovic/tasbot/internal/infra/sqlite"
	"github.com/ddugovic/tasbot/internal/player"
)

// svgEvery rewrites the SVG plots every this many rounds.
const svgEvery = 25

// Broadcaster pushes a diagnostic record to live observers. The
// status server's websocket hub implements it.
type Broadcaster interface {
	Broadcast(v any)
}

// Reporter fans player diagnostics out to the HTML log, the sqlite
// store, the live hub, and the SVG plots. Every sink is optional.
type Reporter struct {
	game   string
	svgDir string
	html   *HTMLLog
	db     *sqlite.DB
	hub    Broadcaster
	log    zerolog.Logger

	frames []int
	values []float64
}

// NewReporter assembles a reporter; nil sinks are skipped.
func NewReporter(game, svgDir string, html *HTMLLog, db *sqlite.DB, hub Broadcaster, log zerolog.Logger) *Reporter {
	return &Reporter{game: game, svgDir: svgDir, html: html, db: db, hub: hub, log: log}
}

// Round implements player.Reporter.
func (r *Reporter) Round(rep player.RoundReport) {
	if r.html != nil {
		r.html.Roundf("round %d: frame %d, picked #%d (%s), score %.3f, norm %.3f, movie %d",
			rep.Iter, rep.StartFrame, rep.Chosen, rep.Expl, rep.Score, rep.Normalized, rep.MovieLen)
	}
	if r.db != nil {
		err := r.db.InsertRound(rep.Iter, rep.StartFrame, rep.Chosen, rep.Score, rep.Expl,
			rep.MovieLen, rep.Normalized,
			mustJSON(rep.Immediates), mustJSON(rep.Positives),
			mustJSON(rep.Negatives), mustJSON(rep.Norms))
		if err != nil {
			r.log.Warn().Err(err).Msg("round insert failed")
		}
	}
	if r.hub != nil {
		r.hub.Broadcast(rep)
	}

	r.frames = append(r.frames, rep.MovieLen)
	r.values = append(r.values, rep.Normalized)
	if r.svgDir != "" && rep.Iter%svgEvery == 0 {
		trajPath := filepath.Join(r.svgDir, fmt.Sprintf("%s-trajectory.svg", r.game))
		if err := PlotTrajectory(trajPath, r.frames, r.values); err != nil {
			r.log.Warn().Err(err).Msg("trajectory plot failed")
		}
		scorePath := filepath.Join(r.svgDir, fmt.Sprintf("%s-scores-%d.svg", r.game, rep.Iter))
		if err := PlotScores(scorePath, rep.Iter, rep.Immediates, rep.Chosen); err != nil {
			r.log.Warn().Err(err).Msg("score plot failed")
		}
	}
}

// Backtrack implements player.Reporter.
func (r *Reporter) Backtrack(rep player.BacktrackReport) {
	if r.html != nil {
		r.html.Backtrackf("backtrack at %d: %d candidates, improved=%v, movie %d → %d",
			rep.Movenum, rep.Candidates, rep.Improved, rep.OldLen, rep.NewLen)
	}
	if r.db != nil {
		if err := r.db.InsertBacktrack(rep.Iter, rep.Movenum, rep.Candidates, rep.Improved, rep.OldLen, rep.NewLen); err != nil {
			r.log.Warn().Err(err).Msg("backtrack insert failed")
		}
	}
	if r.hub != nil {
		r.hub.Broadcast(rep)
	}
}

func mustJSON(v []float64) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
