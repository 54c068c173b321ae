package search

import (
	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/wire"
)

// Handle services one protocol request, dispatching on its kind.
func (e *Engine) Handle(req *wire.Request) (*wire.Response, error) {
	switch req.Kind() {
	case "score_nexts":
		return &wire.Response{
			ID:         req.ID,
			ScoreNexts: e.ScoreNexts(req.ScoreNexts),
		}, nil
	case "improve_segment":
		return &wire.Response{
			ID:             req.ID,
			ImproveSegment: e.ImproveSegment(req.ImproveSegment),
		}, nil
	}
	return nil, domain.ErrBadRequest
}
