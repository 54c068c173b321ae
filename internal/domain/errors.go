package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Configuration errors
	ErrNoMovie      = errors.New("no recorded movie configured")
	ErrNoGame       = errors.New("no game name configured")
	ErrBadFlags     = errors.New("invalid flag combination")
	ErrModeConflict = errors.New("--helper and --master are mutually exclusive")

	// Movie file errors
	ErrMovieEmpty     = errors.New("recorded movie contains no frames")
	ErrMovieMalformed = errors.New("malformed movie file")

	// Objective file errors
	ErrObjectivesMalformed = errors.New("malformed objectives file")
	ErrMotifsMalformed     = errors.New("malformed motifs file")

	// Wire protocol errors
	ErrFrameTooLarge  = errors.New("wire frame exceeds size limit")
	ErrBadRequest     = errors.New("request has no recognized kind set")
	ErrShortResponse  = errors.New("truncated response from worker")
	ErrNoWorkerUsable = errors.New("every configured worker failed")

	// Improvement errors
	ErrNoImprovement = errors.New("improvement pass produced no candidates")
)
