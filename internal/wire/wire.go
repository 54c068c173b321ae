// Package wire defines the master/helper request-response protocol:
// length-prefixed JSON frames over TCP. The envelope is fixed-tag —
// exactly one request kind is set per message — and encoding is
// deterministic (struct field order), which the helper-side response
// cache relies on: a retried request is byte-identical to the
// original.
package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ddugovic/tasbot/internal/domain"
)

// MaxFrameSize bounds a single frame. Requests carry snapshots and
// futures; responses are small.
const MaxFrameSize = 64 << 20

// Strategy enumerates the improve-segment local-search strategies.
type Strategy string

const (
	StrategyRandom  Strategy = "RANDOM"
	StrategyDualize Strategy = "DUALIZE"
	StrategyAblate  Strategy = "ABLATE"
	StrategyChop    Strategy = "CHOP"
	StrategyShuffle Strategy = "SHUFFLE"
)

// Strategies lists every improve-segment strategy.
var Strategies = []Strategy{
	StrategyRandom, StrategyDualize, StrategyAblate, StrategyChop, StrategyShuffle,
}

// Request is the helper request envelope. Exactly one of the kind
// fields is set.
type Request struct {
	ID             string                 `json:"id"`
	ScoreNexts     *ScoreNextsRequest     `json:"score_nexts,omitempty"`
	ImproveSegment *ImproveSegmentRequest `json:"improve_segment,omitempty"`
}

// ScoreNextsRequest asks a helper to score one candidate next against
// the caller's futures, starting from the given state.
type ScoreNextsRequest struct {
	CurrentState []byte   `json:"current_state"`
	Next         []byte   `json:"next"`
	Futures      [][]byte `json:"futures"`
}

// ImproveSegmentRequest asks a helper to hill-climb a replacement for
// a committed movie segment.
type ImproveSegmentRequest struct {
	StartState  []byte   `json:"start_state"`
	Improveme   []byte   `json:"improveme"`
	EndState    []byte   `json:"end_state"`
	EndIntegral float64  `json:"end_integral"`
	Strategy    Strategy `json:"strategy"`
	Seed        string   `json:"seed"`
	Iters       int      `json:"iters"`
	MaxBest     int      `json:"maxbest"`
}

// Response is the helper response envelope, mirroring the request
// kind.
type Response struct {
	ID             string                  `json:"id"`
	ScoreNexts     *ScoreNextsResponse     `json:"score_nexts,omitempty"`
	ImproveSegment *ImproveSegmentResponse `json:"improve_segment,omitempty"`
}

// ScoreNextsResponse carries the scoring outputs for one next.
type ScoreNextsResponse struct {
	Immediate       float64   `json:"immediate"`
	Normalized      float64   `json:"normalized"`
	BestFuture      float64   `json:"best_future"`
	WorstFuture     float64   `json:"worst_future"`
	Aggregate       float64   `json:"aggregate"`
	PerFutureScalar []float64 `json:"per_future_scalar"`
}

// ImproveSegmentResponse carries up to MaxBest candidate segments
// with their scores, best first.
type ImproveSegmentResponse struct {
	Inputs      [][]byte  `json:"inputs"`
	Scores      []float64 `json:"scores"`
	ItersTried  int       `json:"iters_tried"`
	ItersBetter int       `json:"iters_better"`
}

// Kind names the request kind, or "" when none or both are set.
func (r *Request) Kind() string {
	switch {
	case r.ScoreNexts != nil && r.ImproveSegment == nil:
		return "score_nexts"
	case r.ImproveSegment != nil && r.ScoreNexts == nil:
		return "improve_segment"
	}
	return ""
}

// Validate checks the one-kind-set invariant.
func (r *Request) Validate() error {
	if r.Kind() == "" {
		return domain.ErrBadRequest
	}
	return nil
}

// ─── Framing ────────────────────────────────────────────────────────────────

// WriteFrame writes a 4-byte big-endian length followed by body.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameSize {
		return fmt.Errorf("write frame (%d bytes): %w", len(body), domain.ErrFrameTooLarge)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("read frame (%d bytes): %w", n, domain.ErrFrameTooLarge)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return body, nil
}

// EncodeRequest marshals a request after validating it.
func EncodeRequest(req *Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

// DecodeRequest unmarshals and validates a request.
func DecodeRequest(body []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// EncodeResponse marshals a response.
func EncodeResponse(resp *Response) ([]byte, error) {
	return json.Marshal(resp)
}

// DecodeResponse unmarshals a response.
func DecodeResponse(body []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}
