// Package dispatch fans scoring work out to helper processes. A batch
// of requests is assigned round-robin over the configured endpoints;
// each exchange is retried against its assigned helper first (the
// helper-side response cache makes a retry cheap), then failed over to
// the remaining endpoints. With no endpoints configured every request
// is serviced in-process, synchronously.
package dispatch

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ddugovic/tasbot/internal/domain"
	"github.com/ddugovic/tasbot/internal/infra/observability"
	"github.com/ddugovic/tasbot/internal/wire"
)

// Handler services one request. The in-process fallback and the
// helper loop share this surface.
type Handler interface {
	Handle(*wire.Request) (*wire.Response, error)
}

const (
	// maxRetries bounds exchanges against the assigned helper before
	// failing over.
	maxRetries = 3

	dialTimeout = 10 * time.Second
	ioTimeout   = 5 * time.Minute
)

// Dispatcher routes request batches to helpers, or services them
// locally when none are configured.
type Dispatcher struct {
	endpoints []string
	local     Handler
	log       zerolog.Logger
	rr        int
}

// New creates a dispatcher. local is required; endpoints may be empty.
func New(endpoints []string, local Handler, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{endpoints: endpoints, local: local, log: log}
}

// Endpoints returns the configured helper endpoints.
func (d *Dispatcher) Endpoints() []string { return d.endpoints }

// Do services a full batch. Responses are positionally associated with
// requests. The batch either completes in full or returns an error —
// there is no partial result.
func (d *Dispatcher) Do(ctx context.Context, reqs []*wire.Request) ([]*wire.Response, error) {
	for _, req := range reqs {
		observability.DispatchRequests.WithLabelValues(req.Kind()).Inc()
	}

	if len(d.endpoints) == 0 {
		responses := make([]*wire.Response, len(reqs))
		for i, req := range reqs {
			resp, err := d.local.Handle(req)
			if err != nil {
				return nil, fmt.Errorf("local request %d: %w", i, err)
			}
			responses[i] = resp
		}
		return responses, nil
	}

	responses := make([]*wire.Response, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	base := d.rr
	for i, req := range reqs {
		i, req := i, req
		assigned := (base + i) % len(d.endpoints)
		g.Go(func() error {
			resp, err := d.exchange(ctx, assigned, req)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	d.rr = (base + len(reqs)) % len(d.endpoints)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

// exchange sends one request: retries against the assigned endpoint,
// then one attempt against each remaining endpoint.
func (d *Dispatcher) exchange(ctx context.Context, assigned int, req *wire.Request) (*wire.Response, error) {
	body, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	ep := d.endpoints[assigned]
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			observability.DispatchRetries.Inc()
		}
		resp, err := d.exchangeOnce(ctx, ep, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		d.log.Warn().Str("helper", ep).Int("attempt", attempt+1).Err(err).Msg("helper exchange failed")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	for off := 1; off < len(d.endpoints); off++ {
		ep := d.endpoints[(assigned+off)%len(d.endpoints)]
		observability.DispatchFailovers.Inc()
		resp, err := d.exchangeOnce(ctx, ep, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		d.log.Warn().Str("helper", ep).Err(err).Msg("failover exchange failed")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("request %s: %w: %w", req.ID, domain.ErrNoWorkerUsable, lastErr)
}

// exchangeOnce performs a single connect-send-receive cycle.
func (d *Dispatcher) exchangeOnce(ctx context.Context, ep string, body []byte) (*wire.Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", ep)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", ep, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(ioTimeout))

	if err := wire.WriteFrame(conn, body); err != nil {
		return nil, err
	}
	respBody, err := wire.ReadFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrShortResponse, err)
	}
	return wire.DecodeResponse(respBody)
}
