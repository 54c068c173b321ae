// Package worker implements the helper process loop: accept one
// connection, service one request, close. A small LRU keyed on the
// raw request bytes replays responses to retried requests without
// recomputing them.
package worker

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/ddugovic/tasbot/internal/dispatch"
	"github.com/ddugovic/tasbot/internal/infra/dsa"
	"github.com/ddugovic/tasbot/internal/infra/observability"
	"github.com/ddugovic/tasbot/internal/wire"
)

// cacheSize is the response cache capacity. The cache only needs to
// absorb master retries, so it stays tiny.
const cacheSize = 8

const ioTimeout = 5 * time.Minute

// Worker services helper requests one at a time.
type Worker struct {
	handler dispatch.Handler
	cache   *dsa.LRU
	log     zerolog.Logger
}

// New creates a worker around a request handler.
func New(handler dispatch.Handler, log zerolog.Logger) *Worker {
	return &Worker{
		handler: handler,
		cache:   dsa.NewLRU(cacheSize),
		log:     log,
	}
}

// ListenAndServe accepts connections on addr until ctx is cancelled.
func (w *Worker) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return w.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled.
// Connections are served strictly serially — the worker owns a single
// console.
func (w *Worker) Serve(ctx context.Context, ln net.Listener) error {
	w.log.Info().Str("addr", ln.Addr().String()).Msg("helper listening")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			w.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		w.serveConn(conn)
	}
}

// serveConn reads one request, replies, and closes.
func (w *Worker) serveConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(ioTimeout))

	body, err := wire.ReadFrame(conn)
	if err != nil {
		w.log.Warn().Err(err).Msg("read request failed")
		return
	}

	if cached, ok := w.cache.Get(string(body)); ok {
		observability.WorkerCacheHits.Inc()
		if err := wire.WriteFrame(conn, cached); err != nil {
			w.log.Warn().Err(err).Msg("write cached response failed")
		}
		return
	}
	observability.WorkerCacheMisses.Inc()

	req, err := wire.DecodeRequest(body)
	if err != nil {
		w.log.Warn().Err(err).Msg("malformed request")
		return
	}
	observability.WorkerRequests.WithLabelValues(req.Kind()).Inc()

	started := time.Now()
	resp, err := w.handler.Handle(req)
	if err != nil {
		w.log.Error().Str("id", req.ID).Err(err).Msg("request failed")
		return
	}
	respBody, err := wire.EncodeResponse(resp)
	if err != nil {
		w.log.Error().Str("id", req.ID).Err(err).Msg("encode response failed")
		return
	}

	w.cache.Put(string(body), respBody)
	if err := wire.WriteFrame(conn, respBody); err != nil {
		w.log.Warn().Err(err).Msg("write response failed")
		return
	}
	w.log.Debug().
		Str("id", req.ID).
		Str("kind", req.Kind()).
		Dur("took", time.Since(started)).
		Msg("request served")
}
