// Package livehub wires the service together: the status API server and the
// dispatch worker live here; the WebSocket hub runs as its own server and is
// managed alongside this wrapper by internal/app.
package livehub

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/api"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/dispatch"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/queue"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/realtime"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/livehub/config"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// Wrapper runs the status API server and the background dispatch worker.
type Wrapper struct {
	server *http.Server
	worker *dispatch.Worker
	logger zerolog.Logger
	ready  atomic.Bool
}

// New creates and wires the API server and dispatch worker.
func New(
	cfg *config.AppConfig,
	registry *realtime.ConnectionRegistry,
	rooms *realtime.RoomRegistry,
	notificationQueue *queue.NotificationQueue,
	sender live.PushSender,
	authMiddleware func(http.Handler) http.Handler,
	logger zerolog.Logger,
) (*Wrapper, error) {
	if sender == nil {
		return nil, errors.New("push sender cannot be nil")
	}

	mux := http.NewServeMux()
	apiHandler := api.NewAPI(registry, rooms, logger)
	apiHandler.Register(mux, authMiddleware)

	return &Wrapper{
		server: &http.Server{
			Addr:    ":" + cfg.APIPort,
			Handler: mux,
		},
		worker: dispatch.NewWorker(notificationQueue, sender, logger),
		logger: logger.With().Str("component", "Service").Logger(),
	}, nil
}

// Start launches the dispatch worker, then serves the API until shutdown.
// It returns once the listener closes.
func (w *Wrapper) Start(ctx context.Context) error {
	w.worker.Start(ctx)

	listener, err := net.Listen("tcp", w.server.Addr)
	if err != nil {
		return fmt.Errorf("API listener failed: %w", err)
	}

	w.logger.Info().Str("addr", w.server.Addr).Msg("API server starting")
	w.ready.Store(true)

	if err := w.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Ready reports whether the API listener is active.
func (w *Wrapper) Ready() bool { return w.ready.Load() }

// Shutdown stops the API server, then stops the worker. The worker's
// in-flight envelope, if any, runs to completion; queued envelopes are
// dropped, consistent with best-effort delivery.
func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info().Msg("shutting down service components")
	w.ready.Store(false)

	var finalErr error
	if err := w.server.Shutdown(ctx); err != nil {
		w.logger.Error().Err(err).Msg("API server shutdown failed")
		finalErr = err
	}

	w.worker.Stop()
	w.logger.Info().Msg("all components shut down")
	return finalErr
}
