// Package dispatch runs the background consumer that drains the notification
// queue and performs best-effort push delivery.
package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/metrics"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/queue"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// Worker drains the notification queue for the process lifetime. One
// envelope's failure never stops subsequent dispatch: each attempt is logged
// and the loop moves on. There is no retry and no requeue.
type Worker struct {
	queue  *queue.NotificationQueue
	sender live.PushSender
	logger zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewWorker creates a dispatch worker over the given queue and sender.
func NewWorker(q *queue.NotificationQueue, sender live.PushSender, logger zerolog.Logger) *Worker {
	return &Worker{
		queue:  q,
		sender: sender,
		logger: logger.With().Str("component", "DispatchWorker").Logger(),
		done:   make(chan struct{}),
	}
}

// Start launches the consumer goroutine. The worker stops when ctx is
// cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
}

// Stop cancels the worker's blocking dequeue and waits for the consumer
// goroutine to exit. An in-flight envelope dispatch runs to completion.
func (w *Worker) Stop() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		<-w.done
	})
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	w.logger.Info().Msg("dispatch worker started")

	for {
		envelope, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.logger.Info().Msg("dispatch worker stopping")
				return
			}
			w.logger.Error().Err(err).Msg("dequeue failed")
			continue
		}
		w.dispatch(ctx, envelope)
	}
}

// dispatch attempts both halves of the envelope independently. Failures are
// logged and counted, never propagated.
func (w *Worker) dispatch(ctx context.Context, envelope live.NotificationEnvelope) {
	if envelope.HasWeb() {
		if err := w.sender.SendWebBatch(ctx, envelope.Web.Tokens, envelope.Web.Data); err != nil {
			metrics.PushDispatches.WithLabelValues("web", "error").Inc()
			w.logger.Error().Err(err).Int("tokens", len(envelope.Web.Tokens)).Msg("web push failed")
		} else {
			metrics.PushDispatches.WithLabelValues("web", "ok").Inc()
		}
	}

	if envelope.HasApp() {
		app := envelope.App
		if err := w.sender.SendAppSingle(ctx, app.Token, app.Title, app.Body, app.Data); err != nil {
			metrics.PushDispatches.WithLabelValues("app", "error").Inc()
			w.logger.Error().Err(err).Msg("app push failed")
		} else {
			metrics.PushDispatches.WithLabelValues("app", "ok").Inc()
		}
	}
}
