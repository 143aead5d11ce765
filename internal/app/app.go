// Package app contains the shared logic for starting and stopping the
// service process.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/hub"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/livehub"
)

const shutdownTimeout = 15 * time.Second

// Run executes the main application lifecycle. It starts the API service and
// the hub in separate goroutines, waits for an OS signal or a failure, and
// performs a graceful shutdown of both.
func Run(
	ctx context.Context,
	logger zerolog.Logger,
	apiService *livehub.Wrapper,
	liveHub *hub.Hub,
) {
	var wg sync.WaitGroup
	wg.Add(2)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer wg.Done()
		logger.Info().Msg("starting API service")
		if err := apiService.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("API service failed")
			cancel()
		}
	}()

	go func() {
		defer wg.Done()
		logger.Info().Msg("starting hub service")
		err := liveHub.Start(ctx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("hub service failed")
			cancel()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case <-ctx.Done():
		logger.Info().Msg("context cancelled, initiating shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	logger.Info().Msg("shutting down hub")
	if err := liveHub.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("hub shutdown failed")
	}

	logger.Info().Msg("shutting down API service")
	if err := apiService.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API service shutdown failed")
	}

	wg.Wait()
	logger.Info().Msg("all services shut down gracefully")
}
