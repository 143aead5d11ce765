// The local command runs the hub against in-memory fakes: no database, no
// Redis, no push provider. Useful for client development.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/cmd"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/app"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/hub"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/middleware"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/queue"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/realtime"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/livehub"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	cfg, err := cmd.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	tracking, chat, sender := cmd.NewFakeStores(logger)

	registry := realtime.NewConnectionRegistry(logger)
	rooms := realtime.NewRoomRegistry(logger)
	notificationQueue := queue.NewNotificationQueue()

	authMiddleware := middleware.NoopAuth("local-user")

	liveHub, err := hub.New(cfg.HubPort, authMiddleware, registry, rooms, live.Dependencies{
		Tracking: tracking,
		Chat:     chat,
		Queue:    notificationQueue,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create hub")
	}

	apiService, err := livehub.New(cfg, registry, rooms, notificationQueue, sender, authMiddleware, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create API service")
	}

	app.Run(ctx, logger, apiService, liveHub)
}
