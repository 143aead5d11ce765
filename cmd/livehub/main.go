// The livehub command runs the live dispatch hub: the WebSocket presence and
// notification core plus its status API.
package main

import (
	"context"
	"os"

	"cloud.google.com/go/pubsub/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/cmd"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/app"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/hub"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/middleware"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/platform/cache"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/platform/persistence"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/platform/push"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/queue"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/realtime"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/livehub"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/livehub/config"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := context.Background()

	cfg, err := cmd.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()

	tracking, err := persistence.NewTrackingStore(pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create tracking store")
	}

	var chat live.ChatStore
	chat, err = persistence.NewChatStore(pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create chat store")
	}

	if cfg.RedisEnabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = redisClient.Close() }()
		chat, err = cache.NewTokenCache(chat, redisClient, cfg.TokenCacheTTL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create token cache")
		}
	}

	sender, cleanup, err := buildPushSender(ctx, cfg.Push.Type, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create push sender")
	}
	defer cleanup()

	registry := realtime.NewConnectionRegistry(logger)
	rooms := realtime.NewRoomRegistry(logger)
	notificationQueue := queue.NewNotificationQueue()
	authMiddleware := middleware.JWTAuth([]byte(cfg.JWTSecret))

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

// buildPushSender selects the configured push transport. The returned cleanup
// closes any underlying client.
func buildPushSender(ctx context.Context, kind string, cfg *config.AppConfig, logger zerolog.Logger) (live.PushSender, func(), error) {
	switch kind {
	case "http":
		sender, err := push.NewHTTPSender(cfg.Push.Endpoint, cfg.Push.ServerKey, logger)
		return sender, func() {}, err
	default:
		client, err := pubsub.NewClient(ctx, cfg.Push.ProjectID)
		if err != nil {
			return nil, func() {}, err
		}
		sender, err := push.NewPubSubSender(push.NewTopicPublisher(client.Publisher(cfg.Push.TopicID)), logger)
		if err != nil {
			_ = client.Close()
			return nil, func() {}, err
		}
		return sender, func() { _ = client.Close() }, nil
	}
}
