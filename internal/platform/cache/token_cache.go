// Package cache provides a Redis read-through cache for push-token lookups.
// Token resolution is on the chat send path, so the cache trades a short TTL
// of staleness for keeping the stored-procedure round trip off most sends.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// redisClient is the narrow slice of go-redis this cache needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// TokenCache decorates a ChatStore, caching GetPushTokensForRoom results in
// Redis. Every other ChatStore call passes straight through. A cache failure
// falls open to the underlying store.
type TokenCache struct {
	live.ChatStore
	client redisClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewTokenCache wraps store with a Redis token cache.
func NewTokenCache(store live.ChatStore, client redisClient, ttl time.Duration, logger zerolog.Logger) (*TokenCache, error) {
	if store == nil {
		return nil, fmt.Errorf("chat store cannot be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &TokenCache{
		ChatStore: store,
		client:    client,
		ttl:       ttl,
		logger:    logger.With().Str("component", "TokenCache").Logger(),
	}, nil
}

// GetPushTokensForRoom serves from Redis when possible, otherwise loads from
// the store and populates the cache.
func (c *TokenCache) GetPushTokensForRoom(ctx context.Context, room live.RoomName, exclude live.Key) ([]string, error) {
	key := tokenKey(room, exclude)

	payload, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var tokens []string
		if jsonErr := json.Unmarshal([]byte(payload), &tokens); jsonErr == nil {
			return tokens, nil
		}
		c.logger.Warn().Str("key", key).Msg("poison cache entry, refetching")
	} else if err != redis.Nil {
		c.logger.Error().Err(err).Str("key", key).Msg("token cache read failed, falling through")
	}

	tokens, err := c.ChatStore.GetPushTokensForRoom(ctx, room, exclude)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(tokens); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn().Err(setErr).Str("key", key).Msg("token cache write failed")
		}
	}
	return tokens, nil
}

func tokenKey(room live.RoomName, exclude live.Key) string {
	return fmt.Sprintf("push-tokens:%s:%s", room, exclude)
}
