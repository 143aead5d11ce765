package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// fakeRedis is an in-memory stand-in for the redis client slice the cache
// uses. It can be forced to fail reads.
type fakeRedis struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	sets    int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{entries: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		cmd := redis.NewStringCmd(ctx)
		cmd.SetErr(f.getErr)
		return cmd
	}
	if value, ok := f.entries[key]; ok {
		return redis.NewStringResult(value, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	switch v := value.(type) {
	case []byte:
		f.entries[key] = string(v)
	case string:
		f.entries[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

// countingStore counts pass-throughs to the underlying store.
type countingStore struct {
	live.ChatStore
	mu     sync.Mutex
	calls  int
	tokens []string
	err    error
}

func (s *countingStore) GetPushTokensForRoom(_ context.Context, _ live.RoomName, _ live.Key) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.tokens, s.err
}

func TestTokenCache_MissPopulatesAndHitSkipsStore(t *testing.T) {
	client := newFakeRedis()
	store := &countingStore{tokens: []string{"tok-1", "tok-2"}}
	c, err := NewTokenCache(store, client, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	tokens, err := c.GetPushTokensForRoom(ctx, "101", "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1", "tok-2"}, tokens)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, client.sets)

	// Second lookup is served from the cache.
	tokens, err = c.GetPushTokensForRoom(ctx, "101", "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1", "tok-2"}, tokens)
	assert.Equal(t, 1, store.calls, "cache hit must not reach the store")
}

func TestTokenCache_KeyIncludesExcludedSender(t *testing.T) {
	client := newFakeRedis()
	store := &countingStore{tokens: []string{"tok-1"}}
	c, err := NewTokenCache(store, client, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.GetPushTokensForRoom(ctx, "101", "U1")
	require.NoError(t, err)
	_, err = c.GetPushTokensForRoom(ctx, "101", "U2")
	require.NoError(t, err)

	assert.Equal(t, 2, store.calls, "a different excluded sender is a different cache entry")
}

func TestTokenCache_ReadFailureFallsOpen(t *testing.T) {
	client := newFakeRedis()
	client.getErr = errors.New("redis down")
	store := &countingStore{tokens: []string{"tok-1"}}
	c, err := NewTokenCache(store, client, time.Minute, zerolog.Nop())
	require.NoError(t, err)

	tokens, err := c.GetPushTokensForRoom(context.Background(), "101", "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, tokens)
	assert.Equal(t, 1, store.calls)
}

func TestTokenCache_PoisonEntryRefetched(t *testing.T) {
	client := newFakeRedis()
	store := &countingStore{tokens: []string{"tok-1"}}
	c, err := NewTokenCache(store, client, time.Minute, zerolog.Nop())
	require.NoError(t, err)

	client.entries[tokenKey("101", "U1")] = "{not json"

	tokens, err := c.GetPushTokensForRoom(context.Background(), "101", "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, tokens)
	assert.Equal(t, 1, store.calls)

	// The poison entry was overwritten with a valid one.
	var cached []string
	require.NoError(t, json.Unmarshal([]byte(client.entries[tokenKey("101", "U1")]), &cached))
	assert.Equal(t, []string{"tok-1"}, cached)
}

func TestTokenCache_StoreErrorPropagates(t *testing.T) {
	client := newFakeRedis()
	store := &countingStore{err: errors.New("procedure failed")}
	c, err := NewTokenCache(store, client, time.Minute, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.GetPushTokensForRoom(context.Background(), "101", "U1")
	assert.Error(t, err)
	assert.Zero(t, client.sets, "a failed load must not be cached")
}

func TestNewTokenCache_NilArgumentsRejected(t *testing.T) {
	_, err := NewTokenCache(nil, newFakeRedis(), time.Minute, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewTokenCache(&countingStore{}, nil, time.Minute, zerolog.Nop())
	assert.Error(t, err)
}
