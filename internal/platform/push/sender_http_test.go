package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	auth string
	body map[string]any
}

func newProviderServer(t *testing.T, status int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		requests = append(requests, recordedRequest{
			auth: r.Header.Get("Authorization"),
			body: body,
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestHTTPSender_SendWebBatch(t *testing.T) {
	server, requests := newProviderServer(t, http.StatusOK)
	s, err := NewHTTPSender(server.URL, "server-key-1", zerolog.Nop())
	require.NoError(t, err)

	data := map[string]string{"roomId": "101"}
	require.NoError(t, s.SendWebBatch(context.Background(), []string{"tok-1", "tok-2"}, data))

	require.Len(t, *requests, 1)
	got := (*requests)[0]
	assert.Equal(t, "key=server-key-1", got.auth)
	assert.Equal(t, []any{"tok-1", "tok-2"}, got.body["registration_ids"])
	assert.Equal(t, map[string]any{"roomId": "101"}, got.body["data"])
}

func TestHTTPSender_SendAppSingle(t *testing.T) {
	server, requests := newProviderServer(t, http.StatusOK)
	s, err := NewHTTPSender(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.SendAppSingle(context.Background(), "app-tok", "New message", "hi", nil))

	require.Len(t, *requests, 1)
	got := (*requests)[0]
	assert.Empty(t, got.auth, "no auth header without a server key")
	assert.Equal(t, "app-tok", got.body["to"])
	assert.Equal(t, map[string]any{"title": "New message", "body": "hi"}, got.body["notification"])
}

func TestHTTPSender_EmptyTokenBatchIsNoOp(t *testing.T) {
	server, requests := newProviderServer(t, http.StatusOK)
	s, err := NewHTTPSender(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.SendWebBatch(context.Background(), nil, nil))
	assert.Empty(t, *requests)
}

func TestHTTPSender_ProviderErrorSurfaces(t *testing.T) {
	server, _ := newProviderServer(t, http.StatusBadGateway)
	s, err := NewHTTPSender(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	err = s.SendWebBatch(context.Background(), []string{"tok"}, nil)
	assert.ErrorContains(t, err, "status 502")
}

func TestNewHTTPSender_EmptyEndpointRejected(t *testing.T) {
	_, err := NewHTTPSender("", "key", zerolog.Nop())
	assert.Error(t, err)
}
