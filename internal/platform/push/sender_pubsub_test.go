package push

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingPublisher records published payloads.
type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *capturingPublisher) Publish(_ context.Context, payload []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.payloads = append(p.payloads, payload)
	return "server-id-1", nil
}

func (p *capturingPublisher) last(t *testing.T) pushRequest {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.payloads)
	var req pushRequest
	require.NoError(t, json.Unmarshal(p.payloads[len(p.payloads)-1], &req))
	return req
}

func TestPubSubSender_SendWebBatch(t *testing.T) {
	producer := &capturingPublisher{}
	s, err := NewPubSubSender(producer, zerolog.Nop())
	require.NoError(t, err)

	data := map[string]string{"roomId": "101", "text": "hi"}
	require.NoError(t, s.SendWebBatch(context.Background(), []string{"tok-1", "tok-2"}, data))

	req := producer.last(t)
	assert.Equal(t, "web", req.Channel)
	assert.Equal(t, []string{"tok-1", "tok-2"}, req.Tokens)
	assert.Equal(t, data, req.Data)
	assert.NotEmpty(t, req.ID)
	assert.Empty(t, req.Title)
}

func TestPubSubSender_SendAppSingle(t *testing.T) {
	producer := &capturingPublisher{}
	s, err := NewPubSubSender(producer, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.SendAppSingle(context.Background(), "app-tok", "New message", "hi", nil))

	req := producer.last(t)
	assert.Equal(t, "app", req.Channel)
	assert.Equal(t, []string{"app-tok"}, req.Tokens)
	assert.Equal(t, "New message", req.Title)
	assert.Equal(t, "hi", req.Body)
}

func TestPubSubSender_RequestIDsAreUnique(t *testing.T) {
	producer := &capturingPublisher{}
	s, err := NewPubSubSender(producer, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.SendWebBatch(context.Background(), []string{"tok"}, nil))
	first := producer.last(t).ID
	require.NoError(t, s.SendWebBatch(context.Background(), []string{"tok"}, nil))
	second := producer.last(t).ID

	assert.NotEqual(t, first, second)
}

func TestPubSubSender_PublishErrorSurfaces(t *testing.T) {
	producer := &capturingPublisher{err: errors.New("topic gone")}
	s, err := NewPubSubSender(producer, zerolog.Nop())
	require.NoError(t, err)

	err = s.SendWebBatch(context.Background(), []string{"tok"}, nil)
	assert.ErrorContains(t, err, "failed to publish")
}

func TestNewPubSubSender_NilProducerRejected(t *testing.T) {
	_, err := NewPubSubSender(nil, zerolog.Nop())
	assert.Error(t, err)
}
