// Package push contains concrete push-delivery adapters. The dispatch worker
// talks to them through the live.PushSender interface; delivery is best
// effort end to end.
package push

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventPublisher is the interface for publishing a raw payload to the
// notification topic. It allows a mockable, generic producer.
type EventPublisher interface {
	Publish(ctx context.Context, payload []byte) (string, error)
}

// TopicPublisher adapts a *pubsub.Publisher to EventPublisher.
type TopicPublisher struct {
	publisher *pubsub.Publisher
}

// NewTopicPublisher wraps a Pub/Sub topic publisher.
func NewTopicPublisher(publisher *pubsub.Publisher) *TopicPublisher {
	return &TopicPublisher{publisher: publisher}
}

// Publish sends the payload and waits for the server-assigned message id.
func (t *TopicPublisher) Publish(ctx context.Context, payload []byte) (string, error) {
	result := t.publisher.Publish(ctx, &pubsub.Message{Data: payload})
	return result.Get(ctx)
}

// pushRequest is the message published for the downstream notification
// delivery service.
type pushRequest struct {
	ID      string            `json:"id"`
	Channel string            `json:"channel"` // "web" or "app"
	Tokens  []string          `json:"tokens"`
	Title   string            `json:"title,omitempty"`
	Body    string            `json:"body,omitempty"`
	Data    map[string]string `json:"data"`
}

// PubSubSender forwards push requests to the notification delivery service
// over a Pub/Sub topic rather than calling the provider directly, keeping
// provider credentials and retry policy out of this process.
type PubSubSender struct {
	producer EventPublisher
	logger   zerolog.Logger
}

// NewPubSubSender creates a sender over the given producer.
func NewPubSubSender(producer EventPublisher, logger zerolog.Logger) (*PubSubSender, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	return &PubSubSender{
		producer: producer,
		logger:   logger.With().Str("component", "PubSubSender").Logger(),
	}, nil
}

// SendWebBatch publishes one web push request for a batch of tokens.
func (s *PubSubSender) SendWebBatch(ctx context.Context, tokens []string, data map[string]string) error {
	return s.publish(ctx, pushRequest{
		ID:      uuid.NewString(),
		Channel: "web",
		Tokens:  tokens,
		Data:    data,
	})
}

// SendAppSingle publishes one app push request for a single token.
func (s *PubSubSender) SendAppSingle(ctx context.Context, token, title, body string, data map[string]string) error {
	return s.publish(ctx, pushRequest{
		ID:      uuid.NewString(),
		Channel: "app",
		Tokens:  []string{token},
		Title:   title,
		Body:    body,
		Data:    data,
	})
}

func (s *PubSubSender) publish(ctx context.Context, request pushRequest) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	serverID, err := s.producer.Publish(ctx, payload)
	if err != nil {
		return fmt.Errorf("failed to publish push request: %w", err)
	}

	s.logger.Debug().Str("msg_id", request.ID).Str("server_id", serverID).
		Str("channel", request.Channel).Int("tokens", len(request.Tokens)).
		Msg("push request published")
	return nil
}
