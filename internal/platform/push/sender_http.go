package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPSender delivers pushes straight to an FCM-legacy-style HTTP endpoint.
// Used when no Pub/Sub notification service sits downstream.
type HTTPSender struct {
	endpoint  string
	serverKey string
	client    *http.Client
	logger    zerolog.Logger
}

// NewHTTPSender creates a direct HTTP push sender.
func NewHTTPSender(endpoint, serverKey string, logger zerolog.Logger) (*HTTPSender, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("push endpoint cannot be empty")
	}
	return &HTTPSender{
		endpoint:  endpoint,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		logger:    logger.With().Str("component", "HTTPSender").Logger(),
	}, nil
}

// SendWebBatch posts one data-only message to a batch of registration tokens.
func (s *HTTPSender) SendWebBatch(ctx context.Context, tokens []string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}
	return s.post(ctx, map[string]any{
		"registration_ids": tokens,
		"data":             data,
	})
}

// SendAppSingle posts one titled notification to a single token.
func (s *HTTPSender) SendAppSingle(ctx context.Context, token, title, body string, data map[string]string) error {
	return s.post(ctx, map[string]any{
		"to": token,
		"notification": map[string]string{
			"title": title,
			"body":  body,
		},
		"data": data,
	})
}

func (s *HTTPSender) post(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.serverKey != "" {
		req.Header.Set("Authorization", "key="+s.serverKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}
	return nil
}
