package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ChannelDiscord labels Discord deliveries in logs and metrics
const ChannelDiscord = "discord"

// ErrWebhookNotConfigured is returned when no webhook URL is set
var ErrWebhookNotConfigured = errors.New("discord webhook URL is not set")

// Sender delivers a rendered alert to one channel
type Sender interface {
	Send(ctx context.Context, content string) error
	Channel() string
}

// DiscordSender posts messages to a Discord webhook
type DiscordSender struct {
	webhookURL string
	client     *retryablehttp.Client
}

// NewDiscordSender creates a sender for the given webhook
func NewDiscordSender(webhookURL string) (*DiscordSender, error) {
	if webhookURL == "" {
		return nil, ErrWebhookNotConfigured
	}

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = 10 * time.Second
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &DiscordSender{webhookURL: webhookURL, client: client}, nil
}

// Channel returns the channel label
func (s *DiscordSender) Channel() string {
	return ChannelDiscord
}

// Send posts {"content": content}; any non-2xx response is an error
func (s *DiscordSender) Send(ctx context.Context, content string) error {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("failed to encode discord payload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return nil
}
