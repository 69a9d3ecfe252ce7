package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/papertrail/internal/config"
)

// ErrNotConfigured is returned when no webhook URL was provided.
var ErrNotConfigured = errors.New("notify webhook not configured")

// Notifier delivers short plain-text messages to an operator channel.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Message is the webhook payload.
type Message struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// apiError represents the error body returned by the webhook, if any.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WebhookClient is a resty-backed implementation of Notifier.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

func (c *WebhookClient) Notify(ctx context.Context, msg Message) error {
	if c.url == "" {
		return ErrNotConfigured
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("notify webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
