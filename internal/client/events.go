// Package client talks to the HTTP event ingress of a running processor.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/facetrail/internal/service"
)

const eventsPath = "/api/v1/events"

// EventClient posts event batches to the ingress.
type EventClient struct {
	client *resty.Client
}

// Config holds configuration for the event client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewEventClient creates a new event client
func NewEventClient(cfg *Config) *EventClient {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &EventClient{client: client}
}

// Send posts one raw batch and returns the decoded result along with the
// status code the processor reported. Partial failure is not an error.
func (c *EventClient) Send(ctx context.Context, payload []byte) (*service.BatchResult, error) {
	var result service.BatchResult
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		SetError(&result).
		Post(eventsPath)

	if err != nil {
		return nil, fmt.Errorf("failed to call event ingress: %w", err)
	}

	// Rejected and failed batches still carry an errors list
	if httpResp.IsError() && result.Errors == nil {
		return nil, fmt.Errorf("event ingress error: status %d", httpResp.StatusCode())
	}
	result.StatusCode = httpResp.StatusCode()
	return &result, nil
}
