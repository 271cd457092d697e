package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"attentiond/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Channel POSTs the dispatch request as JSON to a configured endpoint.
// Any non-2xx status is a delivery failure.
type Channel struct {
	client  *http.Client
	url     string
	headers map[string]string
}

func New(url string, headers map[string]string) *Channel {
	return &Channel{
		client:  &http.Client{Timeout: defaultTimeout},
		url:     url,
		headers: headers,
	}
}

func (c *Channel) Name() string { return "webhook" }

func (c *Channel) Send(ctx context.Context, req domain.DispatchRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: HTTP %d", resp.StatusCode)
	}
	return nil
}
