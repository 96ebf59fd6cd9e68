// internal/intent/client.go
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bus-enquiry-engine/internal/common/config"
	"bus-enquiry-engine/internal/common/logger"

	"bus-enquiry-engine/internal/models"
)

// Client calls the hosted intent-extraction service: transcript text in,
// flat intent payload out. Transient failures are retried with a short
// backoff; 4xx answers are not retried because resending the same
// transcript cannot help.

type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	log        logger.Logger
}

type extractRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale,omitempty"`
}

func NewClient(cfg config.IntentConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Extract sends one transcript and returns the decoded intent record.
func (c *Client) Extract(ctx context.Context, text, locale string) (models.IntentRecord, error) {
	body, err := json.Marshal(extractRequest{Text: text, Locale: locale})
	if err != nil {
		return models.IntentRecord{}, fmt.Errorf("marshal extract request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			c.log.Warn("retrying intent extraction", map[string]interface{}{
				"attempt": attempt,
				"backoff": backoff.String(),
			})
			select {
			case <-ctx.Done():
				return models.IntentRecord{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		raw, retryable, err := c.post(ctx, body)
		if err == nil {
			return Decode(raw)
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return models.IntentRecord{}, fmt.Errorf("intent extraction failed: %w", lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (raw []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return raw, false, nil
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("extraction service returned %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("extraction service returned %d", resp.StatusCode)
	}
}
