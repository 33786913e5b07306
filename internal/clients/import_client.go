package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"feed-mapper-service/internal/models"

	"golang.org/x/time/rate"
)

// HTTPImportClient talks to a marketplace item-import API over JSON/HTTP
// with client-side rate limiting, retries and a circuit breaker
type HTTPImportClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retrier    *Retrier
	breaker    *CircuitBreaker
}

// HTTPImportClientConfig configures the import client
type HTTPImportClientConfig struct {
	BaseURL        string
	APIKey         string
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
	Retry          *RetryConfig
}

// NewHTTPImportClient creates a new import client
func NewHTTPImportClient(config HTTPImportClientConfig) *HTTPImportClient {
	if config.RequestsPerSec <= 0 {
		config.RequestsPerSec = 5
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	return &HTTPImportClient{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSec), config.Burst),
		retrier:    NewRetrier(config.Retry),
		breaker:    NewCircuitBreaker(5, 30*time.Second),
	}
}

// SubmitItems sends ready offers for import
func (c *HTTPImportClient) SubmitItems(ctx context.Context, items []models.BuiltOffer) (*ImportResult, error) {
	var result ImportResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/items/import", items, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetImportStatus polls the state of a submitted task
func (c *HTTPImportClient) GetImportStatus(ctx context.Context, taskID string) (*ImportStatus, error) {
	var status ImportStatus
	path := fmt.Sprintf("/v1/items/import/%s", taskID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// doJSON performs one logical API call with rate limiting, retry with
// backoff and circuit breaking
func (c *HTTPImportClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("import API circuit open, request to %s rejected", path)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retrier.MaxRetries(); attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if !c.retrier.ShouldRetry(0, err) {
				break
			}
		} else {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				defer resp.Body.Close()
				c.breaker.RecordSuccess()
				if out == nil {
					return nil
				}
				return json.NewDecoder(resp.Body).Decode(out)
			}

			retryAfter := ParseRetryAfter(resp)
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = fmt.Errorf("import API %s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))

			if !c.retrier.ShouldRetry(resp.StatusCode, nil) {
				break
			}

			if attempt < c.retrier.MaxRetries() {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.retrier.CalculateBackoff(attempt, retryAfter)):
				}
				continue
			}
			break
		}

		if attempt < c.retrier.MaxRetries() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retrier.CalculateBackoff(attempt, 0)):
			}
		}
	}

	c.breaker.RecordFailure()
	return lastErr
}
