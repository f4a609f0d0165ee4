package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"carslink-backend/config"
)

// Sentinel errors for exhausted fallback chains.
var (
	ErrAllModelsFailed = errors.New("all model calls failed")
	ErrRateLimited     = errors.New("all models rate limited")
)

// StatusError is returned for unexpected upstream status codes, with the
// response body attached.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openrouter returned status %d: %s", e.Code, e.Body)
}

// Message is a single chat turn forwarded to the gateway.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the first non-empty completion from the fallback chain.
type Result struct {
	Model   string `json:"model"`
	Content string `json:"content"`
}

// Client calls the OpenRouter chat-completions API with an ordered list of
// free-tier fallback models.
type Client struct {
	cfg    config.AIConfig
	client *http.Client
	logger *zap.SugaredLogger

	// sleep is swappable so tests can observe backoff without waiting.
	sleep func(time.Duration)
}

// NewClient creates an OpenRouter client from config.
func NewClient(cfg config.AIConfig, logger *zap.SugaredLogger) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Chat walks the candidate models in order, preferred model first when given,
// and returns the first non-empty completion. Per candidate: 404 means the
// model is unavailable and the next one is tried; 429 is retried on the same
// candidate with the base delay doubling per attempt; 401/403 fail the whole
// chain immediately; any other non-2xx fails with the body attached.
func (c *Client) Chat(ctx context.Context, messages []Message, preferredModel string) (*Result, error) {
	candidates := c.candidates(preferredModel)

	allRateLimited := true
	for _, model := range candidates {
		result, err := c.tryModel(ctx, model, messages)
		if err == nil {
			return result, nil
		}

		var se *StatusError
		if errors.As(err, &se) {
			switch {
			case se.Code == http.StatusNotFound:
				c.logger.Infof("model %s unavailable, trying next candidate", model)
				allRateLimited = false
				continue
			case se.Code == http.StatusTooManyRequests:
				c.logger.Warnf("model %s rate limited after retries, trying next candidate", model)
				continue
			case se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden:
				return nil, fmt.Errorf("openrouter auth failed: %w", err)
			default:
				return nil, err
			}
		}
		// Transport-level failure: move on, but it was not a rate limit.
		c.logger.Warnf("model %s request failed: %v", model, err)
		allRateLimited = false
	}

	if allRateLimited {
		return nil, ErrRateLimited
	}
	return nil, ErrAllModelsFailed
}

// tryModel issues up to MaxRetries+1 requests against a single model,
// retrying only on 429.
func (c *Client) tryModel(ctx context.Context, model string, messages []Message) (*Result, error) {
	delay := c.cfg.BackoffBase
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.sleep(delay)
			delay *= 2
		}

		result, err := c.complete(ctx, model, messages)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var se *StatusError
		if !errors.As(err, &se) || se.Code != http.StatusTooManyRequests {
			return nil, err
		}
	}
	return nil, lastErr
}

// complete issues one chat-completions request.
func (c *Client) complete(ctx context.Context, model string, messages []Message) (*Result, error) {
	payload := map[string]any{
		"model":    model,
		"messages": messages,
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completion: %w", err)
	}

	for _, choice := range completion.Choices {
		if choice.Message.Content != "" {
			return &Result{Model: model, Content: choice.Message.Content}, nil
		}
	}
	return nil, fmt.Errorf("model %s returned an empty completion", model)
}

// ListModels fetches the gateway's model catalog. Used by the reachability
// probe.
func (c *Client) ListModels(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/models", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var catalog struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &catalog); err != nil {
		return 0, fmt.Errorf("failed to unmarshal model catalog: %w", err)
	}
	return len(catalog.Data), nil
}

// candidates returns the configured model list with the preferred model moved
// to the front.
func (c *Client) candidates(preferred string) []string {
	if preferred == "" {
		return c.cfg.Models
	}
	out := []string{preferred}
	for _, m := range c.cfg.Models {
		if m != preferred {
			out = append(out, m)
		}
	}
	return out
}
