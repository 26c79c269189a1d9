// Package llm is a client for an OpenAI-compatible chat completion endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"insights-backend/application/ports"
	pkgerrors "insights-backend/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 2
	defaultBurst   = 1
	maxErrorBody   = 2048
)

// Config configures the completion client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RequestsPerSecond bounds outgoing requests; zero uses the default
	RequestsPerSecond float64
}

// Client sends single chat completion requests. Retries are left to the
// caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a completion client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), defaultBurst),
		logger:  logger,
	}
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete implements ports.CompletionClient
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, pkgerrors.NewNetworkError("completion rate limiter", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.NewNetworkError("completion request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.NewNetworkError("failed to read completion response", err)
	}

	c.logger.Debug("Completion response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, pkgerrors.NewExternalError("completion", fmt.Errorf("malformed response: %w", err)).
			WithDetails(map[string]interface{}{"status": resp.StatusCode})
	}

	out := &ports.CompletionResponse{
		Metadata: map[string]interface{}{
			"id":      decoded.ID,
			"model":   decoded.Model,
			"created": decoded.Created,
		},
	}
	if len(decoded.Choices) > 0 {
		out.Text = strings.TrimSpace(decoded.Choices[0].Message.Content)
		out.Metadata["finish_reason"] = decoded.Choices[0].FinishReason
	}
	if decoded.Usage != nil {
		out.Metadata["usage"] = map[string]interface{}{
			"prompt_tokens":     decoded.Usage.PromptTokens,
			"completion_tokens": decoded.Usage.CompletionTokens,
			"total_tokens":      decoded.Usage.TotalTokens,
		}
	}
	return out, nil
}

func statusError(status int, body []byte) *pkgerrors.AppError {
	message := strings.TrimSpace(string(body))
	var apiErr chatError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}
	if len(message) > maxErrorBody {
		message = message[:maxErrorBody]
	}
	return pkgerrors.NewExternalError("completion", fmt.Errorf("status %d: %s", status, message)).
		WithDetails(map[string]interface{}{"status": status})
}
