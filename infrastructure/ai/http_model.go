// Package ai implements model clients over HTTP. Every configured model id
// maps to one HTTPModelClient against a shared inference gateway.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	pkgerrors "pagecraft-backend/pkg/errors"
)

// maxResponseBytes caps how much of a model response is read
const maxResponseBytes = 4 << 20

// HTTPModelClient invokes one model through the inference gateway's
// completion endpoint
type HTTPModelClient struct {
	modelID    string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPModelClient creates a client for one model id. The per-call
// deadline comes from the caller's context, so the underlying http.Client
// carries no timeout of its own.
func NewHTTPModelClient(modelID, baseURL, apiKey string, logger *zap.Logger) *HTTPModelClient {
	return &HTTPModelClient{
		modelID:    modelID,
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// ID returns the model identifier
func (c *HTTPModelClient) ID() string {
	return c.modelID
}

type completionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Invoke sends the prompt to the gateway and returns the raw response text
func (c *HTTPModelClient) Invoke(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{Model: c.modelID, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", pkgerrors.NewTimeoutError("model " + c.modelID)
		}
		return "", pkgerrors.NewExternalError("model "+c.modelID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", pkgerrors.NewExternalError("model "+c.modelID, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", pkgerrors.NewExternalError("model "+c.modelID, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", pkgerrors.NewExternalError("model "+c.modelID, err)
	}
	if parsed.Error != "" {
		return "", pkgerrors.NewExternalError("model "+c.modelID, fmt.Errorf("%s", parsed.Error))
	}

	c.logger.Debug("Model call completed",
		zap.String("modelID", c.modelID),
		zap.Duration("latency", time.Since(started)),
	)
	return parsed.Text, nil
}
