package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Message roles as expected by chat-completion APIs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a chat-completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the interface for AI completion providers. Given an ordered
// conversation it returns the next assistant message.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// HTTPClient implements Client against an OpenAI-compatible
// chat-completions endpoint.
type HTTPClient struct {
	apiURL   string
	apiKey   string
	getModel func() string
	http     *http.Client
}

// NewHTTPClient creates a new completion client.
func NewHTTPClient(apiURL, apiKey, model string) *HTTPClient {
	if model == "" {
		model = "gpt-4o"
	}
	return NewHTTPClientWithModelGetter(apiURL, apiKey, func() string { return model })
}

// NewHTTPClientWithModelGetter creates a completion client whose model is
// resolved per request, so it can be changed at runtime.
func NewHTTPClientWithModelGetter(apiURL, apiKey string, getModel func() string) *HTTPClient {
	return &HTTPClient{
		apiURL:   apiURL,
		apiKey:   apiKey,
		getModel: getModel,
		http:     &http.Client{},
	}
}

// Complete implements Client. Failures are returned to the caller as-is;
// there is no retry.
func (c *HTTPClient) Complete(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]interface{}{
		"model":       c.getModel(),
		"messages":    messages,
		"temperature": 0.7,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
