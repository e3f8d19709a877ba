package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nunoplanning/advisor/internal/llm/types"
)

// Package anthropic provides the Anthropic provider implementation for the
// reasoning backend adapter. The Anthropic API differs from the
// OpenAI-compatible providers in every envelope detail: auth is an
// `x-api-key` header plus an `anthropic-version` header, the endpoint is
// /messages, the system prompt is a top-level field rather than a message,
// and the response carries a list of typed content blocks.

const (
	DefaultBaseURL    = "https://api.anthropic.com/v1"
	DefaultModel      = "claude-3-opus-20240229"
	DefaultAPIVersion = "2023-06-01"
	DefaultTimeout    = 60 * time.Second
)

// Client implements the backend contract for the Anthropic API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// anthMessage represents an Anthropic API message
type anthMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// contentBlock is one typed block in an Anthropic response
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []anthMessage `json:"messages"`
	System      string        `json:"system,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type anthResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
}

// SSE event shape from the Anthropic streaming API
type sseEvent struct {
	Type  string    `json:"type"`
	Delta *sseDelta `json:"delta,omitempty"`
}

type sseDelta struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NewClient creates a new Anthropic client.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	if model == "" {
		model = DefaultModel
	}

	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}, nil
}

// Send sends a single prompt and returns the concatenated text blocks of
// the reply. Anthropic exposes no separate reasoning channel here.
func (c *Client) Send(ctx context.Context, system, prompt string, maxTokens int) (*types.Reply, error) {
	req := anthRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthMessage{
			{Role: "user", Content: prompt},
		},
		System:      system,
		Temperature: 0.7,
	}

	resp, err := c.makeRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &types.Reply{Content: text}, nil
}

// Stream sends a single prompt with stream=true and returns a channel of
// answer tokens parsed from the Anthropic SSE stream.
func (c *Client) Stream(ctx context.Context, system, prompt string, maxTokens int) (<-chan string, error) {
	req := anthRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthMessage{
			{Role: "user", Content: prompt},
		},
		System:      system,
		Temperature: 0.7,
		Stream:      true,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", DefaultAPIVersion)

	// Use a client without timeout for streaming (rely on context cancellation)
	streamClient := &http.Client{}
	httpResp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("streaming request failed: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, fmt.Errorf("Anthropic API error (status %d): %s", httpResp.StatusCode, string(body))
	}

	tokens := make(chan string, 100)

	go func() {
		defer close(tokens)
		defer httpResp.Body.Close()

		scanner := bufio.NewScanner(httpResp.Body)
		var eventType string

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := scanner.Text()

			if strings.HasPrefix(line, "event: ") {
				eventType = strings.TrimPrefix(line, "event: ")
				continue
			}

			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")

			var event sseEvent
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				continue
			}

			switch eventType {
			case "content_block_delta":
				if event.Delta != nil && event.Delta.Type == "text_delta" && event.Delta.Text != "" {
					select {
					case tokens <- event.Delta.Text:
					case <-ctx.Done():
						return
					}
				}
			case "message_stop":
				return
			}
		}
	}()

	return tokens, nil
}

// makeRequest makes a non-streaming HTTP request to the Anthropic API
func (c *Client) makeRequest(ctx context.Context, req anthRequest) (*anthResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", DefaultAPIVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Anthropic API error (status %d): %s", httpResp.StatusCode, string(body))
	}

	var resp anthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &resp, nil
}

// SetBaseURL overrides the Anthropic API base URL.  Used in tests.
func (c *Client) SetBaseURL(url string) { c.baseURL = url }
