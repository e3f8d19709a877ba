package ollama

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

// Package ollama provides the Ollama provider implementation for the
// reasoning backend adapter. Ollama serves an OpenAI-compatible chat
// completions endpoint on the user's own machine: no API key, no cost,
// but slower inference — hence the longer timeout.

const (
	DefaultBaseURL = "http://localhost:11434/v1"
	DefaultModel   = "llama3.1:8b"
	// Local inference is slow; give it a generous budget.
	DefaultTimeout = 120 * time.Second
)

// Client implements the backend contract for a local Ollama instance.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Ollama request/response structures (OpenAI-compatible)
type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewClient creates a new Ollama client. No credential is required.
func NewClient(baseURL, model string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if model == "" {
		model = DefaultModel
	}

	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}, nil
}

// Send sends a single prompt and returns the reply. Ollama provides no
// separate reasoning trace.
func (c *Client) Send(ctx context.Context, system, prompt string, maxTokens int) (*types.Reply, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []types.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		Stream:      false,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// No Authorization header — Ollama runs unauthenticated on localhost
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, string(responseBody))
	}

	var chat chatResponse
	if err := json.Unmarshal(responseBody, &chat); err != nil {
		return nil, fmt.Errorf("failed to parse Ollama response: %w", err)
	}

	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("no choices in Ollama response")
	}

	return &types.Reply{Content: chat.Choices[0].Message.Content}, nil
}

// Stream sends a single prompt with stream=true and returns a channel of
// answer tokens parsed from the SSE stream.
func (c *Client) Stream(ctx context.Context, system, prompt string, maxTokens int) (<-chan string, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []types.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		Stream:      true,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("streaming request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, string(responseBody))
	}

	tokens := make(chan string, 100)

	go func() {
		defer close(tokens)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}

			if len(chunk.Choices) == 0 {
				continue
			}

			if content := chunk.Choices[0].Delta.Content; content != "" {
				select {
				case tokens <- content:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return tokens, nil
}

// SetBaseURL overrides the Ollama base URL.  Used in tests.
func (c *Client) SetBaseURL(url string) { c.baseURL = url }
