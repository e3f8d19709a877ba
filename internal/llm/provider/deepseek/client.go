package deepseek

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

// Package deepseek provides the DeepSeek provider implementation for the
// reasoning backend adapter.
//
// DeepSeek exposes an OpenAI-compatible chat completions API with one
// addition: reasoning models return a separate `reasoning_content` field
// carrying the chain-of-thought, which we surface as the reasoning trace.

const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-reasoner"
	DefaultTimeout = 60 * time.Second
)

// Client implements the backend contract for the DeepSeek API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// DeepSeek API structures (OpenAI-compatible)
type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role             string `json:"role"`
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content          string `json:"content,omitempty"`
			ReasoningContent string `json:"reasoning_content,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewClient creates a new DeepSeek client.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("DeepSeek API key is required")
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

// Send sends a single prompt and returns the reply with its reasoning trace.
func (c *Client) Send(ctx context.Context, system, prompt string, maxTokens int) (*types.Reply, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []types.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	}

	response, err := c.makeRequest(ctx, "/chat/completions", request)
	if err != nil {
		return nil, fmt.Errorf("DeepSeek API request failed: %w", err)
	}

	var chat chatResponse
	if err := json.Unmarshal(response, &chat); err != nil {
		return nil, fmt.Errorf("failed to parse DeepSeek response: %w", err)
	}

	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("no choices in DeepSeek response")
	}

	msg := chat.Choices[0].Message
	return &types.Reply{
		Content:   msg.Content,
		Reasoning: msg.ReasoningContent,
	}, nil
}

// Stream sends a single prompt with stream=true and returns a channel of
// answer tokens. Reasoning deltas are not forwarded; only final-answer
// content is streamed.
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
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	// No client timeout for streaming; rely on context cancellation
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("streaming request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("DeepSeek API error (status %d): %s", resp.StatusCode, string(responseBody))
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

// makeRequest makes a non-streaming HTTP request to the DeepSeek API
func (c *Client) makeRequest(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return nil, fmt.Errorf("DeepSeek API error (status %d): %s", resp.StatusCode, string(responseBody))
	}

	return responseBody, nil
}

// SetBaseURL overrides the DeepSeek API base URL.  Used in tests.
func (c *Client) SetBaseURL(url string) { c.baseURL = url }
