package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		apiKey    string
		model     string
		wantError bool
	}{
		{
			name:      "Valid configuration",
			apiKey:    "sk-test123",
			model:     "deepseek-chat",
			wantError: false,
		},
		{
			name:      "Empty API key",
			apiKey:    "",
			model:     "deepseek-chat",
			wantError: true,
		},
		{
			name:      "Default model",
			apiKey:    "sk-test123",
			model:     "",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.apiKey, tt.model)

			if tt.wantError && err == nil {
				t.Errorf("NewClient() expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("NewClient() unexpected error: %v", err)
			}
			if !tt.wantError && tt.model == "" && client.model != DefaultModel {
				t.Errorf("Expected default model %s, got %s", DefaultModel, client.model)
			}
		})
	}
}

func TestSendEnvelope(t *testing.T) {
	var captured struct {
		auth string
		body map[string]interface{}
	}

	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&captured.body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}","reasoning_content":"thinking..."}}]}`))
	}))
	defer mock.Close()

	client, err := NewClient("sk-test123", "")
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	client.SetBaseURL(mock.URL)

	reply, err := client.Send(context.Background(), "system text", "user text", 4096)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if captured.auth != "Bearer sk-test123" {
		t.Errorf("Expected bearer auth, got %q", captured.auth)
	}
	if captured.body["model"] != DefaultModel {
		t.Errorf("Expected model %s, got %v", DefaultModel, captured.body["model"])
	}
	if captured.body["temperature"] != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", captured.body["temperature"])
	}
	if captured.body["max_tokens"] != float64(4096) {
		t.Errorf("Expected max_tokens 4096, got %v", captured.body["max_tokens"])
	}

	messages, ok := captured.body["messages"].([]interface{})
	if !ok || len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %v", captured.body["messages"])
	}
	first := messages[0].(map[string]interface{})
	if first["role"] != "system" || first["content"] != "system text" {
		t.Errorf("First message should be the system prompt, got %v", first)
	}

	if reply.Content != `{"ok":true}` {
		t.Errorf("Unexpected content: %q", reply.Content)
	}
	if reply.Reasoning != "thinking..." {
		t.Errorf("Reasoning trace not extracted: %q", reply.Reasoning)
	}
}

func TestSendAPIError(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer mock.Close()

	client, _ := NewClient("sk-bad", "")
	client.SetBaseURL(mock.URL)

	_, err := client.Send(context.Background(), "s", "p", 100)
	if err == nil {
		t.Fatal("Expected error for non-200 status")
	}
}

func TestSendContextTimeout(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer mock.Close()

	client, _ := NewClient("sk-test123", "")
	client.SetBaseURL(mock.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Send(ctx, "s", "p", 100)
	if err == nil {
		t.Fatal("Expected error when context deadline passes")
	}
}

func TestStream(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"relax \"}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"weekends\"}}]}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer mock.Close()

	client, _ := NewClient("sk-test123", "")
	client.SetBaseURL(mock.URL)

	tokens, err := client.Stream(context.Background(), "s", "p", 100)
	if err != nil {
		t.Fatalf("Stream() error: %v", err)
	}

	var got string
	for tok := range tokens {
		got += tok
	}
	if got != "relax weekends" {
		t.Errorf("Unexpected streamed content: %q", got)
	}
}
