package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Error("Expected error for empty API key")
	}

	client, err := NewClient("sk-ant-test", "")
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if client.model != DefaultModel {
		t.Errorf("Expected default model %s, got %s", DefaultModel, client.model)
	}
}

func TestSendHeadersAndEnvelope(t *testing.T) {
	var captured struct {
		apiKey  string
		version string
		body    map[string]interface{}
	}

	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.apiKey = r.Header.Get("x-api-key")
		captured.version = r.Header.Get("anthropic-version")
		_ = json.NewDecoder(r.Body).Decode(&captured.body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}]}`))
	}))
	defer mock.Close()

	client, _ := NewClient("sk-ant-test", "")
	client.SetBaseURL(mock.URL)

	reply, err := client.Send(context.Background(), "system text", "user text", 1024)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if captured.apiKey != "sk-ant-test" {
		t.Errorf("Expected x-api-key header, got %q", captured.apiKey)
	}
	if captured.version != DefaultAPIVersion {
		t.Errorf("Expected anthropic-version %s, got %q", DefaultAPIVersion, captured.version)
	}

	// System prompt travels as a top-level field, not a message.
	if captured.body["system"] != "system text" {
		t.Errorf("Expected top-level system field, got %v", captured.body["system"])
	}
	messages, ok := captured.body["messages"].([]interface{})
	if !ok || len(messages) != 1 {
		t.Fatalf("Expected single user message, got %v", captured.body["messages"])
	}

	if reply.Content != "part one part two" {
		t.Errorf("Text blocks should concatenate, got %q", reply.Content)
	}
}

func TestSendAPIError(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"authentication_error"}}`, http.StatusUnauthorized)
	}))
	defer mock.Close()

	client, _ := NewClient("sk-ant-bad", "")
	client.SetBaseURL(mock.URL)

	if _, err := client.Send(context.Background(), "s", "p", 100); err == nil {
		t.Fatal("Expected error for non-200 status")
	}
}
