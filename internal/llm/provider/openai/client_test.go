package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	if _, err := NewClient("", "gpt-4"); err == nil {
		t.Error("Expected error for empty API key")
	}

	client, err := NewClient("sk-test123", "")
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if client.model != DefaultModel {
		t.Errorf("Expected default model %s, got %s", DefaultModel, client.model)
	}
}

func TestSend(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test123" {
			t.Errorf("Expected bearer auth, got %q", r.Header.Get("Authorization"))
		}

		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != DefaultModel {
			t.Errorf("Expected model %s, got %v", DefaultModel, body["model"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"advice text"}}]}`))
	}))
	defer mock.Close()

	client, _ := NewClient("sk-test123", "")
	client.SetBaseURL(mock.URL)

	reply, err := client.Send(context.Background(), "system", "prompt", 500)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if reply.Content != "advice text" {
		t.Errorf("Unexpected content: %q", reply.Content)
	}
	if reply.Reasoning != "" {
		t.Errorf("OpenAI replies carry no reasoning trace, got %q", reply.Reasoning)
	}
}

func TestSendNoChoices(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer mock.Close()

	client, _ := NewClient("sk-test123", "")
	client.SetBaseURL(mock.URL)

	if _, err := client.Send(context.Background(), "s", "p", 100); err == nil {
		t.Fatal("Expected error for empty choices")
	}
}
