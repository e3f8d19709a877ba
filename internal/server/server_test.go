package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nunoplanning/advisor/internal/audit"
)

const mockAdviceJSON = `{
  "root_cause_summary": "Capacity short on two days.",
  "critical_issues": ["Day 5 gap"],
  "relaxation_suggestions": [
    {
      "priority": 1,
      "constraint_to_relax": "Weekend work",
      "relaxation_strategy": "Allow Saturday shifts",
      "description": "desc",
      "expected_impact": "impact",
      "risk_level": "medium"
    }
  ],
  "long_term_recommendations": ["Hire"]
}`

// newMockLLM emulates an OpenAI-compatible chat completions endpoint,
// including the SSE stream variant.
func newMockLLM(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Stream bool `json:"stream"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"try \"}}]}\n\n"))
			w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"weekends\"}}]}\n\n"))
			w.Write([]byte("data: [DONE]\n\n"))
			return
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": mockAdviceJSON}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestAuditor(t *testing.T) audit.Logger {
	t.Helper()
	dir := t.TempDir()
	auditor, err := audit.NewLogger(&audit.Config{
		AuditLogPath: filepath.Join(dir, "audit.log"),
		AppLogPath:   filepath.Join(dir, "app.log"),
		MaxSize:      1,
		MaxBackups:   1,
		MaxAge:       1,
		LogLevel:     "debug",
	})
	if err != nil {
		t.Fatalf("audit.NewLogger() error: %v", err)
	}
	t.Cleanup(func() { _ = auditor.Close() })
	return auditor
}

// newTestServer builds a configured server backed by the mock LLM and
// returns it behind an httptest listener.
func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server) {
	t.Helper()

	srv, err := NewServer(cfg, newTestAuditor(t))
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	srv.running = true

	mux := http.NewServeMux()
	srv.registerHandlers(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { srv.cancel() })

	return srv, ts
}

func configuredConfig(llmURL string) *Config {
	return &Config{
		Host:           "127.0.0.1",
		Port:           0,
		AllowedOrigins: []string{"*"},
		LLMProvider:    "ollama",
		OllamaBaseURL:  llmURL,
	}
}

func TestHealthEndpoint(t *testing.T) {
	llm := newMockLLM(t)
	defer llm.Close()
	_, ts := newTestServer(t, configuredConfig(llm.URL))

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "healthy" {
		t.Errorf("Unexpected status %v", body["status"])
	}
	if body["llm_configured"] != true {
		t.Error("Expected llm_configured true")
	}
}

func TestRootEndpoint(t *testing.T) {
	llm := newMockLLM(t)
	defer llm.Close()
	_, ts := newTestServer(t, configuredConfig(llm.URL))

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["service"] != "Nuno Planning Advisor" {
		t.Errorf("Unexpected service name %v", body["service"])
	}
	if body["llm_provider"] != "ollama" {
		t.Errorf("Unexpected provider %v", body["llm_provider"])
	}
}

func TestDegradedWithoutCredential(t *testing.T) {
	cfg := &Config{
		Host:           "127.0.0.1",
		AllowedOrigins: []string{"*"},
		LLMProvider:    "deepseek", // hosted, no key configured
	}
	srv, ts := newTestServer(t, cfg)

	if srv.IsConfigured() {
		t.Fatal("Server should be degraded without a credential")
	}

	resp, _ := http.Get(ts.URL + "/health")
	var health map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health["llm_configured"] != false {
		t.Error("Health should report llm_configured false")
	}

	resp, _ = http.Get(ts.URL + "/ready")
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from /ready, got %d", resp.StatusCode)
	}

	resp, _ = http.Post(ts.URL+"/api/v1/analyze-planning", "application/json", strings.NewReader(`{"planning_id":1}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from analyze, got %d", resp.StatusCode)
	}
}

func TestAnalyzePlanningRoundTrip(t *testing.T) {
	llm := newMockLLM(t)
	defer llm.Close()
	_, ts := newTestServer(t, configuredConfig(llm.URL))

	report := `{
		"planning_id": 42,
		"month": 3,
		"year": 2025,
		"failure_message": "INFEASIBLE",
		"time_limit_seconds": 300,
		"strategies_attempted": ["default"],
		"total_employees": 10,
		"intern_count": 1,
		"min_daily_coverage": 3,
		"daily_diagnostics": [
			{"day":1,"weekday":"Monday","required_coverage":3,"available_employees":2,
			 "intern_school_count":0,"holiday_requests":0,"effective_capacity":2,
			 "capacity_gap":1,"is_weekend":false}
		]
	}`

	resp, err := http.Post(ts.URL+"/api/v1/analyze-planning", "application/json", strings.NewReader(report))
	if err != nil {
		t.Fatalf("POST analyze-planning: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decoding response: %v", err)
	}

	if body.PlanningID != 42 {
		t.Errorf("Expected planning_id 42, got %d", body.PlanningID)
	}
	if body.AnalysisTimestamp == "" {
		t.Error("Expected analysis_timestamp")
	}
	if body.RootCauseSummary != "Capacity short on two days." {
		t.Errorf("Unexpected root cause %q", body.RootCauseSummary)
	}
	if len(body.RelaxationSuggestions) != 1 {
		t.Fatalf("Expected 1 suggestion, got %d", len(body.RelaxationSuggestions))
	}
	if body.RelaxationSuggestions[0].ConstraintToRelax != "Weekend work" {
		t.Errorf("Unexpected suggestion %+v", body.RelaxationSuggestions[0])
	}
}

func TestAnalyzePlanningBadBody(t *testing.T) {
	llm := newMockLLM(t)
	defer llm.Close()
	_, ts := newTestServer(t, configuredConfig(llm.URL))

	resp, err := http.Post(ts.URL+"/api/v1/analyze-planning", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST analyze-planning: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestQuickAdviceEndpoint(t *testing.T) {
	llm := newMockLLM(t)
	defer llm.Close()
	_, ts := newTestServer(t, configuredConfig(llm.URL))

	resp, err := http.Post(ts.URL+"/api/v1/quick-advice", "application/json",
		strings.NewReader(`{"failure_message":"INFEASIBLE","strategies_attempted":["default"]}`))
	if err != nil {
		t.Fatalf("POST quick-advice: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body QuickAdviceResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Advice == "" {
		t.Error("Expected advice text")
	}
	if body.Timestamp == "" {
		t.Error("Expected timestamp")
	}
}

func TestSupportedProvidersEndpoint(t *testing.T) {
	llm := newMockLLM(t)
	defer llm.Close()
	_, ts := newTestServer(t, configuredConfig(llm.URL))

	resp, err := http.Get(ts.URL + "/api/v1/supported-providers")
	if err != nil {
		t.Fatalf("GET supported-providers: %v", err)
	}
	defer resp.Body.Close()

	var body ProvidersResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Providers) != 4 {
		t.Errorf("Expected 4 providers, got %d", len(body.Providers))
	}
}

func TestAPIKeyGate(t *testing.T) {
	llm := newMockLLM(t)
	defer llm.Close()

	cfg := configuredConfig(llm.URL)
	cfg.APIKey = "secret"
	_, ts := newTestServer(t, cfg)

	resp, _ := http.Get(ts.URL + "/api/v1/supported-providers")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/supported-providers", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with key: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with key, got %d", resp.StatusCode)
	}

	// Probes stay open.
	resp, _ = http.Get(ts.URL + "/health")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health probe should bypass the gate, got %d", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	llm := newMockLLM(t)
	defer llm.Close()
	_, ts := newTestServer(t, configuredConfig(llm.URL))

	resp, _ := http.Get(ts.URL + "/api/v1/analyze-planning")
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}
