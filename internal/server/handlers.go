package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nunoplanning/advisor/internal/llm/adapter"
	"github.com/nunoplanning/advisor/internal/models"
)

// QuickAdviceRequest is the input for the quick advice path.
type QuickAdviceRequest struct {
	FailureMessage      string   `json:"failure_message"`
	StrategiesAttempted []string `json:"strategies_attempted"`
}

// QuickAdviceResponse carries the free-form advice text.
type QuickAdviceResponse struct {
	Advice    string `json:"advice"`
	Timestamp string `json:"timestamp"`
}

// AnalyzeResponse wraps the structured advice with response metadata.
type AnalyzeResponse struct {
	AnalysisTimestamp string `json:"analysis_timestamp"`
	PlanningID        int    `json:"planning_id"`
	*models.AdviceResult
}

// ProvidersResponse lists the known provider catalog.
type ProvidersResponse struct {
	Providers []adapter.ProviderInfo `json:"providers"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// handleRoot reports basic service information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	provider := s.config.LLMProvider
	model := s.config.LLMModel
	if s.service != nil {
		provider = string(s.service.Provider())
		model = s.service.Model()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":      "Nuno Planning Advisor",
		"status":       "running",
		"version":      Version,
		"llm_provider": provider,
		"llm_model":    model,
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"llm_configured": s.IsConfigured(),
	})
}

// handleReady handles readiness check requests
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	ready := s.running && s.service != nil
	s.mu.RUnlock()

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleAnalyzePlanning runs the full analysis pipeline for a failed
// optimizer run.
func (s *Server) handleAnalyzePlanning(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.service == nil {
		writeError(w, http.StatusServiceUnavailable, "LLM provider not configured")
		return
	}

	var report models.DiagnosticReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	advice, err := s.service.Analyze(r.Context(), &report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to analyze planning: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
		PlanningID:        report.PlanningID,
		AdviceResult:      advice,
	})
}

// handleQuickAdvice returns free-form guidance without full diagnostics.
func (s *Server) handleQuickAdvice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.service == nil {
		writeError(w, http.StatusServiceUnavailable, "LLM provider not configured")
		return
	}

	var req QuickAdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	advice, err := s.service.QuickAdvice(r.Context(), req.FailureMessage, req.StrategiesAttempted)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate advice: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, QuickAdviceResponse{
		Advice:    advice,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSupportedProviders serves the static provider directory.
func (s *Server) handleSupportedProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, ProvidersResponse{Providers: adapter.Catalog()})
}
