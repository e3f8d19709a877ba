package advisor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nunoplanning/advisor/internal/audit"
	"github.com/nunoplanning/advisor/internal/llm/adapter"
	"github.com/nunoplanning/advisor/internal/metrics"
	"github.com/nunoplanning/advisor/internal/models"
	"github.com/nunoplanning/advisor/internal/prompt"
)

// Token budgets per path. The analysis path expects multiple detailed
// suggestions; quick advice is a couple of sentences.
const (
	analysisTokenBudget    = 4096
	quickAdviceTokenBudget = 500
)

// Service orchestrates one analysis: compile the prompt, call the
// reasoning backend, normalize the reply. It holds no state between
// calls and never persists reports or results.
type Service struct {
	backend adapter.Backend
	auditor audit.Logger
}

// NewService creates a new advisor service.
func NewService(backend adapter.Backend, auditor audit.Logger) *Service {
	return &Service{
		backend: backend,
		auditor: auditor,
	}
}

// IsConfigured reports whether a usable reasoning backend is attached.
// Backend construction already rejects hosted providers without a
// credential, so a backend with a provider and model is a configured one.
func (s *Service) IsConfigured() bool {
	return s != nil && s.backend != nil && s.backend.Provider() != "" && s.backend.Model() != ""
}

// Analyze runs the full analysis pipeline for a failed optimizer run.
// Backend failures propagate to the caller; unparseable replies do not,
// they degrade to raw-content advice.
func (s *Service) Analyze(ctx context.Context, report *models.DiagnosticReport) (*models.AdviceResult, error) {
	start := time.Now()
	provider := string(s.backend.Provider())

	_ = s.auditor.LogAnalysisStarted(ctx, report.PlanningID, provider, s.backend.Model())

	compiled := prompt.BuildAnalysisPrompt(report)

	reply, err := s.backend.Send(ctx, prompt.SystemPrompt, compiled, analysisTokenBudget)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		_ = s.auditor.LogAnalysisFailed(ctx, report.PlanningID, err)
		return nil, err
	}

	advice, outcome := Normalize(reply.Content, reply.Reasoning)

	duration := time.Since(start)
	metrics.AnalysisDuration.WithLabelValues(provider).Observe(duration.Seconds())

	switch outcome {
	case OutcomeFallback:
		metrics.AnalysesTotal.WithLabelValues("fallback").Inc()
		metrics.FallbackParsesTotal.Inc()
		_ = s.auditor.LogAnalysisFallback(ctx, report.PlanningID, duration)
		s.auditor.App().Warn("backend reply degraded to raw-content advice",
			zap.Int("planning_id", report.PlanningID),
			zap.String("provider", provider),
		)
	default:
		metrics.AnalysesTotal.WithLabelValues("success").Inc()
		_ = s.auditor.LogAnalysisCompleted(ctx, report.PlanningID, len(advice.RelaxationSuggestions), duration)
	}

	return advice, nil
}

// QuickAdvice returns free-form guidance for a failure message without
// full diagnostics. The reply is returned as-is, no normalization.
func (s *Service) QuickAdvice(ctx context.Context, failureMessage string, strategiesAttempted []string) (string, error) {
	start := time.Now()

	compiled := prompt.BuildQuickPrompt(failureMessage, strategiesAttempted)

	reply, err := s.backend.Send(ctx, prompt.SystemPrompt, compiled, quickAdviceTokenBudget)
	if err != nil {
		metrics.QuickAdviceTotal.WithLabelValues("error").Inc()
		_ = s.auditor.LogQuickAdviceFailed(ctx, err)
		return "", err
	}

	metrics.QuickAdviceTotal.WithLabelValues("success").Inc()
	_ = s.auditor.LogQuickAdviceCompleted(ctx, time.Since(start))

	if reply.Content == "" {
		return "No advice available", nil
	}
	return reply.Content, nil
}

// QuickAdviceStream is the streaming variant of QuickAdvice: tokens are
// delivered on the returned channel as the backend produces them.
func (s *Service) QuickAdviceStream(ctx context.Context, failureMessage string, strategiesAttempted []string) (<-chan string, error) {
	compiled := prompt.BuildQuickPrompt(failureMessage, strategiesAttempted)

	tokens, err := s.backend.Stream(ctx, prompt.SystemPrompt, compiled, quickAdviceTokenBudget)
	if err != nil {
		metrics.QuickAdviceTotal.WithLabelValues("error").Inc()
		_ = s.auditor.LogQuickAdviceFailed(ctx, err)
		return nil, err
	}

	metrics.QuickAdviceTotal.WithLabelValues("success").Inc()
	return tokens, nil
}

// Provider reports which backend the service talks to.
func (s *Service) Provider() adapter.ProviderType {
	return s.backend.Provider()
}

// Model reports the effective backend model.
func (s *Service) Model() string {
	return s.backend.Model()
}
