package advisor

import (
	"encoding/json"
	"strings"

	"github.com/nunoplanning/advisor/internal/models"
)

// Outcome says how a backend reply was turned into advice.
type Outcome int

const (
	// OutcomeParsed means the reply carried the structured JSON contract.
	OutcomeParsed Outcome = iota

	// OutcomeFallback means no parseable JSON was found and the advice
	// carries the raw reply instead. Never an error: an unparseable
	// reply is still advice.
	OutcomeFallback
)

// fallbackStrategyLimit bounds how much raw content lands in the
// placeholder suggestion.
const fallbackStrategyLimit = 500

// Normalize turns a raw backend reply into structured advice. It looks
// for the widest JSON object span in the content (first "{" to last
// "}") and decodes it; anything else degrades to raw-content advice.
func Normalize(content, reasoning string) (*models.AdviceResult, Outcome) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")

	if start >= 0 && end > start {
		var advice models.AdviceResult
		if err := json.Unmarshal([]byte(content[start:end+1]), &advice); err == nil {
			// A separate reasoning channel wins over a trace the model
			// embedded in the JSON; an empty one must not clobber it.
			if reasoning != "" {
				advice.ReasoningTrace = reasoning
			}
			return &advice, OutcomeParsed
		}
	}

	return fallback(content, reasoning), OutcomeFallback
}

// fallback wraps an unparseable reply in the fixed placeholder shape so
// callers always receive a complete AdviceResult.
func fallback(content, reasoning string) *models.AdviceResult {
	strategy := content
	if runes := []rune(strategy); len(runes) > fallbackStrategyLimit {
		strategy = string(runes[:fallbackStrategyLimit])
	}

	return &models.AdviceResult{
		RootCauseSummary: "Unable to parse structured response. See raw content below.",
		CriticalIssues: []string{
			"LLM response could not be parsed into structured format",
		},
		RelaxationSuggestions: []models.RelaxationSuggestion{
			{
				Priority:           1,
				ConstraintToRelax:  "Unknown",
				RelaxationStrategy: strategy,
				Description:        "Raw LLM response",
				ExpectedImpact:     "Unknown",
				RiskLevel:          "unknown",
			},
		},
		LongTermRecommendations: []string{},
		ReasoningTrace:          reasoning,
		RawContent:              content,
	}
}
