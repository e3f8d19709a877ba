package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nunoplanning/advisor/internal/models"
)

// SystemPrompt frames every backend call. Kept identical across
// providers so replies stay comparable.
const SystemPrompt = "You are an expert in constraint programming and optimization."

// maxCriticalDayRows bounds how many critical days the prompt lists.
const maxCriticalDayRows = 10

// BuildAnalysisPrompt compiles a diagnostic report into the analysis
// request sent to the reasoning backend. The same report always yields
// the same prompt.
func BuildAnalysisPrompt(report *models.DiagnosticReport) string {
	criticalDays := report.CriticalDays()
	weekendDays := report.WeekendDays()

	if len(criticalDays) > maxCriticalDayRows {
		criticalDays = criticalDays[:maxCriticalDayRows]
	}

	maxCoverage := "None"
	if report.MaxDailyCoverage != nil {
		maxCoverage = fmt.Sprintf("%d", *report.MaxDailyCoverage)
	}

	return fmt.Sprintf(`You are an expert in constraint programming and shift scheduling optimization using Google OR-Tools CP-SAT solver.

# CONTEXT: Failed Planning Optimization

## Planning Details
- Month: %d/%d
- Planning ID: %d
- Time Limit: %ds
- Failure Message: "%s"

## Strategies Already Attempted
%s

## Employee Pool
- Total Employees: %d
- Interns: %d
- Manual Shifts Already Set: %d

## Coverage Requirements
- Minimum Daily Coverage: %d
- Maximum Daily Coverage: %s

## Daily Capacity Analysis
Total days in month: %d
Critical days (capacity gap > 0): %d
Weekend days: %d

### Most Critical Days:
%s

## Detected Constraint Violations
%s

# Constraint Relaxation Policy (Luxembourg Labor Law)
%s

# YOUR TASK

Analyze this failed optimization and provide:

1. **Root Cause Analysis**: What is the fundamental reason this optimization is INFEASIBLE? Classify it as understaffing, overconstraint, or both, with a gap percentage if you can estimate one.

2. **Critical Issues**: List 3-5 critical issues (capacity gaps, conflicting constraints, etc.)

3. **Relaxation Strategy Ladder**: Suggest 4-6 constraint relaxations in priority order (1=try first):
   - What constraint to relax
   - How to relax it
   - Expected impact
   - Risk level (low/medium/high)
   - Specific implementation guidance

4. **Long-term Recommendations**: Suggest 2-3 structural improvements to prevent future failures

# OUTPUT FORMAT

Respond with valid JSON:

{
  "root_cause_summary": "1-2 sentence summary of why this is INFEASIBLE",
  "capacity_analysis": {
    "classification": "understaffing|overconstraint|both",
    "gap_percentage": 12.5
  },
  "critical_issues": [
    "Issue 1 description",
    "Issue 2 description"
  ],
  "relaxation_suggestions": [
    {
      "priority": 1,
      "constraint_to_relax": "Name of constraint",
      "relaxation_strategy": "How to relax it",
      "description": "Detailed explanation",
      "expected_impact": "What this will achieve",
      "implementation_code": "Code snippet if applicable",
      "risk_level": "low|medium|high"
    }
  ],
  "long_term_recommendations": [
    "Recommendation 1",
    "Recommendation 2"
  ]
}

Think step by step. Consider the capacity gaps, constraint interactions, and Luxembourg labor law requirements.`,
		report.Month, report.Year,
		report.PlanningID,
		report.TimeLimitSeconds,
		report.FailureMessage,
		formatStrategies(report.StrategiesAttempted),
		report.TotalEmployees,
		report.InternCount,
		report.ManualShiftCount,
		report.MinDailyCoverage,
		maxCoverage,
		len(report.DailyDiagnostics),
		len(report.CriticalDays()),
		len(weekendDays),
		formatCriticalDays(criticalDays),
		formatViolations(report.ConstraintViolations),
		RenderLadder(Ladder()),
	)
}

// BuildQuickPrompt compiles the lightweight prompt for quick advice
// without full diagnostics.
func BuildQuickPrompt(failureMessage string, strategiesAttempted []string) string {
	return fmt.Sprintf(`You are an expert in constraint programming and shift scheduling optimization.

An optimization run failed with this message:
"%s"

Strategies already attempted:
%s

Provide 2-3 quick suggestions for what to try next. Be specific and actionable.`,
		failureMessage,
		formatStrategies(strategiesAttempted),
	)
}

func formatStrategies(strategies []string) string {
	if strategies == nil {
		strategies = []string{}
	}
	out, err := json.MarshalIndent(strategies, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}

func formatCriticalDays(days []models.DayDiagnostic) string {
	if len(days) == 0 {
		return "None"
	}

	lines := make([]string, 0, len(days))
	for _, d := range days {
		lines = append(lines, fmt.Sprintf(
			"Day %d (%s): Need %d, Available %d, GAP: %d",
			d.Day, d.Weekday, d.RequiredCoverage, d.EffectiveCapacity, d.CapacityGap,
		))
	}
	return strings.Join(lines, "\n")
}

func formatViolations(violations []models.ConstraintViolation) string {
	if len(violations) == 0 {
		return "None detected"
	}

	lines := make([]string, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, fmt.Sprintf(
			"- [%s] %s: %s",
			strings.ToUpper(v.Severity), v.ConstraintType, v.Description,
		))
	}
	return strings.Join(lines, "\n")
}
