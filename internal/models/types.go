package models

// Package models defines the core data types used throughout the advisor:
// the diagnostic report received from a failed optimizer run, and the
// structured advice produced from the reasoning backend's reply.

// EmployeeInfo carries one employee's contract context for diagnostics.
type EmployeeInfo struct {
	ID                   int     `json:"id"`
	Abbreviation         string  `json:"abbreviation"`
	ContractHoursPerWeek float64 `json:"contract_hours_per_week"`
	ContractHoursPerDay  float64 `json:"contract_hours_per_day"`
	IsIntern             bool    `json:"is_intern"`
	SchoolDays           []int   `json:"school_days,omitempty"` // Days with school (1-31)
}

// DayDiagnostic is the per-day capacity picture computed by the optimizer.
type DayDiagnostic struct {
	Day                int    `json:"day"`
	Weekday            string `json:"weekday"`
	RequiredCoverage   int    `json:"required_coverage"`
	AvailableEmployees int    `json:"available_employees"`
	InternSchoolCount  int    `json:"intern_school_count"`
	HolidayRequests    int    `json:"holiday_requests"`
	EffectiveCapacity  int    `json:"effective_capacity"`
	CapacityGap        int    `json:"capacity_gap"`
	IsWeekend          bool   `json:"is_weekend"`
	IsHoliday          bool   `json:"is_holiday"`
}

// ConstraintViolation is a violation the optimizer detected before giving up.
type ConstraintViolation struct {
	ConstraintType    string `json:"constraint_type"`
	Severity          string `json:"severity"` // 'critical', 'high', 'medium', 'low'
	Description       string `json:"description"`
	AffectedEmployees []int  `json:"affected_employees,omitempty"`
	AffectedDays      []int  `json:"affected_days,omitempty"`
}

// DiagnosticReport is the full diagnostic payload from a failed optimizer run.
type DiagnosticReport struct {
	PlanningID int `json:"planning_id"`
	Month      int `json:"month"`
	Year       int `json:"year"`

	// Optimizer failure info
	FailureMessage      string   `json:"failure_message"`
	TimeLimitSeconds    int      `json:"time_limit_seconds"`
	StrategiesAttempted []string `json:"strategies_attempted"`

	// Employee context
	Employees      []EmployeeInfo `json:"employees"`
	TotalEmployees int            `json:"total_employees"`
	InternCount    int            `json:"intern_count"`

	// Daily diagnostics
	DailyDiagnostics []DayDiagnostic `json:"daily_diagnostics"`

	// Coverage requirements
	MinDailyCoverage int  `json:"min_daily_coverage"`
	MaxDailyCoverage *int `json:"max_daily_coverage,omitempty"`

	// Constraint violations (if detected)
	ConstraintViolations []ConstraintViolation `json:"constraint_violations,omitempty"`

	// Manual/fixed shifts
	ManualShiftCount int `json:"manual_shift_count"`

	// Additional context
	Notes string `json:"notes,omitempty"`
}

// CriticalDays returns the days with a positive capacity gap, in report order.
func (r *DiagnosticReport) CriticalDays() []DayDiagnostic {
	var critical []DayDiagnostic
	for _, d := range r.DailyDiagnostics {
		if d.CapacityGap > 0 {
			critical = append(critical, d)
		}
	}
	return critical
}

// WeekendDays returns the weekend entries of the daily diagnostics.
func (r *DiagnosticReport) WeekendDays() []DayDiagnostic {
	var weekend []DayDiagnostic
	for _, d := range r.DailyDiagnostics {
		if d.IsWeekend {
			weekend = append(weekend, d)
		}
	}
	return weekend
}

// RelaxationSuggestion is one rung of the suggested relaxation ladder.
type RelaxationSuggestion struct {
	Priority           int    `json:"priority"` // 1=highest, lower numbers = try first
	ConstraintToRelax  string `json:"constraint_to_relax"`
	RelaxationStrategy string `json:"relaxation_strategy"`
	Description        string `json:"description"`
	ExpectedImpact     string `json:"expected_impact"`
	ImplementationCode string `json:"implementation_code,omitempty"`
	RiskLevel          string `json:"risk_level"` // 'low', 'medium', 'high'
}

// CapacityAnalysis classifies the failure as a staffing shortfall, a
// constraint interaction, or both.
type CapacityAnalysis struct {
	Classification string   `json:"classification"` // 'understaffing', 'overconstraint', 'both'
	GapPercentage  *float64 `json:"gap_percentage,omitempty"`
}

// AdviceResult is the structured advice distilled from a backend reply.
type AdviceResult struct {
	RootCauseSummary        string                 `json:"root_cause_summary"`
	CapacityAnalysis        *CapacityAnalysis      `json:"capacity_analysis,omitempty"`
	CriticalIssues          []string               `json:"critical_issues"`
	RelaxationSuggestions   []RelaxationSuggestion `json:"relaxation_suggestions"`
	LongTermRecommendations []string               `json:"long_term_recommendations"`
	ReasoningTrace          string                 `json:"reasoning_trace,omitempty"`
	RawContent              string                 `json:"raw_content,omitempty"`
}
