package model

// Severity grades a single finding; the overall risk of a change set
// uses the same scale.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank returns a numeric rank for ordering (higher is more severe)
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known severity values
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Finding is one discrete piece of review feedback
type Finding struct {
	Severity Severity `json:"severity"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

// ReviewResult is the structured output of one analysis call. It is
// consumed once to render a PR comment and never persisted.
type ReviewResult struct {
	Summary         string    `json:"review_summary"`
	Findings        []Finding `json:"findings"`
	Risk            Severity  `json:"severity"`
	RequiresChanges bool      `json:"requires_changes"`
	Strengths       []string  `json:"strengths,omitempty"`
	Risks           []string  `json:"risks,omitempty"`
}
