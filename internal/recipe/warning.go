package recipe

// WarningType classifies a Warning.
type WarningType string

const (
	WarningDirty       WarningType = "dirty"
	WarningBlackUsage  WarningType = "black_usage"
	WarningUnreachable WarningType = "unreachable"
	WarningOther       WarningType = "other"
)

// Severity ranks how much a Warning degrades the result.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Warning is a problem detected in a recipe or in its search.
type Warning struct {
	Type     WarningType `json:"type"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}
