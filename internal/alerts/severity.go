package alerts

import "strings"

const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// severityKeywords maps free-text severity wording from the model onto the
// fixed vocabulary. Checked in order; first match wins, so "dangerously low"
// is critical, not low.
var severityKeywords = []struct {
	severity string
	keywords []string
}{
	{SeverityCritical, []string{"critical", "emergency", "dangerous"}},
	{SeverityHigh, []string{"high", "significantly"}},
	{SeverityMedium, []string{"medium", "moderate"}},
	{SeverityLow, []string{"low", "slight"}},
}

// NormalizeSeverity folds whatever the model wrote into the fixed severity
// vocabulary, defaulting to info.
func NormalizeSeverity(severity string) string {
	lowered := strings.ToLower(severity)
	for _, entry := range severityKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.severity
			}
		}
	}
	return SeverityInfo
}
