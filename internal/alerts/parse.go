package alerts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnparsable marks a model reply that did not decode into an Analysis.
var ErrUnparsable = errors.New("analysis reply is not valid JSON")

// Analysis is the structured verdict expected back from the model.
type Analysis struct {
	HasAlerts bool             `json:"has_alerts"`
	Alerts    []AlertCandidate `json:"alerts"`
	Summary   string           `json:"summary"`
}

type AlertCandidate struct {
	MetricName string `json:"metric_name"`
	Severity   string `json:"severity"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Reason     string `json:"reason"`
}

// parseAnalysis decodes the model's reply. Models habitually wrap JSON in a
// markdown code fence, so that is stripped first. A reply that still does
// not decode is a parse failure, not a retryable condition.
func parseAnalysis(text string) (*Analysis, error) {
	cleaned := stripCodeFence(text)

	var analysis Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	return &analysis, nil
}

func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
