package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"critical", SeverityCritical},
		{"Dangerously low", SeverityCritical},
		{"EMERGENCY", SeverityCritical},
		{"high", SeverityHigh},
		{"significantly elevated", SeverityHigh},
		{"moderate concern", SeverityMedium},
		{"slightly elevated", SeverityLow},
		{"low", SeverityLow},
		{"", SeverityInfo},
		{"unremarkable", SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSeverity(tt.in))
		})
	}
}
