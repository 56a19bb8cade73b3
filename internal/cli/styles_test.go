package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatters(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), "✓ done")
	assert.Contains(t, FormatError("bad"), "✗ bad")
	assert.Contains(t, FormatTitle("Dashboard"), "Dashboard")
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		status model.Status
		want   string
	}{
		{"failed", "FAILED"},
		{"Success", "SUCCESS"},
		{model.StatusPending, "PENDING"},
		{"reversed", "REVERSED"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Contains(t, FormatStatus(tt.status), tt.want)
		})
	}
}

func TestFormatConfidence(t *testing.T) {
	assert.Contains(t, FormatConfidence(model.Diagnosis{ConfidenceScore: 0.8}), "80% (High)")
	assert.Contains(t, FormatConfidence(model.Diagnosis{ConfidenceScore: 0.6}), "60% (Medium)")
	assert.Contains(t, FormatConfidence(model.Diagnosis{ConfidenceScore: 0.1}), "10% (Low)")
}

func TestRenderKeyValues(t *testing.T) {
	out := RenderKeyValues([][2]string{{"ID", "TXN1"}, {"Amount", "₹1.00"}})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "TXN1")
	assert.Contains(t, lines[1], "₹1.00")
}

func TestNewProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 3, "Exporting")
	for i := 0; i < 3; i++ {
		require.NoError(t, bar.Add(1))
	}
	assert.True(t, bar.IsFinished())
	assert.Contains(t, out.String(), "Exporting")
}
