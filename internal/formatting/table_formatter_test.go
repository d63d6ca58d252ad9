package formatting

import (
	"bytes"
	"testing"
	"time"

	"flowbridge/internal/api"

	"github.com/stretchr/testify/assert"
)

func TestFormatFlows(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewTableFormatterTo(&buf)

	formatter.FormatFlows([]api.FlowSummary{
		{ID: "41", Name: "Order Sync", IsEnabled: true, UpdatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "42", Name: "Order Export"},
	})

	out := buf.String()
	assert.Contains(t, out, "Order Sync")
	assert.Contains(t, out, "2026-08-01 10:00:00")
	assert.Contains(t, out, "41")
}

func TestFormatFlows_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewTableFormatterTo(&buf)

	formatter.FormatFlows(nil)
	assert.Contains(t, buf.String(), "No flows found")
}

func TestFormatRuns(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewTableFormatterTo(&buf)

	formatter.FormatRuns([]api.RunSummary{
		{ID: "900", Status: api.RunFailure, StartedAt: time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)},
	})

	out := buf.String()
	assert.Contains(t, out, "900")
	assert.Contains(t, out, "failure")
}
