package investigate

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"flowbridge/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPlatform is an in-memory api.PlatformHandler for orchestrator tests.
type stubPlatform struct {
	flows    []api.FlowSummary
	runs     map[string][]api.RunSummary
	logs     map[string][]api.LogEntry
	payloads map[string][]api.Payload

	listErr     error
	runsErr     error
	logsErr     error
	payloadsErr error
}

func (s *stubPlatform) ListFlows(ctx context.Context, filter api.ListFlowsFilter) ([]api.FlowSummary, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.flows, nil
}

func (s *stubPlatform) CreateFlow(ctx context.Context, doc *api.FlowDocument) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (s *stubPlatform) GetRuns(ctx context.Context, flowID string, window api.RunWindow) ([]api.RunSummary, error) {
	if s.runsErr != nil {
		return nil, s.runsErr
	}
	return s.runs[flowID], nil
}

func (s *stubPlatform) GetLogs(ctx context.Context, runID string) ([]api.LogEntry, error) {
	if s.logsErr != nil {
		return nil, s.logsErr
	}
	return s.logs[runID], nil
}

func (s *stubPlatform) GetPayloads(ctx context.Context, runID string, stepName string) ([]api.Payload, error) {
	if s.payloadsErr != nil {
		return nil, s.payloadsErr
	}
	return s.payloads[runID], nil
}

func (s *stubPlatform) StartFlow(ctx context.Context, flowID string) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func failedRun(id, flowID string, startedAt time.Time) api.RunSummary {
	return api.RunSummary{
		ID:        id,
		FlowID:    flowID,
		Status:    api.RunFailure,
		StartedAt: startedAt,
	}
}

func TestOrchestrator_ResolveFlow(t *testing.T) {
	platform := &stubPlatform{
		flows: []api.FlowSummary{
			{ID: "1", Name: "Order Sync"},
			{ID: "2", Name: "Order Export"},
			{ID: "3", Name: "Inventory Sync", Description: "stock levels"},
		},
	}
	orchestrator := NewOrchestrator(platform)

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr func(error) bool
	}{
		{"numeric id short-circuits", "3", "3", nil},
		{"exact name", "Order Sync", "1", nil},
		{"case-insensitive name", "order export", "2", nil},
		{"substring over description", "stock", "3", nil},
		{"ambiguous substring", "order", "", api.IsAmbiguousReference},
		{"no match", "billing", "", api.IsNotFound},
		{"empty reference", "  ", "", api.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: tt.ref})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Flow.ID)
		})
	}
}

func TestOrchestrator_AmbiguousReferenceCarriesCandidates(t *testing.T) {
	platform := &stubPlatform{
		flows: []api.FlowSummary{
			{ID: "1", Name: "Order Sync"},
			{ID: "2", Name: "Order Export"},
		},
	}
	orchestrator := NewOrchestrator(platform)

	_, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: "order"})
	require.Error(t, err)

	var ambiguous *api.AmbiguousReferenceError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Candidates, 2)
	assert.Contains(t, err.Error(), "Order Sync")
}

func TestOrchestrator_NoFailuresIsAFinding(t *testing.T) {
	platform := &stubPlatform{
		flows: []api.FlowSummary{{ID: "1", Name: "Order Sync"}},
		runs:  map[string][]api.RunSummary{},
	}
	orchestrator := NewOrchestrator(platform)

	report, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: "Order Sync"})
	require.NoError(t, err)
	assert.Nil(t, report.Run)
	assert.Equal(t, "no failures found in the requested window", report.Finding)
	assert.Empty(t, report.Gaps)
}

func TestOrchestrator_FullEvidence(t *testing.T) {
	started := time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)
	platform := &stubPlatform{
		flows: []api.FlowSummary{{ID: "1", Name: "Order Sync"}},
		runs: map[string][]api.RunSummary{
			"1": {failedRun("900", "1", started)},
		},
		logs: map[string][]api.LogEntry{
			"900": {
				{ID: "1", Level: "info", Message: "run started"},
				{ID: "2", Level: "error", Message: "connector refused connection"},
				{ID: "3", Level: "error", Message: "retry failed"},
			},
		},
		payloads: map[string][]api.Payload{
			"900": {{ID: "p-7", ContentType: "application/json", Data: []byte(`{"order_id":123}`)}},
		},
	}
	orchestrator := NewOrchestrator(platform)

	report, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: "Order Sync"})
	require.NoError(t, err)

	require.NotNil(t, report.Run)
	assert.Equal(t, "900", report.Run.ID)
	assert.Contains(t, report.Finding, "status failure")

	require.NotNil(t, report.Logs)
	assert.Equal(t, 3, report.Logs.LogCount)
	assert.Equal(t, map[string]int{"info": 1, "error": 2}, report.Logs.Levels)
	require.Len(t, report.Logs.Highlights, 2)
	assert.Equal(t, "First error: [error] connector refused connection", report.Logs.Highlights[0])
	assert.Equal(t, "Last error: [error] retry failed", report.Logs.Highlights[1])

	require.Len(t, report.Payloads, 1)
	assert.Empty(t, report.Gaps)
	assert.Empty(t, report.OriginChain)
}

func TestOrchestrator_PayloadFailureDegradesToGap(t *testing.T) {
	platform := &stubPlatform{
		flows: []api.FlowSummary{{ID: "1", Name: "Order Sync"}},
		runs: map[string][]api.RunSummary{
			"1": {failedRun("900", "1", time.Now())},
		},
		logs: map[string][]api.LogEntry{
			"900": {{ID: "1", Level: "error", Message: "boom"}},
		},
		payloadsErr: &api.TransportError{Op: "get_payloads", Target: "900", StatusCode: 502},
	}
	orchestrator := NewOrchestrator(platform)

	report, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: "Order Sync"})
	require.NoError(t, err)

	require.NotNil(t, report.Logs)
	assert.Empty(t, report.Payloads)
	require.Len(t, report.Gaps, 1)
	assert.Contains(t, report.Gaps[0], "payloads unavailable")
}

func TestOrchestrator_LogFailureDegradesToGap(t *testing.T) {
	platform := &stubPlatform{
		flows: []api.FlowSummary{{ID: "1", Name: "Order Sync"}},
		runs: map[string][]api.RunSummary{
			"1": {failedRun("900", "1", time.Now())},
		},
		logsErr: &api.TransportError{Op: "get_logs", Target: "900", StatusCode: 500},
	}
	orchestrator := NewOrchestrator(platform)

	report, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: "Order Sync"})
	require.NoError(t, err)

	assert.Nil(t, report.Logs)
	require.NotEmpty(t, report.Gaps)
	assert.Contains(t, report.Gaps[0], "logs unavailable")
}

func TestOrchestrator_RunHistoryFailure(t *testing.T) {
	platform := &stubPlatform{
		flows:   []api.FlowSummary{{ID: "1", Name: "Order Sync"}},
		runsErr: &api.TransportError{Op: "get_runs", Target: "1", StatusCode: 504},
	}
	orchestrator := NewOrchestrator(platform)

	report, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: "Order Sync"})
	require.NoError(t, err)
	assert.Equal(t, "run history could not be determined", report.Finding)
	require.Len(t, report.Gaps, 1)
	assert.Contains(t, report.Gaps[0], "runs unavailable")
}

func TestOrchestrator_FollowsAlertChainToOrigin(t *testing.T) {
	started := time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)
	platform := &stubPlatform{
		flows: []api.FlowSummary{
			{ID: "1", Name: "Failure alert"},
			{ID: "2", Name: "Order Sync"},
		},
		runs: map[string][]api.RunSummary{
			"1": {failedRun("900", "1", started)},
			"2": {failedRun("800", "2", started.Add(-time.Minute))},
		},
		payloads: map[string][]api.Payload{
			"900": {{ID: "p-1", StepName: "Catch", ContentType: "application/json", Data: []byte(`{"flow_id":"2"}`)}},
			"800": {{ID: "p-2", ContentType: "application/json", Data: []byte(`{"order_id":5}`)}},
		},
	}
	orchestrator := NewOrchestrator(platform)

	report, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: "Failure alert"})
	require.NoError(t, err)

	assert.False(t, report.ChainTruncated)
	require.Len(t, report.OriginChain, 1)
	origin := report.OriginChain[0]
	assert.Equal(t, "2", origin.Flow.ID)
	require.NotNil(t, origin.Run)
	assert.Equal(t, "800", origin.Run.ID)
}

func TestOrchestrator_CyclicAlertChainTerminates(t *testing.T) {
	started := time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)
	platform := &stubPlatform{
		flows: []api.FlowSummary{
			{ID: "1", Name: "Order alert"},
			{ID: "2", Name: "Inventory alert"},
		},
		runs: map[string][]api.RunSummary{
			"1": {failedRun("900", "1", started)},
			"2": {failedRun("901", "2", started)},
		},
		payloads: map[string][]api.Payload{
			"900": {{ID: "p-1", ContentType: "application/json", Data: []byte(`{"flow_id":"2"}`)}},
			"901": {{ID: "p-2", ContentType: "application/json", Data: []byte(`{"flow_id":"1"}`)}},
		},
	}
	orchestrator := NewOrchestrator(platform)

	report, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: "Order alert"})
	require.NoError(t, err)

	assert.True(t, report.ChainTruncated)
	assert.Len(t, report.OriginChain, DefaultMaxHops)

	last := report.OriginChain[len(report.OriginChain)-1]
	require.NotEmpty(t, last.Gaps)
	assert.Contains(t, strings.Join(last.Gaps, "; "), "hop limit")
}

func TestOrchestrator_CustomDetectorAndHopBound(t *testing.T) {
	started := time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)
	platform := &stubPlatform{
		flows: []api.FlowSummary{
			{ID: "1", Name: "Watchdog"},
			{ID: "2", Name: "Order Sync"},
		},
		runs: map[string][]api.RunSummary{
			"1": {failedRun("900", "1", started)},
			"2": {failedRun("800", "2", started)},
		},
		payloads: map[string][]api.Payload{
			"900": {{ID: "p-1", ContentType: "application/json", Data: []byte(`{"flow_id":"2"}`)}},
		},
	}

	detector := func(flow api.FlowSummary) bool { return flow.Name == "Watchdog" }
	orchestrator := NewOrchestrator(platform, WithDetector(detector), WithMaxHops(1))

	report, err := orchestrator.Investigate(context.Background(), api.InvestigateRequest{FlowRef: "Watchdog"})
	require.NoError(t, err)
	require.Len(t, report.OriginChain, 1)
	assert.Equal(t, "2", report.OriginChain[0].Flow.ID)
	assert.False(t, report.ChainTruncated)
}

func TestDefaultAlertFlowDetector(t *testing.T) {
	assert.True(t, DefaultAlertFlowDetector(api.FlowSummary{Name: "Order failure alert"}))
	assert.True(t, DefaultAlertFlowDetector(api.FlowSummary{Name: "Ops", Description: "notification fan-out"}))
	assert.False(t, DefaultAlertFlowDetector(api.FlowSummary{Name: "Order Sync"}))
}

func TestSummarizeLogs_TruncatesVerboseMessages(t *testing.T) {
	long := strings.Repeat("x", maxMessageLength+100)
	summary := SummarizeLogs([]api.LogEntry{{ID: "1", Level: "error", Message: long}})

	require.Len(t, summary.Entries, 1)
	assert.Len(t, summary.Entries[0].Message, maxMessageLength+len("... (truncated)"))
	assert.Contains(t, summary.Entries[0].Message, "(truncated)")
}

func TestSummarizeLogs_LevelsAreCaseInsensitive(t *testing.T) {
	summary := SummarizeLogs([]api.LogEntry{
		{ID: "1", Level: "INFO", Message: "starting"},
		{ID: "2", Level: "ERROR", Message: "connector refused connection"},
		{ID: "3", Level: "Fatal", Message: "giving up"},
	})

	assert.Equal(t, map[string]int{"INFO": 1, "ERROR": 1, "Fatal": 1}, summary.Levels)
	require.Len(t, summary.Highlights, 2)
	assert.Equal(t, "First error: [ERROR] connector refused connection", summary.Highlights[0])
	assert.Equal(t, "Last error: [Fatal] giving up", summary.Highlights[1])
}
