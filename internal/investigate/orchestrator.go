package investigate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"flowbridge/internal/api"
	"flowbridge/pkg/logging"

	"github.com/google/uuid"
)

const (
	// DefaultMaxHops bounds alert-chain following. Three hops cover every
	// alert topology seen in practice while guaranteeing termination on
	// cyclic graphs.
	DefaultMaxHops = 3

	// maxLogEntries caps how many log lines one run summary inspects.
	maxLogEntries = 50

	// maxMessageLength truncates verbose log messages in summaries.
	maxMessageLength = 500
)

// Orchestrator runs failure investigations against the platform. It
// implements api.InvestigatorHandler.
type Orchestrator struct {
	platform api.PlatformHandler
	detector AlertFlowDetector
	maxHops  int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDetector replaces the default alert-flow detection policy.
func WithDetector(d AlertFlowDetector) Option {
	return func(o *Orchestrator) {
		o.detector = d
	}
}

// WithMaxHops overrides the default alert-chain hop limit.
func WithMaxHops(n int) Option {
	return func(o *Orchestrator) {
		o.maxHops = n
	}
}

// NewOrchestrator creates an investigation orchestrator over the given
// platform handler.
func NewOrchestrator(platform api.PlatformHandler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		platform: platform,
		detector: DefaultAlertFlowDetector,
		maxHops:  DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Investigate resolves the flow reference and runs the bounded pipeline.
// Resolution failure is the only fatal outcome; any later sub-fetch
// failure becomes a gap in the returned report.
func (o *Orchestrator) Investigate(ctx context.Context, req api.InvestigateRequest) (*api.InvestigationReport, error) {
	if strings.TrimSpace(req.FlowRef) == "" {
		return nil, api.NewFlowNotFoundError("(empty reference)")
	}

	flow, err := o.resolveFlow(ctx, req.FlowRef)
	if err != nil {
		return nil, err
	}

	maxHops := req.MaxHops
	if maxHops <= 0 {
		maxHops = o.maxHops
	}

	logging.Info("Investigate", "Investigating flow %s (%s), hop limit %d", flow.Name, flow.ID, maxHops)
	return o.investigateFlow(ctx, flow, req.Window, req.StepName, maxHops), nil
}

// resolveFlow maps a reference to exactly one flow. A numeric reference is
// taken as a flow id directly. Anything else is matched against the flow
// listing: exact name first, then case-insensitive name, then substring
// over name and description. Several equally good matches yield an
// AmbiguousReferenceError rather than a guess.
func (o *Orchestrator) resolveFlow(ctx context.Context, ref string) (api.FlowSummary, error) {
	ref = strings.TrimSpace(ref)

	if isNumericID(ref) {
		flow, err := o.flowByID(ctx, ref)
		if err != nil {
			return api.FlowSummary{}, err
		}
		return flow, nil
	}

	flows, err := o.platform.ListFlows(ctx, api.ListFlowsFilter{})
	if err != nil {
		return api.FlowSummary{}, err
	}

	for _, tier := range []func(api.FlowSummary) bool{
		func(f api.FlowSummary) bool { return f.Name == ref },
		func(f api.FlowSummary) bool { return strings.EqualFold(f.Name, ref) },
		func(f api.FlowSummary) bool {
			needle := strings.ToLower(ref)
			return strings.Contains(strings.ToLower(f.Name), needle) ||
				strings.Contains(strings.ToLower(f.Description), needle)
		},
	} {
		var matches []api.FlowSummary
		for _, flow := range flows {
			if tier(flow) {
				matches = append(matches, flow)
			}
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return api.FlowSummary{}, &api.AmbiguousReferenceError{Reference: ref, Candidates: matches}
		}
	}

	return api.FlowSummary{}, api.NewFlowNotFoundError(ref)
}

// flowByID enriches a bare flow id with the listing entry when one exists.
// An id absent from the listing is still investigated as-is; the platform
// is the authority on whether its runs exist.
func (o *Orchestrator) flowByID(ctx context.Context, id string) (api.FlowSummary, error) {
	flows, err := o.platform.ListFlows(ctx, api.ListFlowsFilter{})
	if err != nil {
		logging.Warn("Investigate", "Flow listing unavailable, proceeding with bare id %s: %v", id, err)
		return api.FlowSummary{ID: id}, nil
	}
	for _, flow := range flows {
		if flow.ID == id {
			return flow, nil
		}
	}
	return api.FlowSummary{ID: id}, nil
}

// investigateFlow runs pipeline steps 2 through 5 for one flow and recurses
// along the alert chain with a decremented hop budget.
func (o *Orchestrator) investigateFlow(ctx context.Context, flow api.FlowSummary, window api.RunWindow, stepName string, hopsLeft int) *api.InvestigationReport {
	report := &api.InvestigationReport{
		ID:   uuid.NewString(),
		Flow: flow,
	}

	if window.Status == 0 {
		window.Status = api.RunFailure
	}

	runs, err := o.platform.GetRuns(ctx, flow.ID, window)
	if err != nil {
		report.Finding = "run history could not be determined"
		report.Gaps = append(report.Gaps, fmt.Sprintf("runs unavailable: %v", err))
		return report
	}
	if len(runs) == 0 {
		// Absence of failure is valid information, not an error.
		report.Finding = "no failures found in the requested window"
		return report
	}

	run := runs[0]
	report.Run = &run
	report.Finding = fmt.Sprintf("run %s ended with status %s at %s",
		run.ID, run.Status, run.StartedAt.UTC().Format(time.RFC3339))

	entries, err := o.platform.GetLogs(ctx, run.ID)
	if err != nil {
		report.Gaps = append(report.Gaps, fmt.Sprintf("logs unavailable: %v", err))
	} else {
		report.Logs = SummarizeLogs(entries)
	}

	payloads, err := o.platform.GetPayloads(ctx, run.ID, stepName)
	if err != nil {
		report.Gaps = append(report.Gaps, fmt.Sprintf("payloads unavailable: %v", err))
	} else {
		report.Payloads = payloads
	}

	if !o.detector(flow) {
		return report
	}

	originRef := originReference(report.Payloads)
	if originRef == "" {
		report.Gaps = append(report.Gaps, "originating flow could not be identified from catch-route payloads")
		return report
	}

	if hopsLeft <= 0 {
		report.ChainTruncated = true
		report.Gaps = append(report.Gaps, fmt.Sprintf("alert chain truncated at hop limit before reaching flow %q", originRef))
		return report
	}

	origin, err := o.resolveFlow(ctx, originRef)
	if err != nil {
		report.Gaps = append(report.Gaps, fmt.Sprintf("originating flow %q could not be resolved: %v", originRef, err))
		return report
	}

	logging.Debug("Investigate", "Following alert chain from %s to %s, %d hops left", flow.ID, origin.ID, hopsLeft-1)
	child := o.investigateFlow(ctx, origin, window, stepName, hopsLeft-1)

	// Flatten the chain so the top-level report lists hops outward in order.
	report.OriginChain = append([]*api.InvestigationReport{child}, child.OriginChain...)
	child.OriginChain = nil
	if child.ChainTruncated {
		report.ChainTruncated = true
	}
	return report
}

// originKeys are the payload fields that may carry the originating flow's
// identity, in preference order.
var originKeys = []string{"origin_flow_id", "flow_id", "origin_flow", "flow_name", "flow"}

// originReference extracts the originating flow's id or name from the
// catch-route payloads of an alert run.
func originReference(payloads []api.Payload) string {
	for _, payload := range payloads {
		if !strings.Contains(payload.ContentType, "json") {
			continue
		}
		var fields map[string]interface{}
		if err := json.Unmarshal(payload.Data, &fields); err != nil {
			continue
		}
		for _, key := range originKeys {
			switch v := fields[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case float64:
				return fmt.Sprintf("%.0f", v)
			}
		}
	}
	return ""
}

// SummarizeLogs condenses run log entries into a level histogram, first and
// last error highlights and a truncated entry list. Level matching is
// case-insensitive; entries from any PlatformHandler are summarized alike.
func SummarizeLogs(entries []api.LogEntry) *api.LogSummary {
	if len(entries) > maxLogEntries {
		entries = entries[:maxLogEntries]
	}

	summary := &api.LogSummary{
		Levels:   make(map[string]int),
		LogCount: len(entries),
	}

	var firstError, lastError *api.LogEntry
	for i := range entries {
		entries[i].Message = truncateMessage(entries[i].Message)

		entry := &entries[i]
		if entry.Level != "" {
			summary.Levels[entry.Level]++
		}
		if isErrorLevel(entry.Level) && entry.Message != "" {
			if firstError == nil {
				firstError = entry
			}
			lastError = entry
		}
	}
	summary.Entries = entries

	if firstError != nil {
		summary.Highlights = append(summary.Highlights,
			fmt.Sprintf("First error: [%s] %s", firstError.Level, firstError.Message))
	}
	if lastError != nil && lastError != firstError {
		summary.Highlights = append(summary.Highlights,
			fmt.Sprintf("Last error: [%s] %s", lastError.Level, lastError.Message))
	}
	if len(summary.Highlights) == 0 && len(entries) > 0 {
		tail := entries[len(entries)-1]
		summary.Highlights = append(summary.Highlights,
			fmt.Sprintf("Last log line: [%s] %s", tail.Level, tail.Message))
	}
	return summary
}

func isErrorLevel(level string) bool {
	return strings.EqualFold(level, "error") || strings.EqualFold(level, "fatal")
}

func truncateMessage(message string) string {
	if len(message) <= maxMessageLength {
		return message
	}
	return message[:maxMessageLength] + "... (truncated)"
}

func isNumericID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
