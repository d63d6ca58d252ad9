package api

import (
	"context"
)

// InvestigateRequest describes a failure investigation query.
type InvestigateRequest struct {
	// FlowRef is an exact flow id or a name/description to resolve.
	FlowRef string `json:"flow_ref"`

	// Window scopes the run search. A zero window means the most recent run.
	Window RunWindow `json:"window,omitempty"`

	// StepName optionally scopes the payload fetch to a named step,
	// e.g. a "Catch" step.
	StepName string `json:"step_name,omitempty"`

	// MaxHops bounds alert-chain following. Zero selects the configured
	// default hop limit.
	MaxHops int `json:"max_hops,omitempty"`
}

// LogSummary condenses the log entries of one run.
type LogSummary struct {
	// Levels is a histogram of log levels seen.
	Levels map[string]int `json:"levels"`

	// LogCount is the number of entries inspected.
	LogCount int `json:"log_count"`

	// Highlights carries the first and last error lines, or the final log
	// line when no error-level entry exists.
	Highlights []string `json:"highlights"`

	// Entries are the extracted entries, with verbose messages truncated.
	Entries []LogEntry `json:"entries"`
}

// InvestigationReport is the consolidated output of a failure investigation.
// It is assembled per query and never persisted.
type InvestigationReport struct {
	// ID identifies this report instance.
	ID string `json:"id"`

	// Flow is the resolved flow the investigation targeted.
	Flow FlowSummary `json:"flow"`

	// Run is the failed run located in the window; nil when the window held
	// no failure, which is a finding rather than an error.
	Run *RunSummary `json:"run,omitempty"`

	// Finding is a one-line statement of the investigation outcome.
	Finding string `json:"finding"`

	// Logs summarizes the run's log entries; nil when log fetch failed or
	// no run was found (recorded in Gaps).
	Logs *LogSummary `json:"logs,omitempty"`

	// Payloads carries evidentiary payloads fetched for the run.
	Payloads []Payload `json:"payloads,omitempty"`

	// Gaps marks evidence that could not be collected. Partial evidence is
	// always returned with the gap named, never silently dropped.
	Gaps []string `json:"gaps,omitempty"`

	// OriginChain holds reports for originating flows when the failed flow
	// is an alert/notification flow, ordered from the first hop outward.
	OriginChain []*InvestigationReport `json:"origin_chain,omitempty"`

	// ChainTruncated is set when alert-chain following hit the hop limit;
	// the partial chain is still returned.
	ChainTruncated bool `json:"chain_truncated,omitempty"`
}

// InvestigatorHandler is the interface for failure investigations.
type InvestigatorHandler interface {
	// Investigate resolves the flow reference, locates the relevant failed
	// run, gathers logs and payloads, follows alert-flow indirection, and
	// returns one consolidated report.
	//
	// Only resolution failure is request-fatal: a NotFoundError when no
	// flow matches the reference, an AmbiguousReferenceError when several
	// do. Any other sub-fetch failure degrades into a report gap.
	Investigate(ctx context.Context, req InvestigateRequest) (*InvestigationReport, error)
}
