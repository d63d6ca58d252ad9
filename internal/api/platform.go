package api

import (
	"context"
	"time"
)

// RunStatus is the platform's run outcome code.
type RunStatus int

const (
	RunStarted        RunStatus = 1
	RunSuccess        RunStatus = 2
	RunFailure        RunStatus = 3
	RunStopped        RunStatus = 4
	RunPartialSuccess RunStatus = 5
)

// String makes RunStatus satisfy the fmt.Stringer interface.
func (s RunStatus) String() string {
	switch s {
	case RunStarted:
		return "started"
	case RunSuccess:
		return "success"
	case RunFailure:
		return "failure"
	case RunStopped:
		return "stopped"
	case RunPartialSuccess:
		return "partial_success"
	default:
		return "unknown"
	}
}

// ListFlowsFilter narrows a flow listing.
type ListFlowsFilter struct {
	Name    string `json:"name,omitempty"`
	Page    int    `json:"page,omitempty"`
	PerPage int    `json:"per_page,omitempty"`
}

// RunWindow scopes a run query. Zero time values mean unbounded; a zero
// Status means any status.
type RunWindow struct {
	StartedAfter  time.Time `json:"started_after,omitempty"`
	StartedBefore time.Time `json:"started_before,omitempty"`
	Status        RunStatus `json:"status,omitempty"`
	Limit         int       `json:"limit,omitempty"`
}

// FlowSummary identifies one flow on the platform.
type FlowSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsEnabled   bool      `json:"is_enabled"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// RunSummary identifies one run of a flow.
type RunSummary struct {
	ID            string    `json:"id"`
	FlowID        string    `json:"flow_id"`
	FlowVersionID string    `json:"flow_version_id,omitempty"`
	Status        RunStatus `json:"status"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at,omitempty"`
}

// LogEntry is one log line of a run.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	StepID    string    `json:"step_id,omitempty"`
	StepName  string    `json:"step_name,omitempty"`
	PayloadID string    `json:"payload_id,omitempty"`
}

// Payload is a data capture associated with a run, typically at a catch or
// connector step.
type Payload struct {
	ID          string `json:"id"`
	StepName    string `json:"step_name,omitempty"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// PlatformHandler is the capability interface consumed from the platform
// client. Every call may fail with a TransportError; callers must degrade
// gracefully.
type PlatformHandler interface {
	// ListFlows returns flow summaries matching the filter.
	ListFlows(ctx context.Context, filter ListFlowsFilter) ([]FlowSummary, error)

	// CreateFlow submits an import document and returns the new flow id.
	// Not idempotent: repeated identical calls create distinct flows.
	CreateFlow(ctx context.Context, doc *FlowDocument) (string, error)

	// GetRuns returns runs within the window, most recent first. An empty
	// flowID queries runs across all flows.
	GetRuns(ctx context.Context, flowID string, window RunWindow) ([]RunSummary, error)

	// GetLogs returns the log entries of a run.
	GetLogs(ctx context.Context, runID string) ([]LogEntry, error)

	// GetPayloads returns payloads captured during a run, optionally scoped
	// to a named step. An empty stepName means all steps.
	GetPayloads(ctx context.Context, runID string, stepName string) ([]Payload, error)

	// StartFlow triggers a run and returns the run id.
	StartFlow(ctx context.Context, flowID string) (string, error)
}
