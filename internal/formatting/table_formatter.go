// Package formatting renders platform data as tables for the CLI.
package formatting

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"flowbridge/internal/api"
)

// TableFormatter renders flow and run listings as styled tables.
type TableFormatter struct {
	out io.Writer
}

// NewTableFormatter creates a table formatter writing to stdout.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{out: os.Stdout}
}

// NewTableFormatterTo creates a table formatter writing to the given writer.
func NewTableFormatterTo(out io.Writer) *TableFormatter {
	return &TableFormatter{out: out}
}

// FormatFlows renders a flow listing.
func (f *TableFormatter) FormatFlows(flows []api.FlowSummary) {
	if len(flows) == 0 {
		fmt.Fprintf(f.out, "%s\n", text.FgYellow.Sprint("No flows found"))
		return
	}

	t := f.createTable()
	t.AppendHeader(table.Row{"ID", "NAME", "ENABLED", "UPDATED", "DESCRIPTION"})
	for _, flow := range flows {
		t.AppendRow(table.Row{
			flow.ID,
			flow.Name,
			enabledMarker(flow.IsEnabled),
			timestamp(flow.UpdatedAt),
			truncate(flow.Description, 60),
		})
	}
	t.Render()
}

// FormatRuns renders a run listing.
func (f *TableFormatter) FormatRuns(runs []api.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintf(f.out, "%s\n", text.FgYellow.Sprint("No runs found"))
		return
	}

	t := f.createTable()
	t.AppendHeader(table.Row{"RUN", "STATUS", "STARTED", "FINISHED"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			statusMarker(run.Status),
			timestamp(run.StartedAt),
			timestamp(run.FinishedAt),
		})
	}
	t.Render()
}

func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	return t
}

func enabledMarker(enabled bool) string {
	if enabled {
		return text.FgGreen.Sprint("yes")
	}
	return text.FgHiBlack.Sprint("no")
}

func statusMarker(status api.RunStatus) string {
	switch status {
	case api.RunSuccess:
		return text.FgGreen.Sprint(status.String())
	case api.RunFailure:
		return text.FgRed.Sprint(status.String())
	case api.RunPartialSuccess, api.RunStopped:
		return text.FgYellow.Sprint(status.String())
	default:
		return status.String()
	}
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
