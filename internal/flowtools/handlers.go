package flowtools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"flowbridge/internal/api"
	"flowbridge/internal/flowdoc"
	"flowbridge/internal/investigate"
	"flowbridge/pkg/logging"
)

const (
	// defaultTriageLimit is how many failed runs a triage sweep summarizes
	// when the caller sets no limit.
	defaultTriageLimit = 20

	// maxTriageLimit caps a triage sweep regardless of the requested limit.
	maxTriageLimit = 200
)

// ExecuteTool executes a flow tool by name.
// This implements the api.ToolProvider interface for tool execution.
func (p *Provider) ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*api.CallToolResult, error) {
	logging.Debug("flowtools", "Executing tool %s", toolName)

	switch toolName {
	case "create_flow_from_prompt":
		return p.handleCreateFromPrompt(ctx, args)
	case "create_flow_from_document":
		return p.handleCreateFromDocument(ctx, args)
	case "validate_flow_document":
		return p.handleValidateDocument(ctx, args)
	case "investigate_failure":
		return p.handleInvestigateFailure(ctx, args)
	case "list_flows":
		return p.handleListFlows(ctx, args)
	case "get_flow_runs":
		return p.handleGetFlowRuns(ctx, args)
	case "get_flow_logs":
		return p.handleGetFlowLogs(ctx, args)
	case "triage_latest_failures":
		return p.handleTriageLatestFailures(ctx, args)
	case "get_payloads":
		return p.handleGetPayloads(ctx, args)
	case "start_flow":
		return p.handleStartFlow(ctx, args)
	default:
		return nil, fmt.Errorf("unknown flow tool: %s", toolName)
	}
}

// handleCreateFromPrompt handles the create_flow_from_prompt tool.
// The prompt is parsed into slots, the slots into a complete document, and
// the document is submitted unless dry_run is set. The created flow always
// starts disabled in Draft status.
func (p *Provider) handleCreateFromPrompt(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	prompt, ok := args["prompt"].(string)
	if !ok || strings.TrimSpace(prompt) == "" {
		return errorResult("prompt argument is required"), nil
	}

	builder, errResult := p.getBuilder()
	if errResult != nil {
		return errResult, nil
	}

	slots := builder.ParsePrompt(prompt)
	doc, err := builder.BuildFromSlots(slots)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to build flow document: %v", err)), nil
	}

	return p.finishCreate(ctx, args, doc, map[string]interface{}{"slots": slots})
}

// handleCreateFromDocument handles the create_flow_from_document tool.
func (p *Provider) handleCreateFromDocument(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	doc, errResult := documentArg(args)
	if errResult != nil {
		return errResult, nil
	}

	builder, errResult := p.getBuilder()
	if errResult != nil {
		return errResult, nil
	}

	completed, err := builder.BuildFromDocument(doc)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to complete flow document: %v", err)), nil
	}

	return p.finishCreate(ctx, args, completed, nil)
}

// finishCreate validates dry_run handling and optionally submits the built
// document to the platform.
func (p *Provider) finishCreate(ctx context.Context, args map[string]interface{}, doc *api.FlowDocument, extra map[string]interface{}) (*api.CallToolResult, error) {
	result := map[string]interface{}{
		"status":   api.StatusDraft,
		"document": doc,
	}
	for key, value := range extra {
		result[key] = value
	}

	if dryRun, _ := args["dry_run"].(bool); dryRun {
		result["dry_run"] = true
		return jsonResult(result)
	}

	platform, errResult := p.getPlatform()
	if errResult != nil {
		return errResult, nil
	}

	flowID, err := platform.CreateFlow(ctx, doc)
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Failed to create flow"), nil
	}

	logging.Info("flowtools", "Created flow %s (%s)", doc.Flow.Name, flowID)
	result["flow_id"] = flowID
	return jsonResult(result)
}

// handleValidateDocument handles the validate_flow_document tool. Every
// violation is reported together, never just the first.
func (p *Provider) handleValidateDocument(_ context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	doc, errResult := documentArg(args)
	if errResult != nil {
		return errResult, nil
	}

	builder, errResult := p.getBuilder()
	if errResult != nil {
		return errResult, nil
	}

	err := builder.ValidateDocument(doc)
	if err == nil {
		return jsonResult(map[string]interface{}{"valid": true, "violations": []interface{}{}})
	}

	var violations flowdoc.ValidationErrors
	if !errors.As(err, &violations) {
		return errorResult(fmt.Sprintf("Validation failed: %v", err)), nil
	}

	items := make([]map[string]interface{}, 0, len(violations))
	for _, violation := range violations {
		items = append(items, map[string]interface{}{
			"field":   violation.Field,
			"message": violation.Message,
		})
	}
	return jsonResult(map[string]interface{}{"valid": false, "violations": items})
}

// handleInvestigateFailure handles the investigate_failure tool.
func (p *Provider) handleInvestigateFailure(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	flowRef, ok := args["flow_ref"].(string)
	if !ok || strings.TrimSpace(flowRef) == "" {
		return errorResult("flow_ref argument is required"), nil
	}

	investigator, errResult := p.getInvestigator()
	if errResult != nil {
		return errResult, nil
	}

	req := api.InvestigateRequest{
		FlowRef:  flowRef,
		StepName: stringArg(args, "step_name"),
		MaxHops:  intArg(args, "max_hops"),
	}

	req.Window.StartedAfter, errResult = timeArg(args, "started_after")
	if errResult != nil {
		return errResult, nil
	}
	req.Window.StartedBefore, errResult = timeArg(args, "started_before")
	if errResult != nil {
		return errResult, nil
	}

	report, err := investigator.Investigate(ctx, req)
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Investigation failed"), nil
	}
	return jsonResult(report)
}

// handleListFlows handles the list_flows tool.
func (p *Provider) handleListFlows(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	platform, errResult := p.getPlatform()
	if errResult != nil {
		return errResult, nil
	}

	flows, err := platform.ListFlows(ctx, api.ListFlowsFilter{
		Name:    stringArg(args, "name"),
		Page:    intArg(args, "page"),
		PerPage: intArg(args, "per_page"),
	})
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Failed to list flows"), nil
	}
	return jsonResult(map[string]interface{}{"count": len(flows), "flows": flows})
}

// handleGetFlowRuns handles the get_flow_runs tool.
func (p *Provider) handleGetFlowRuns(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	flowID := stringArg(args, "flow_id")
	if flowID == "" {
		return errorResult("flow_id argument is required"), nil
	}

	platform, errResult := p.getPlatform()
	if errResult != nil {
		return errResult, nil
	}

	runs, err := platform.GetRuns(ctx, flowID, api.RunWindow{
		Status: api.RunStatus(intArg(args, "status")),
		Limit:  intArg(args, "limit"),
	})
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Failed to get runs"), nil
	}
	return jsonResult(map[string]interface{}{"count": len(runs), "runs": runs})
}

// handleGetFlowLogs handles the get_flow_logs tool. The result carries the
// run's log summary alongside the entries: level histogram, first and last
// error highlights, verbose messages truncated.
func (p *Provider) handleGetFlowLogs(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	runID := stringArg(args, "run_id")
	if runID == "" {
		return errorResult("run_id argument is required"), nil
	}

	platform, errResult := p.getPlatform()
	if errResult != nil {
		return errResult, nil
	}

	entries, err := platform.GetLogs(ctx, runID)
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Failed to get logs"), nil
	}

	summary := investigate.SummarizeLogs(entries)
	return jsonResult(map[string]interface{}{
		"run_id":     runID,
		"levels":     summary.Levels,
		"log_count":  summary.LogCount,
		"highlights": summary.Highlights,
		"logs":       summary.Entries,
	})
}

// handleTriageLatestFailures handles the triage_latest_failures tool: a
// platform-wide sweep of recent failed runs, each summarized from its logs.
// A run whose logs cannot be fetched stays in the list with the gap named.
func (p *Provider) handleTriageLatestFailures(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	platform, errResult := p.getPlatform()
	if errResult != nil {
		return errResult, nil
	}

	limit := intArg(args, "limit")
	if limit <= 0 {
		limit = defaultTriageLimit
	}
	if limit > maxTriageLimit {
		limit = maxTriageLimit
	}

	window := api.RunWindow{Status: api.RunFailure, Limit: limit}
	window.StartedAfter, errResult = timeArg(args, "started_after")
	if errResult != nil {
		return errResult, nil
	}

	runs, err := platform.GetRuns(ctx, "", window)
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Failed to list failed runs"), nil
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}

	names := flowNamesByID(ctx, platform)

	items := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		item := map[string]interface{}{
			"run_id":     run.ID,
			"flow_id":    run.FlowID,
			"status":     run.Status.String(),
			"started_at": run.StartedAt,
		}
		if !run.FinishedAt.IsZero() {
			item["finished_at"] = run.FinishedAt
		}
		if name := names[run.FlowID]; name != "" {
			item["flow_name"] = name
		}

		entries, err := platform.GetLogs(ctx, run.ID)
		if err != nil {
			item["gap"] = fmt.Sprintf("logs unavailable: %v", err)
		} else {
			item["summary"] = investigate.SummarizeLogs(entries)
		}
		items = append(items, item)
	}

	logging.Info("flowtools", "Triaged %d failed runs", len(items))
	return jsonResult(map[string]interface{}{"count": len(items), "failures": items})
}

// flowNamesByID best-effort resolves flow names for triage output. A listing
// failure yields an empty map; the runs are still triaged by id.
func flowNamesByID(ctx context.Context, platform api.PlatformHandler) map[string]string {
	flows, err := platform.ListFlows(ctx, api.ListFlowsFilter{})
	if err != nil {
		logging.Warn("flowtools", "Flow listing unavailable for triage naming: %v", err)
		return nil
	}
	names := make(map[string]string, len(flows))
	for _, flow := range flows {
		names[flow.ID] = flow.Name
	}
	return names
}

// handleGetPayloads handles the get_payloads tool. Textual payloads are
// returned inline; binary content is base64 encoded.
func (p *Provider) handleGetPayloads(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	runID := stringArg(args, "run_id")
	if runID == "" {
		return errorResult("run_id argument is required"), nil
	}

	platform, errResult := p.getPlatform()
	if errResult != nil {
		return errResult, nil
	}

	payloads, err := platform.GetPayloads(ctx, runID, stringArg(args, "step_name"))
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Failed to get payloads"), nil
	}

	items := make([]map[string]interface{}, 0, len(payloads))
	for _, payload := range payloads {
		item := map[string]interface{}{
			"id":           payload.ID,
			"step_name":    payload.StepName,
			"content_type": payload.ContentType,
		}
		if isTextual(payload.ContentType) {
			item["data"] = string(payload.Data)
		} else {
			item["data_base64"] = base64.StdEncoding.EncodeToString(payload.Data)
		}
		items = append(items, item)
	}
	return jsonResult(map[string]interface{}{"run_id": runID, "count": len(items), "payloads": items})
}

// handleStartFlow handles the start_flow tool.
func (p *Provider) handleStartFlow(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	flowID := stringArg(args, "flow_id")
	if flowID == "" {
		return errorResult("flow_id argument is required"), nil
	}

	platform, errResult := p.getPlatform()
	if errResult != nil {
		return errResult, nil
	}

	runID, err := platform.StartFlow(ctx, flowID)
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Failed to start flow"), nil
	}

	logging.Info("flowtools", "Started flow %s, run %s", flowID, runID)
	return jsonResult(map[string]interface{}{"flow_id": flowID, "run_id": runID})
}

// Handler lookups through the API layer's service locator.

func (p *Provider) getBuilder() (api.FlowBuilderHandler, *api.CallToolResult) {
	handler := api.GetFlowBuilder()
	if handler == nil {
		return nil, errorResult("Flow builder not available")
	}
	return handler, nil
}

func (p *Provider) getPlatform() (api.PlatformHandler, *api.CallToolResult) {
	handler := api.GetPlatform()
	if handler == nil {
		return nil, errorResult("Platform client not available")
	}
	return handler, nil
}

func (p *Provider) getInvestigator() (api.InvestigatorHandler, *api.CallToolResult) {
	handler := api.GetInvestigator()
	if handler == nil {
		return nil, errorResult("Investigator not available")
	}
	return handler, nil
}

// Argument extraction helpers. Tool arguments arrive as loosely typed JSON
// values; absent or mistyped optional arguments fall back to zero values.

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func timeArg(args map[string]interface{}, key string) (time.Time, *api.CallToolResult) {
	s := stringArg(args, key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errorResult(fmt.Sprintf("%s must be an RFC3339 timestamp: %v", key, err))
	}
	return t, nil
}

// documentArg decodes the document argument into a flow document.
func documentArg(args map[string]interface{}) (*api.FlowDocument, *api.CallToolResult) {
	raw, ok := args["document"].(map[string]interface{})
	if !ok {
		return nil, errorResult("document argument is required and must be an object")
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, errorResult(fmt.Sprintf("document argument is not encodable: %v", err))
	}

	var doc api.FlowDocument
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, errorResult(fmt.Sprintf("document argument does not match the flow document shape: %v", err))
	}
	return &doc, nil
}

// Result helpers.

func jsonResult(v interface{}) (*api.CallToolResult, error) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return textResult(string(encoded)), nil
}

func textResult(text string) *api.CallToolResult {
	return &api.CallToolResult{
		Content: []interface{}{text},
		IsError: false,
	}
}

func errorResult(message string) *api.CallToolResult {
	return &api.CallToolResult{
		Content: []interface{}{message},
		IsError: true,
	}
}

func isTextual(contentType string) bool {
	return strings.Contains(contentType, "json") ||
		strings.Contains(contentType, "text") ||
		strings.Contains(contentType, "xml") ||
		strings.Contains(contentType, "csv")
}
