package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"flowbridge/internal/api"
	"flowbridge/pkg/logging"
)

const (
	// DefaultTimeout bounds every platform request.
	DefaultTimeout = 20 * time.Second

	// defaultPerPage is the page size used when a filter does not set one.
	defaultPerPage = 50

	// maxErrorBody caps how much of a failed response body is quoted in
	// the returned error.
	maxErrorBody = 2000

	redactedToken = "***REDACTED***"
)

// Options configures a platform client.
type Options struct {
	// CoreURL is the base URL of the core API (reads and flow import).
	CoreURL string

	// StartURL is the base URL of the start API (run triggering). Optional;
	// StartFlow fails when unset.
	StartURL string

	// Token is the bearer token sent on every request.
	Token string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client talks to the workflow platform over HTTP. It implements
// api.PlatformHandler.
type Client struct {
	coreURL  string
	startURL string
	token    string
	http     *http.Client
}

// NewClient creates a platform client from the given options.
func NewClient(opts Options) (*Client, error) {
	if opts.CoreURL == "" {
		return nil, fmt.Errorf("platform core URL is required")
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("platform token is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		coreURL:  strings.TrimRight(opts.CoreURL, "/"),
		startURL: strings.TrimRight(opts.StartURL, "/"),
		token:    opts.Token,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// jsonAPI response envelopes. The platform wraps every resource in a
// data object carrying the id and an attributes map.

type resourceEnvelope struct {
	Data resource `json:"data"`
}

type listEnvelope struct {
	Data []resource `json:"data"`
}

type resource struct {
	ID         json.Number            `json:"id"`
	Attributes map[string]interface{} `json:"attributes"`
}

func (r resource) str(key string) string {
	s, _ := r.Attributes[key].(string)
	return s
}

func (r resource) boolean(key string) bool {
	b, _ := r.Attributes[key].(bool)
	return b
}

func (r resource) integer(key string) int {
	switch v := r.Attributes[key].(type) {
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

func (r resource) timestamp(key string) time.Time {
	s := r.str(key)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ListFlows returns flow summaries matching the filter.
func (c *Client) ListFlows(ctx context.Context, filter api.ListFlowsFilter) ([]api.FlowSummary, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(pageOr(filter.Page, 1)))
	params.Set("per_page", strconv.Itoa(pageOr(filter.PerPage, defaultPerPage)))
	if filter.Name != "" {
		params.Set("filter[name]", filter.Name)
	}

	var envelope listEnvelope
	if err := c.get(ctx, "list_flows", c.coreURL, "/flows", params, &envelope); err != nil {
		return nil, err
	}

	flows := make([]api.FlowSummary, 0, len(envelope.Data))
	for _, res := range envelope.Data {
		flows = append(flows, api.FlowSummary{
			ID:          res.ID.String(),
			Name:        res.str("name"),
			Description: res.str("description"),
			IsEnabled:   res.boolean("is_enabled"),
			UpdatedAt:   res.timestamp("updated_at"),
		})
	}
	return flows, nil
}

// CreateFlow submits an import document and returns the new flow id.
func (c *Client) CreateFlow(ctx context.Context, doc *api.FlowDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("flow document is required")
	}

	var envelope resourceEnvelope
	if err := c.post(ctx, "create_flow", c.coreURL, "/flows/import", doc, &envelope); err != nil {
		return "", err
	}
	return envelope.Data.ID.String(), nil
}

// GetRuns returns runs within the window, most recent first. An empty
// flowID leaves out the flow filter and queries runs across all flows.
func (c *Client) GetRuns(ctx context.Context, flowID string, window api.RunWindow) ([]api.RunSummary, error) {
	params := url.Values{}
	if flowID != "" {
		params.Set("filter[flow_id]", flowID)
	}
	params.Set("sort", "-started_at")
	params.Set("per_page", strconv.Itoa(pageOr(window.Limit, defaultPerPage)))
	if window.Status != 0 {
		params.Set("filter[status]", strconv.Itoa(int(window.Status)))
	}
	if !window.StartedAfter.IsZero() {
		params.Set("filter[started_after]", window.StartedAfter.UTC().Format(time.RFC3339))
	}
	if !window.StartedBefore.IsZero() {
		params.Set("filter[started_before]", window.StartedBefore.UTC().Format(time.RFC3339))
	}

	var envelope listEnvelope
	if err := c.get(ctx, "get_runs", c.coreURL, "/flow-runs", params, &envelope); err != nil {
		return nil, err
	}

	runs := make([]api.RunSummary, 0, len(envelope.Data))
	for _, res := range envelope.Data {
		runs = append(runs, api.RunSummary{
			ID:            res.ID.String(),
			FlowID:        runFlowID(res, flowID),
			FlowVersionID: res.str("flow_version_id"),
			Status:        api.RunStatus(res.integer("status")),
			StartedAt:     res.timestamp("started_at"),
			FinishedAt:    res.timestamp("finished_at"),
		})
	}

	// The platform sorts by started_at for us, but re-sorting keeps the
	// most-recent-first contract even if a gateway ignores the sort param.
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// GetLogs returns the log entries of a run, in id order.
func (c *Client) GetLogs(ctx context.Context, runID string) ([]api.LogEntry, error) {
	params := url.Values{}
	params.Set("sort", "id")
	params.Set("per_page", strconv.Itoa(defaultPerPage))
	params.Set("include", "flowRunLogMetadata")
	params.Set("fields[flowStep]", "id,name")
	params.Set("load_payload_ids", "true")

	var envelope listEnvelope
	err := c.get(ctx, "get_logs", c.coreURL, "/flow-runs/"+url.PathEscape(runID)+"/flow-run-logs", params, &envelope)
	if err != nil {
		return nil, err
	}

	entries := make([]api.LogEntry, 0, len(envelope.Data))
	for _, res := range envelope.Data {
		entries = append(entries, api.LogEntry{
			ID:        res.ID.String(),
			Timestamp: res.timestamp("created_at"),
			Level:     strings.ToLower(res.str("level")),
			Message:   res.str("message"),
			StepID:    res.str("flow_step_id"),
			StepName:  res.str("flow_step_name"),
			PayloadID: res.str("payload_metadata_id"),
		})
	}
	return entries, nil
}

// GetPayloads downloads the payloads captured during a run. The run's logs
// carry the payload metadata ids; each id is fetched individually. A
// non-empty stepName restricts the result to payloads of that step.
func (c *Client) GetPayloads(ctx context.Context, runID string, stepName string) ([]api.Payload, error) {
	entries, err := c.GetLogs(ctx, runID)
	if err != nil {
		return nil, err
	}

	var payloads []api.Payload
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.PayloadID == "" || seen[entry.PayloadID] {
			continue
		}
		if stepName != "" && !strings.EqualFold(entry.StepName, stepName) {
			continue
		}
		seen[entry.PayloadID] = true

		contentType, data, err := c.downloadPayload(ctx, entry.PayloadID)
		if err != nil {
			return payloads, err
		}
		payloads = append(payloads, api.Payload{
			ID:          entry.PayloadID,
			StepName:    entry.StepName,
			ContentType: contentType,
			Data:        data,
		})
	}
	return payloads, nil
}

// StartFlow triggers a run over the start API and returns the run id.
func (c *Client) StartFlow(ctx context.Context, flowID string) (string, error) {
	if c.startURL == "" {
		return "", &api.TransportError{
			Op:     "start_flow",
			Target: flowID,
			Err:    fmt.Errorf("start API URL is not configured"),
		}
	}

	var envelope resourceEnvelope
	err := c.post(ctx, "start_flow", c.startURL, "/flows/"+url.PathEscape(flowID)+"/start",
		map[string]interface{}{}, &envelope)
	if err != nil {
		return "", err
	}
	return envelope.Data.ID.String(), nil
}

func (c *Client) downloadPayload(ctx context.Context, payloadID string) (string, []byte, error) {
	target := c.coreURL + "/payload-metadata/" + url.PathEscape(payloadID) + "/download"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", nil, &api.TransportError{Op: "get_payloads", Target: payloadID, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.doWithRetry(req, true)
	if err != nil {
		return "", nil, &api.TransportError{Op: "get_payloads", Target: payloadID, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, &api.TransportError{Op: "get_payloads", Target: payloadID, Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", nil, api.NewPayloadNotFoundError(payloadID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, c.httpError("get_payloads", payloadID, resp.StatusCode, body)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return contentType, body, nil
}

// get performs an idempotent read with one automatic retry.
func (c *Client) get(ctx context.Context, op, base, path string, params url.Values, out interface{}) error {
	target := base + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &api.TransportError{Op: op, Target: path, Err: err}
	}
	c.setHeaders(req)

	return c.execute(op, path, req, true, out)
}

// post performs a non-idempotent write. Never retried.
func (c *Client) post(ctx context.Context, op, base, path string, body, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return &api.TransportError{Op: op, Target: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(encoded))
	if err != nil {
		return &api.TransportError{Op: op, Target: path, Err: err}
	}
	c.setHeaders(req)

	return c.execute(op, path, req, false, out)
}

func (c *Client) execute(op, path string, req *http.Request, idempotent bool, out interface{}) error {
	resp, err := c.doWithRetry(req, idempotent)
	if err != nil {
		return &api.TransportError{Op: op, Target: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &api.TransportError{Op: op, Target: path, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return api.NewNotFoundError(resourceTypeFor(op), path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.httpError(op, path, resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &api.TransportError{Op: op, Target: path, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// doWithRetry sends the request, retrying once for idempotent requests that
// fail at the network layer or with a 5xx response.
func (c *Client) doWithRetry(req *http.Request, idempotent bool) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if !idempotent {
		return resp, err
	}
	if err == nil && resp.StatusCode < 500 {
		return resp, nil
	}

	if resp != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	logging.Warn("Platform", "Retrying %s %s after transient failure", req.Method, req.URL.Path)

	retry := req.Clone(req.Context())
	return c.http.Do(retry)
}

func (c *Client) setHeaders(req *http.Request) {
	token := c.token
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
}

// httpError turns a non-2xx response into a TransportError with a redacted
// body excerpt. The token must never leak into logs or tool results.
func (c *Client) httpError(op, target string, status int, body []byte) error {
	excerpt := string(body)
	if len(excerpt) > maxErrorBody {
		excerpt = excerpt[:maxErrorBody]
	}
	excerpt = c.redact(excerpt)

	return &api.TransportError{
		Op:         op,
		Target:     target,
		StatusCode: status,
		Err:        fmt.Errorf("%s", excerpt),
	}
}

func (c *Client) redact(s string) string {
	if c.token == "" {
		return s
	}
	bare := strings.TrimPrefix(c.token, "Bearer ")
	s = strings.ReplaceAll(s, c.token, redactedToken)
	return strings.ReplaceAll(s, bare, redactedToken)
}

func resourceTypeFor(op string) string {
	switch op {
	case "get_runs", "start_flow", "create_flow", "list_flows":
		return "flow"
	case "get_logs":
		return "run"
	case "get_payloads":
		return "payload"
	default:
		return "resource"
	}
}

// runFlowID reads the owning flow id off a run resource, falling back to
// the filter value for gateways that omit the attribute on filtered queries.
func runFlowID(res resource, fallback string) string {
	if s := res.str("flow_id"); s != "" {
		return s
	}
	if n := res.integer("flow_id"); n > 0 {
		return strconv.Itoa(n)
	}
	return fallback
}

func pageOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
