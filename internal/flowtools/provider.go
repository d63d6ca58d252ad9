package flowtools

import (
	"flowbridge/internal/api"
)

// Provider implements the api.ToolProvider interface for flow tools.
// It offers the operations a conversational driver composes: authoring
// flow documents from prompts or partial documents, validating them,
// querying the platform, and running failure investigations.
type Provider struct{}

// NewProvider creates a new flow-tools provider instance. The provider is
// stateless and can be used concurrently across requests.
func NewProvider() *Provider {
	return &Provider{}
}

// GetTools returns metadata for all flow tools this provider offers.
func (p *Provider) GetTools() []api.ToolMetadata {
	return []api.ToolMetadata{
		// Authoring tools
		{
			Name:        "create_flow_from_prompt",
			Description: "Create a complete, schema-valid flow document from a natural-language request and optionally submit it to the platform",
			Args: []api.ArgMetadata{
				{
					Name:        "prompt",
					Type:        "string",
					Required:    true,
					Description: "Free-text request, e.g. 'create a flow for Shopify to NetSuite orders every hour'",
				},
				{
					Name:        "dry_run",
					Type:        "boolean",
					Required:    false,
					Description: "When true, return the built document without creating the flow (default: false)",
					Default:     false,
				},
			},
		},
		{
			Name:        "create_flow_from_document",
			Description: "Complete a partial flow document, validate it, and optionally submit it to the platform",
			Args: []api.ArgMetadata{
				{
					Name:        "document",
					Type:        "object",
					Required:    true,
					Description: "Partial or complete flow-import document",
				},
				{
					Name:        "dry_run",
					Type:        "boolean",
					Required:    false,
					Description: "When true, return the completed document without creating the flow (default: false)",
					Default:     false,
				},
			},
		},
		{
			Name:        "validate_flow_document",
			Description: "Check a flow document against the import schema and report every violation found",
			Args: []api.ArgMetadata{
				{
					Name:        "document",
					Type:        "object",
					Required:    true,
					Description: "Flow-import document to validate",
				},
			},
		},

		// Investigation tools
		{
			Name:        "investigate_failure",
			Description: "Locate the most recent failed run of a flow, summarize its logs and payloads, and follow alert flows back to the originating flow",
			Args: []api.ArgMetadata{
				{
					Name:        "flow_ref",
					Type:        "string",
					Required:    true,
					Description: "Flow id, exact name, or a name fragment to resolve",
				},
				{
					Name:        "started_after",
					Type:        "string",
					Required:    false,
					Description: "Only consider runs started after this RFC3339 timestamp",
				},
				{
					Name:        "started_before",
					Type:        "string",
					Required:    false,
					Description: "Only consider runs started before this RFC3339 timestamp",
				},
				{
					Name:        "step_name",
					Type:        "string",
					Required:    false,
					Description: "Restrict payload evidence to this step, e.g. 'Catch'",
				},
				{
					Name:        "max_hops",
					Type:        "number",
					Required:    false,
					Description: "Alert-chain hop limit (default: 3)",
				},
			},
		},

		{
			Name:        "triage_latest_failures",
			Description: "Sweep the most recent failed runs across all flows and summarize each one's logs in a single consolidated list",
			Args: []api.ArgMetadata{
				{
					Name:        "limit",
					Type:        "number",
					Required:    false,
					Description: "Maximum number of failed runs to summarize (default: 20, max: 200)",
				},
				{
					Name:        "started_after",
					Type:        "string",
					Required:    false,
					Description: "Only consider runs started after this RFC3339 timestamp",
				},
			},
		},

		// Platform query tools
		{
			Name:        "list_flows",
			Description: "List flows on the platform, optionally filtered by name",
			Args: []api.ArgMetadata{
				{
					Name:        "name",
					Type:        "string",
					Required:    false,
					Description: "Filter flows by name",
				},
				{
					Name:        "page",
					Type:        "number",
					Required:    false,
					Description: "Page number (default: 1)",
				},
				{
					Name:        "per_page",
					Type:        "number",
					Required:    false,
					Description: "Page size (default: 50)",
				},
			},
		},
		{
			Name:        "get_flow_runs",
			Description: "List runs of a flow, most recent first, optionally filtered by status",
			Args: []api.ArgMetadata{
				{
					Name:        "flow_id",
					Type:        "string",
					Required:    true,
					Description: "Flow id",
				},
				{
					Name:        "status",
					Type:        "number",
					Required:    false,
					Description: "Run status code: 1=started 2=success 3=failure 4=stopped 5=partial_success",
				},
				{
					Name:        "limit",
					Type:        "number",
					Required:    false,
					Description: "Maximum number of runs to return (default: 50)",
				},
			},
		},
		{
			Name:        "get_flow_logs",
			Description: "Fetch and summarize the log entries of a run",
			Args: []api.ArgMetadata{
				{
					Name:        "run_id",
					Type:        "string",
					Required:    true,
					Description: "Run id",
				},
			},
		},
		{
			Name:        "get_payloads",
			Description: "Download the payloads captured during a run, optionally scoped to a named step",
			Args: []api.ArgMetadata{
				{
					Name:        "run_id",
					Type:        "string",
					Required:    true,
					Description: "Run id",
				},
				{
					Name:        "step_name",
					Type:        "string",
					Required:    false,
					Description: "Only payloads captured at this step",
				},
			},
		},
		{
			Name:        "start_flow",
			Description: "Trigger a run of a flow and return the new run id",
			Args: []api.ArgMetadata{
				{
					Name:        "flow_id",
					Type:        "string",
					Required:    true,
					Description: "Flow id",
				},
			},
		},
	}
}
