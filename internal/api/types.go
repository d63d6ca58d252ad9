package api

import (
	"context"
)

// CallToolResult represents the result of a tool call.
// Content items are either strings or JSON-marshalable values; the MCP
// server converts them to text content on the wire.
type CallToolResult struct {
	Content []interface{} `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolMetadata describes a tool that can be exposed to a conversational driver.
type ToolMetadata struct {
	Name        string // e.g. "create_flow_from_prompt", "investigate_failure"
	Description string
	Args        []ArgMetadata
}

// ArgMetadata describes a single tool argument.
type ArgMetadata struct {
	Name        string
	Type        string // "string", "number", "boolean", "object"
	Required    bool
	Description string
	Default     interface{}
}

// ToolProvider is implemented by packages that expose named operations.
type ToolProvider interface {
	// GetTools returns all tools this provider offers.
	GetTools() []ToolMetadata

	// ExecuteTool executes a tool by name.
	ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*CallToolResult, error)
}
