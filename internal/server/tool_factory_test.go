package server

import (
	"context"
	"testing"

	"flowbridge/internal/api"
	"flowbridge/internal/flowtools"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToolsFromProviders(t *testing.T) {
	api.ResetForTesting()
	t.Cleanup(api.ResetForTesting)

	api.RegisterToolProvider("flowtools", flowtools.NewProvider())

	tools := createToolsFromProviders()
	require.Len(t, tools, 10)

	byName := make(map[string]bool)
	for _, tool := range tools {
		byName[tool.Tool.Name] = true
		assert.NotNil(t, tool.Handler)
	}
	assert.True(t, byName["create_flow_from_prompt"])
	assert.True(t, byName["investigate_failure"])
	assert.True(t, byName["triage_latest_failures"])
}

func TestConvertToMCPSchema(t *testing.T) {
	schema := convertToMCPSchema([]api.ArgMetadata{
		{Name: "prompt", Type: "string", Required: true, Description: "free text"},
		{Name: "dry_run", Type: "boolean", Required: false, Default: false},
	})

	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"prompt"}, schema.Required)

	prop := schema.Properties["dry_run"].(map[string]interface{})
	assert.Equal(t, "boolean", prop["type"])
	assert.Equal(t, false, prop["default"])
}

func TestConvertToMCPResult(t *testing.T) {
	result := convertToMCPResult(&api.CallToolResult{
		Content: []interface{}{"plain text", map[string]string{"key": "value"}},
		IsError: true,
	})

	assert.True(t, result.IsError)
	require.Len(t, result.Content, 2)

	first, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "plain text", first.Text)

	second, ok := result.Content[1].(mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `{"key":"value"}`, second.Text)
}

func TestCreateToolHandler_ArgumentPassing(t *testing.T) {
	api.ResetForTesting()
	t.Cleanup(api.ResetForTesting)

	var captured map[string]interface{}
	provider := &captureProvider{onExecute: func(args map[string]interface{}) {
		captured = args
	}}

	handler := createToolHandler(provider, "capture")

	req := mcp.CallToolRequest{}
	req.Params.Name = "capture"
	req.Params.Arguments = map[string]interface{}{"flow_ref": "Order Sync"}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "Order Sync", captured["flow_ref"])
}

// captureProvider records the arguments it is executed with.
type captureProvider struct {
	onExecute func(args map[string]interface{})
}

func (c *captureProvider) GetTools() []api.ToolMetadata {
	return []api.ToolMetadata{{Name: "capture"}}
}

func (c *captureProvider) ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*api.CallToolResult, error) {
	c.onExecute(args)
	return &api.CallToolResult{Content: []interface{}{"ok"}}, nil
}
