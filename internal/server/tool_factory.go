package server

import (
	"context"
	"encoding/json"
	"fmt"

	"flowbridge/internal/api"
	"flowbridge/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// createToolsFromProviders creates MCP tools from all registered tool
// providers. Providers register themselves with the API layer at startup,
// so the catalogue here is exactly what api.ListToolProviders enumerates.
func createToolsFromProviders() []mcpserver.ServerTool {
	var tools []mcpserver.ServerTool

	for _, provider := range api.ListToolProviders() {
		for _, toolMeta := range provider.GetTools() {
			tools = append(tools, mcpserver.ServerTool{
				Tool: mcp.Tool{
					Name:        toolMeta.Name,
					Description: toolMeta.Description,
					InputSchema: convertToMCPSchema(toolMeta.Args),
				},
				Handler: createToolHandler(provider, toolMeta.Name),
			})
		}
	}

	logging.Debug("Server", "Built %d MCP tools from registered providers", len(tools))
	return tools
}

// createToolHandler creates an MCP handler function that dispatches to the
// given provider.
func createToolHandler(provider api.ToolProvider, toolName string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := make(map[string]interface{})
		if req.Params.Arguments != nil {
			if argsMap, ok := req.Params.Arguments.(map[string]interface{}); ok {
				args = argsMap
			}
		}

		result, err := provider.ExecuteTool(ctx, toolName, args)
		if err != nil {
			logging.Error("Server", err, "Tool execution failed for %s", toolName)
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}

		return convertToMCPResult(result), nil
	}
}

// convertToMCPSchema converts argument metadata to an MCP input schema.
func convertToMCPSchema(params []api.ArgMetadata) mcp.ToolInputSchema {
	properties := make(map[string]interface{})
	required := []string{}

	for _, param := range params {
		propSchema := map[string]interface{}{
			"type":        param.Type,
			"description": param.Description,
		}
		if param.Default != nil {
			propSchema["default"] = param.Default
		}

		properties[param.Name] = propSchema
		if param.Required {
			required = append(required, param.Name)
		}
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// convertToMCPResult converts an API tool result to the MCP wire format.
// Non-string content is marshaled to JSON text.
func convertToMCPResult(result *api.CallToolResult) *mcp.CallToolResult {
	mcpContent := make([]mcp.Content, len(result.Content))

	for i, content := range result.Content {
		if text, ok := content.(string); ok {
			mcpContent[i] = mcp.NewTextContent(text)
		} else {
			jsonBytes, _ := json.Marshal(content)
			mcpContent[i] = mcp.NewTextContent(string(jsonBytes))
		}
	}

	return &mcp.CallToolResult{
		Content: mcpContent,
		IsError: result.IsError,
	}
}
