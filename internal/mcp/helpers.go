package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mvp-joe/autofix/internal/pipeline"
)

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// failureResult reports a run that could not complete as a tool error, so
// clients can tell it apart from "no issues found".
func failureResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(pipeline.FailureMessage(err))
}
