package common

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/reclaim/internal/reclaim"
)

// ErrorResult converts err into a tool error result. Hints from
// *reclaim.Error are appended on their own line.
func ErrorResult(err error) *mcp.CallToolResult {
	msg := err.Error()
	if hint := reclaim.HintOf(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return mcp.NewToolResultError(msg)
}

// JSONResult returns v as indented JSON text.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
