package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/typechart"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternalError  = -32603
	ErrorCodeSpeciesMissing = -32001
)

func (s *Server) handleSearchCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing",
		})
	}

	limit := getIntDefault(args, "limit", DefaultLimit)
	if limit < 1 || limit > MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", MaxLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	res := s.searcher.Search(query, limit)
	response := map[string]interface{}{
		"query":      query,
		"filters":    res.Filters,
		"results":    res.Matches,
		"count":      len(res.Matches),
		"total":      res.Total,
		"elapsed_us": res.Elapsed.Microseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleTypeEffectiveness(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	types, err := getStringSlice(args, "types")
	if err != nil || len(types) == 0 || len(types) > 2 {
		return nil, newMCPError(ErrorCodeInvalidParams, "types must list one or two type names", map[string]interface{}{
			"param": "types",
		})
	}
	for i, t := range types {
		types[i] = strings.ToLower(strings.TrimSpace(t))
		if !typechart.IsType(types[i]) {
			return nil, newMCPError(ErrorCodeInvalidParams, "unknown type", map[string]interface{}{
				"param":   "types",
				"value":   t,
				"allowed": typechart.Types,
			})
		}
	}

	response := map[string]interface{}{
		"types":         types,
		"effectiveness": typechart.Analyze(types),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleLookupSpecies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name := getStringDefault(args, "name", "")
	id := getIntDefault(args, "id", 0)
	if strings.TrimSpace(name) == "" && id <= 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "name or id parameter is required", nil)
	}

	sp, err := s.searcher.Lookup(name, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, newMCPError(ErrorCodeSpeciesMissing, "species not found", map[string]interface{}{
			"name": name,
			"id":   id,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"species":       sp,
		"effectiveness": s.searcher.Effectiveness(sp),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter; JSON numbers arrive as float64
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	switch v := args[key].(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected string items, got %T", key, item)
			}
			out = append(out, str)
		}
		return out, nil
	case string:
		return strings.Fields(strings.ReplaceAll(v, ",", " ")), nil
	default:
		return nil, fmt.Errorf("%s: expected array, got %T", key, v)
	}
}
