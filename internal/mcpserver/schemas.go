package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bastiangx/dexpad/pkg/typechart"
)

// searchCatalogTool returns the tool definition for search_catalog
func searchCatalogTool() mcp.Tool {
	return mcp.Tool{
		Name: "search_catalog",
		Description: "Search the species catalog with free-form text. Tokens may be dex numbers (#6), " +
			"generations (gen1, gen 1, kanto), type names, legendary, mythical; anything else matches names.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search text, e.g. \"fire flying gen1\"",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
					"default":     DefaultLimit,
					"minimum":     1,
					"maximum":     MaxLimit,
				},
			},
			Required: []string{"query"},
		},
	}
}

// typeEffectivenessTool returns the tool definition for type_effectiveness
func typeEffectivenessTool() mcp.Tool {
	return mcp.Tool{
		Name:        "type_effectiveness",
		Description: "Compute weaknesses, resistances and immunities for one or two defending types",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"types": map[string]interface{}{
					"type":        "array",
					"description": "Defending types in slot order",
					"minItems":    1,
					"maxItems":    2,
					"items": map[string]interface{}{
						"type": "string",
						"enum": typechart.Types,
					},
				},
			},
			Required: []string{"types"},
		},
	}
}

// lookupSpeciesTool returns the tool definition for lookup_species
func lookupSpeciesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "lookup_species",
		Description: "Fetch one species by name or dex number together with its type matchups",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Exact species name, case-insensitive",
				},
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Dex number, used when name is empty",
					"minimum":     1,
				},
			},
		},
	}
}
