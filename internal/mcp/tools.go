package mcp

import (
	"context"
	"encoding/json"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

var cardSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":    prop("string", "Stable card identifier"),
		"title": prop("string", "Card title"),
		"order": prop("integer", "1-based position"),
	},
	"required": []string{"id", "title"},
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	projectID := prop("string", "Project ID")
	return []ToolDefinition{
		// Outline
		{
			Name:        "get_outline",
			Description: "Get the current prompt and the ordered outline cards",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "set_prompt",
			Description: "Replace the current prompt text without generating",
			InputSchema: objectSchema(map[string]any{
				"prompt": prop("string", "Prompt text"),
			}, "prompt"),
		},
		{
			Name:        "generate_outlines",
			Description: "Generate outline cards from a prompt, replacing the current prompt and cards",
			InputSchema: objectSchema(map[string]any{
				"prompt": prop("string", "What the presentation is about"),
				"count":  prop("integer", "Number of cards to generate (default 6, max 20)"),
			}, "prompt"),
		},
		{
			Name:        "add_outline",
			Description: "Add a card at the front of the outline",
			InputSchema: objectSchema(map[string]any{
				"title": prop("string", "Card title"),
			}, "title"),
		},
		{
			Name:        "replace_outlines",
			Description: "Replace the whole outline list verbatim",
			InputSchema: objectSchema(map[string]any{
				"outlines": map[string]any{
					"type":        "array",
					"description": "Cards in display order",
					"items":       cardSchema,
				},
			}, "outlines"),
		},
		{
			Name:        "reset_outline",
			Description: "Clear the prompt and every outline card",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "insert_card",
			Description: "Insert a new card after the card at a 1-based position (0 for the front), or append it",
			InputSchema: objectSchema(map[string]any{
				"title": prop("string", "Card title"),
				"after": prop("integer", "1-based position to insert after; omit to append"),
			}, "title"),
		},
		{
			Name:        "delete_card",
			Description: "Delete a card and renumber the rest",
			InputSchema: objectSchema(map[string]any{
				"id": prop("string", "Card ID"),
			}, "id"),
		},
		{
			Name:        "move_card",
			Description: "Move a card to an insertion point (0..N, positions counted before removal)",
			InputSchema: objectSchema(map[string]any{
				"id":     prop("string", "Card ID"),
				"target": prop("integer", "Insertion point"),
			}, "id", "target"),
		},
		{
			Name:        "drag_card",
			Description: "Drop a dragged card over a row; the upper half of the row inserts before it, the lower half after it",
			InputSchema: objectSchema(map[string]any{
				"id":          prop("string", "Dragged card ID"),
				"hover_index": prop("integer", "0-based index of the hovered row"),
				"pointer_y":   prop("number", "Pointer position along the list axis"),
				"row_top":     prop("number", "Top edge of the hovered row"),
				"row_height":  prop("number", "Height of the hovered row"),
			}, "id", "hover_index", "pointer_y", "row_top", "row_height"),
		},
		{
			Name:        "edit_card",
			Description: "Rename a card",
			InputSchema: objectSchema(map[string]any{
				"id":    prop("string", "Card ID"),
				"title": prop("string", "New title"),
			}, "id", "title"),
		},

		// Projects
		{
			Name:        "create_project",
			Description: "Create a project from outline cards (the current outline when none are given)",
			InputSchema: objectSchema(map[string]any{
				"id":    prop("string", "Project identifier (optional, generated if omitted)"),
				"title": prop("string", "Project title (defaults to the first card's title)"),
				"outlines": map[string]any{
					"type":        "array",
					"description": "Cards to create the project from",
					"items":       cardSchema,
				},
			}),
		},
		{
			Name:        "list_projects",
			Description: "List all projects for the current tenant",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "get_project",
			Description: "Get a project with its outlines and slides",
			InputSchema: objectSchema(map[string]any{
				"id": projectID,
			}, "id"),
		},

		// Decks
		{
			Name:        "open_deck",
			Description: "Open a project's slides for editing",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectID,
			}, "project_id"),
		},
		{
			Name:        "close_deck",
			Description: "Close a deck, dropping changes that have not been saved yet",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectID,
			}, "project_id"),
		},
		{
			Name:        "move_slide",
			Description: "Move a slide to an insertion point (0..N, positions counted before removal)",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectID,
				"id":         prop("string", "Slide ID"),
				"target":     prop("integer", "Insertion point"),
			}, "project_id", "id", "target"),
		},
		{
			Name:        "insert_slide",
			Description: "Insert a slide after a 1-based position (0 for the front), or append it",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectID,
				"title":      prop("string", "Slide title"),
				"after":      prop("integer", "1-based position to insert after; omit to append"),
			}, "project_id", "title"),
		},
		{
			Name:        "delete_slide",
			Description: "Delete a slide and renumber the rest",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectID,
				"id":         prop("string", "Slide ID"),
			}, "project_id", "id"),
		},
		{
			Name:        "edit_slide",
			Description: "Change a slide's title and/or its content body",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectID,
				"id":         prop("string", "Slide ID"),
				"title":      prop("string", "New title"),
				"body":       map[string]any{"description": "Opaque slide content (any JSON value)"},
			}, "project_id", "id"),
		},
		{
			Name:        "save_status",
			Description: "Get the auto-save indicator for a deck, optionally saving now",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectID,
				"flush":      prop("boolean", "Save pending changes immediately"),
			}, "project_id"),
		},

		// Activity
		{
			Name:        "get_recent_activity",
			Description: "Get recent activity entries, newest first",
			InputSchema: objectSchema(map[string]any{
				"project_id": prop("string", "Project ID to filter by"),
				"type":       prop("string", "Activity type to filter by"),
				"limit":      prop("integer", "Maximum number of entries"),
				"offset":     prop("integer", "Entries to skip"),
			}),
		},
	}
}

func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, getTenantID(ctx), name, args)
			if err != nil {
				return toolError(err), nil
			}
			return toolResult(result)
		})
	}
}

func toolResult(result any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	payload := any(map[string]string{"code": "INTERNAL", "message": err.Error()})
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		payload = apiErr
	}
	data, _ := json.Marshal(payload)
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}
