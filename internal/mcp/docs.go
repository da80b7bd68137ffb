package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `deckline keeps a slide outline (a prompt plus ordered outline cards) and turns it into projects whose slides can be edited.

Core concepts:
- Outline: one per tenant. Cards have a stable id, a title and a 1-based order that always matches their position.
- Project: created from the outline; seeds one slide per card.
- Deck: an open project's slides. Edits are saved automatically after a short quiet period.

Default workflow:
1) get_outline to see where the user left off.
2) generate_outlines(prompt) or add_outline / insert_card to build the list.
3) Rearrange with move_card (insertion point) or drag_card (pointer geometry); rename with edit_card; delete_card to drop one.
4) create_project when the outline is final, then open_deck and edit slides.
5) save_status shows whether deck changes are pending, saved, or failing. Pass flush=true before closing.

Edits that reference an unknown id change nothing and report changed=false.

Docs:
- deckline://docs/index
- deckline://docs/ordering
- deckline://docs/autosave
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "deckline://docs/index",
		Name:        "docs_index",
		Title:       "deckline docs index",
		Description: "Entry point: available tools and which doc to read for what.",
		Content: `# deckline: Agent Docs Index

## Quick start

1. ` + "`get_outline`" + ` to read the prompt and cards.
2. ` + "`generate_outlines`" + ` to replace both from a prompt, or build cards by hand.
3. Reorder and edit cards until the outline reads well.
4. ` + "`create_project`" + ` to freeze the outline into a project.
5. ` + "`open_deck`" + ` and the slide tools to edit the deck.

## Docs

- ` + "`deckline://docs/ordering`" + `: positions, insertion points, and drag geometry.
- ` + "`deckline://docs/autosave`" + `: how and when deck edits are saved.

## Limitations

- Generation needs a configured model. Without one ` + "`generate_outlines`" + ` returns GENERATOR_UNAVAILABLE and the outline is unchanged.
- A project's outline cannot be edited after creation; edit its slides instead.
`,
	},
	{
		URI:         "deckline://docs/ordering",
		Name:        "docs_ordering",
		Title:       "Ordering rules",
		Description: "How card and slide positions, moves, and inserts work.",
		Content: `# Ordering rules

Cards and slides share the same rules.

- ` + "`order`" + ` is 1-based and always equals the item's position in the list.
- Ids never change when an item moves. Titles never change on move.

## Moving

` + "`move_card`" + ` and ` + "`move_slide`" + ` take an insertion point between 0 and N,
counted before the item is removed. For ` + "`[a, b, c]`" + `:

- move a to 2 gives ` + "`[b, a, c]`" + `
- move c to 0 gives ` + "`[c, a, b]`" + `
- moving an item to its own position or the slot right after it changes nothing.

## Dragging

` + "`drag_card`" + ` takes the hovered row index and its geometry. A pointer in the
upper half of the row drops before it, the lower half drops after it.

## Inserting

` + "`after`" + ` is the 1-based position of the item to insert after. 0 inserts
at the front; omitting it appends.
`,
	},
	{
		URI:         "deckline://docs/autosave",
		Name:        "docs_autosave",
		Title:       "Deck auto-save",
		Description: "Debounced saving of deck edits and the save indicator.",
		Content: `# Deck auto-save

Every slide edit schedules a save. The save waits for a quiet period (2s by
default); further edits restart the wait, so a burst of edits produces one save
carrying the latest state.

Only one save per deck runs at a time. Edits made while a save runs are saved
after it finishes.

Failed saves are retried a few times with backoff. If they still fail,
` + "`save_status`" + ` reports ` + "`last_error`" + ` and the edits stay in memory.

` + "`close_deck`" + ` drops edits that have not been saved. Call
` + "`save_status`" + ` with ` + "`flush=true`" + ` first to keep them.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
