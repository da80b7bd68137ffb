package mcp

import (
	"encoding/json"
	"time"

	"github.com/rpggio/deckline/internal/autosave"
	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/domain/project"
)

type SetPromptParams struct {
	Prompt string `json:"prompt"`
}

type GenerateOutlinesParams struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count,omitempty"`
}

type AddOutlineParams struct {
	Title string `json:"title"`
}

type ReplaceOutlinesParams struct {
	Outlines []outline.OutlineCard `json:"outlines"`
}

type InsertCardParams struct {
	Title string `json:"title"`
	After *int   `json:"after,omitempty"`
}

type CardIDParams struct {
	ID string `json:"id"`
}

type MoveCardParams struct {
	ID     string `json:"id"`
	Target int    `json:"target"`
}

type DragCardParams struct {
	ID         string  `json:"id"`
	HoverIndex int     `json:"hover_index"`
	PointerY   float64 `json:"pointer_y"`
	RowTop     float64 `json:"row_top"`
	RowHeight  float64 `json:"row_height"`
}

type EditCardParams struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type CreateProjectParams struct {
	ID       string                `json:"id,omitempty"`
	Title    string                `json:"title,omitempty"`
	Outlines []outline.OutlineCard `json:"outlines,omitempty"`
}

type GetProjectParams struct {
	ID string `json:"id"`
}

type DeckParams struct {
	ProjectID string `json:"project_id"`
}

type MoveSlideParams struct {
	ProjectID string `json:"project_id"`
	ID        string `json:"id"`
	Target    int    `json:"target"`
}

type InsertSlideParams struct {
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	After     *int   `json:"after,omitempty"`
}

type SlideIDParams struct {
	ProjectID string `json:"project_id"`
	ID        string `json:"id"`
}

type EditSlideParams struct {
	ProjectID string          `json:"project_id"`
	ID        string          `json:"id"`
	Title     *string         `json:"title,omitempty"`
	Body      json.RawMessage `json:"body,omitempty"`
}

type SaveStatusParams struct {
	ProjectID string `json:"project_id"`
	Flush     bool   `json:"flush,omitempty"`
}

type GetRecentActivityParams struct {
	ProjectID string `json:"project_id,omitempty"`
	Type      string `json:"type,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// OutlineResponse is the tenant's current outline state.
type OutlineResponse struct {
	Prompt   string                `json:"prompt"`
	Outlines []outline.OutlineCard `json:"outlines"`
}

// CardChangeResponse reports an outline edit and the resulting list.
type CardChangeResponse struct {
	Changed  bool                  `json:"changed"`
	Card     *outline.OutlineCard  `json:"card,omitempty"`
	Outlines []outline.OutlineCard `json:"outlines"`
}

// DeckResponse is an open deck and its save indicator.
type DeckResponse struct {
	ProjectID string          `json:"project_id"`
	Changed   bool            `json:"changed"`
	Slide     *project.Slide  `json:"slide,omitempty"`
	Slides    []project.Slide `json:"slides"`
	Status    autosave.Status `json:"save_status"`
}

type ActivityEntryResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	ProjectID string                `json:"project_id,omitempty"`
	CardID    string                `json:"card_id,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}
