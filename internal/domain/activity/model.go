package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeOutlinesGenerated  ActivityType = "outlines_generated"
	TypeOutlinesReplaced   ActivityType = "outlines_replaced"
	TypePromptSet          ActivityType = "prompt_set"
	TypeCardInserted       ActivityType = "card_inserted"
	TypeCardMoved          ActivityType = "card_moved"
	TypeCardDeleted        ActivityType = "card_deleted"
	TypeCardEdited         ActivityType = "card_edited"
	TypeOutlineReset       ActivityType = "outline_reset"
	TypeProjectCreated     ActivityType = "project_created"
	TypeSlidesChanged      ActivityType = "slides_changed"
	TypeDocumentSaved      ActivityType = "document_saved"
	TypeDocumentSaveFailed ActivityType = "document_save_failed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TenantID     string       `json:"tenant_id"`
	ProjectID    string       `json:"project_id,omitempty"`
	CardID       string       `json:"card_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
