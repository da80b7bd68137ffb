package project

import (
	"encoding/json"
	"time"

	"github.com/rpggio/deckline/internal/domain/outline"
)

// Slide is one ordered slide of a project deck. Body is opaque to deckline.
type Slide struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Body  json.RawMessage `json:"body,omitempty"`
	Order int             `json:"order"`
}

// NewSlide builds an empty slide with the given title.
func NewSlide(id, title string) Slide {
	return Slide{ID: id, Title: title}
}

func (s *Slide) ItemID() string        { return s.ID }
func (s *Slide) ItemOrder() int        { return s.Order }
func (s *Slide) SetOrder(order int)    { s.Order = order }
func (s *Slide) ItemTitle() string     { return s.Title }
func (s *Slide) SetTitle(title string) { s.Title = title }

// Project is the prompt record created when outlines are finalized.
type Project struct {
	ID        string                `json:"id"`
	TenantID  string                `json:"tenant_id"`
	Title     string                `json:"title"`
	Prompt    string                `json:"prompt,omitempty"`
	Outlines  []outline.OutlineCard `json:"outlines"`
	Slides    []Slide               `json:"slides"`
	Content   json.RawMessage       `json:"content,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// ProjectSummary is a lightweight representation for listing
type ProjectSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	OutlineCount int       `json:"outline_count"`
	SlideCount   int       `json:"slide_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
