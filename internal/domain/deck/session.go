// Package deck keeps open slide-editing sessions for projects and saves their
// content through debounced autosave.
package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rpggio/deckline/internal/autosave"
	"github.com/rpggio/deckline/internal/domain/project"
	"github.com/rpggio/deckline/internal/editor"
)

// SlideEditor edits a session's slides.
type SlideEditor = editor.Editor[project.Slide, *project.Slide]

// Document is the serialized content saved for a project.
type Document struct {
	ProjectID string          `json:"project_id"`
	Title     string          `json:"title"`
	Slides    []project.Slide `json:"slides"`
}

// Session is the in-memory slide list of one open project.
type Session struct {
	tenantID  string
	projectID string
	title     string
	docID     string
	saver     Scheduler
	editor    *SlideEditor

	mu     sync.RWMutex
	slides []project.Slide
	closed bool
}

func newSession(tenantID string, proj *project.Project, saver Scheduler, opts ...editor.Option) *Session {
	slides := make([]project.Slide, len(proj.Slides))
	copy(slides, proj.Slides)
	s := &Session{
		tenantID:  tenantID,
		projectID: proj.ID,
		title:     proj.Title,
		docID:     DocID(tenantID, proj.ID),
		saver:     saver,
		slides:    slides,
	}
	s.editor = editor.New[project.Slide, *project.Slide](s, project.NewSlide, opts...)
	return s
}

// ProjectID returns the id of the open project.
func (s *Session) ProjectID() string { return s.projectID }

// Editor returns the session's ordered-list editor.
func (s *Session) Editor() *SlideEditor { return s.editor }

// Items returns a copy of the slides.
func (s *Session) Items() []project.Slide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]project.Slide, len(s.slides))
	copy(out, s.slides)
	return out
}

// ReplaceAll replaces the slide list and schedules a save.
func (s *Session) ReplaceAll(ctx context.Context, slides []project.Slide) error {
	next := make([]project.Slide, len(slides))
	copy(next, slides)
	return s.Update(ctx, func([]project.Slide) ([]project.Slide, error) {
		return next, nil
	})
}

// Update replaces the slide list with fn's result, computed from the current
// slides under the session lock, and schedules a save. An error from fn
// leaves the slides unchanged.
func (s *Session) Update(_ context.Context, fn func(slides []project.Slide) ([]project.Slide, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	cur := make([]project.Slide, len(s.slides))
	copy(cur, s.slides)
	next, err := fn(cur)
	if err != nil {
		return err
	}
	content, err := json.Marshal(Document{ProjectID: s.projectID, Title: s.title, Slides: next})
	if err != nil {
		return fmt.Errorf("encoding deck: %w", err)
	}
	s.slides = next
	s.saver.Schedule(s.docID, content)
	return nil
}

// UpdateBody replaces the opaque body of one slide.
func (s *Session) UpdateBody(ctx context.Context, id string, body json.RawMessage) (bool, error) {
	if len(body) > 0 && !json.Valid(body) {
		return false, fmt.Errorf("%w: slide body is not valid JSON", project.ErrInvalidInput)
	}
	return s.editor.Update(ctx, func(slides []project.Slide) ([]project.Slide, bool) {
		for i := range slides {
			if slides[i].ID == id {
				slides[i].Body = append(json.RawMessage(nil), body...)
				return slides, true
			}
		}
		return nil, false
	})
}

// Flush saves pending changes now.
func (s *Session) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx, s.docID)
}

// Status returns the autosave indicator for the session.
func (s *Session) Status() autosave.Status {
	return s.saver.Status(s.docID)
}

// Close drops unsaved changes and stops the pending save.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.saver.Cancel(s.docID)
}
