package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rpggio/deckline/internal/autosave"
	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/editor"
)

// DocID is the autosave document id of a tenant's project.
func DocID(tenantID, projectID string) string {
	return tenantID + "/" + projectID
}

func splitDocID(docID string) (tenantID, projectID string, ok bool) {
	i := strings.LastIndex(docID, "/")
	if i < 0 {
		return "", "", false
	}
	return docID[:i], docID[i+1:], true
}

// Manager keeps one Session per tenant and project.
type Manager struct {
	projects      Projects
	activities    ActivityRepository
	logger        *slog.Logger
	saver         Scheduler
	shutdownSaver func(ctx context.Context) error
	editorOpts    []editor.Option

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions save through an autosave.Saver
// built from opts. activities may be nil.
func NewManager(projects Projects, activities ActivityRepository, opts autosave.Options, logger *slog.Logger, editorOpts ...editor.Option) *Manager {
	m := &Manager{
		projects:   projects,
		activities: activities,
		logger:     logger,
		editorOpts: editorOpts,
		sessions:   make(map[string]*Session),
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if opts.OnResult == nil {
		opts.OnResult = m.recordResult
	}
	saver := autosave.New(m.persist, opts)
	m.saver = saver
	m.shutdownSaver = saver.Shutdown
	return m
}

// Open returns the session for a project, loading it on first use.
func (m *Manager) Open(ctx context.Context, tenantID, projectID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := DocID(tenantID, projectID)
	if s, ok := m.sessions[key]; ok {
		return s, nil
	}
	proj, err := m.projects.Get(ctx, tenantID, projectID)
	if err != nil {
		return nil, fmt.Errorf("opening deck: %w", err)
	}
	s := newSession(tenantID, proj, m.saver, m.editorOpts...)
	m.sessions[key] = s
	return s, nil
}

// Close tears down a project's session, dropping unsaved changes.
func (m *Manager) Close(tenantID, projectID string) bool {
	m.mu.Lock()
	s, ok := m.sessions[DocID(tenantID, projectID)]
	delete(m.sessions, DocID(tenantID, projectID))
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// Shutdown saves every open session's latest slides, waiting out saves that
// are already running, then stops the saver.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	if err := m.shutdownSaver(ctx); err != nil && m.logger != nil {
		m.logger.Warn("flushing decks on shutdown", "error", err)
	}
}

func (m *Manager) persist(ctx context.Context, docID string, content []byte) error {
	tenantID, projectID, ok := splitDocID(docID)
	if !ok {
		return fmt.Errorf("malformed document id %q", docID)
	}
	var doc Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("decoding deck: %w", err)
	}
	if err := m.projects.ReplaceSlides(ctx, tenantID, projectID, doc.Slides); err != nil {
		return err
	}
	return m.projects.SaveContent(ctx, tenantID, projectID, content)
}

func (m *Manager) recordResult(docID string, err error) {
	if m.activities == nil {
		return
	}
	tenantID, projectID, ok := splitDocID(docID)
	if !ok {
		return
	}
	entry := &activity.ActivityEntry{
		ProjectID:    projectID,
		ActivityType: activity.TypeDocumentSaved,
		Summary:      "deck saved",
	}
	if err != nil {
		entry.ActivityType = activity.TypeDocumentSaveFailed
		entry.Summary = "deck save failed"
		details, _ := json.Marshal(map[string]string{"error": err.Error()})
		entry.Details = string(details)
	}
	if logErr := m.activities.Log(context.Background(), tenantID, entry); logErr != nil && m.logger != nil {
		m.logger.Warn("activity not recorded", "type", entry.ActivityType, "error", logErr)
	}
}
