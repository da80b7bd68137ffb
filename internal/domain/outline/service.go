package outline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/editor"
	"github.com/rpggio/deckline/internal/ordering"
)

// CardEditor edits a tenant's outline cards.
type CardEditor = editor.Editor[OutlineCard, *OutlineCard]

// ActivityRepository logs outline activities.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}

// DragRequest is a complete drag gesture: the dragged card and where the
// pointer was released over the hovered row.
type DragRequest struct {
	ID         string
	HoverIndex int
	PointerY   float64
	Box        ordering.Box
}

// Service edits tenants' outlines through their stores and card editors.
type Service struct {
	registry   *Registry
	activities ActivityRepository
	logger     *slog.Logger
	editorOpts []editor.Option

	mu      sync.Mutex
	editors map[string]*CardEditor
}

// NewService creates an outline service. activities may be nil.
func NewService(registry *Registry, activities ActivityRepository, logger *slog.Logger, editorOpts ...editor.Option) *Service {
	if logger != nil {
		editorOpts = append([]editor.Option{editor.WithLogger(logger)}, editorOpts...)
	}
	return &Service{
		registry:   registry,
		activities: activities,
		logger:     logger,
		editorOpts: editorOpts,
		editors:    make(map[string]*CardEditor),
	}
}

// Store returns the tenant's store.
func (s *Service) Store(ctx context.Context, tenantID string) (*Store, error) {
	return s.registry.Store(ctx, tenantID)
}

// Editor returns the tenant's store and the card editor bound to it.
func (s *Service) Editor(ctx context.Context, tenantID string) (*Store, *CardEditor, error) {
	store, err := s.registry.Store(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ed, ok := s.editors[tenantID]
	if !ok {
		ed = editor.New[OutlineCard, *OutlineCard](store, NewCard, s.editorOpts...)
		s.editors[tenantID] = ed
	}
	return store, ed, nil
}

// Tenants lists tenants that have an outline.
func (s *Service) Tenants(ctx context.Context) ([]string, error) {
	return s.registry.Tenants(ctx)
}

// Snapshot returns the tenant's prompt and cards.
func (s *Service) Snapshot(ctx context.Context, tenantID string) (Snapshot, error) {
	store, err := s.registry.Store(ctx, tenantID)
	if err != nil {
		return Snapshot{}, err
	}
	return store.Snapshot(), nil
}

// SetPrompt replaces the tenant's prompt.
func (s *Service) SetPrompt(ctx context.Context, tenantID, text string) (Snapshot, error) {
	store, err := s.registry.Store(ctx, tenantID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := store.SetPrompt(ctx, text); err != nil {
		return store.Snapshot(), err
	}
	s.log(ctx, tenantID, "", activity.TypePromptSet, "prompt set")
	return store.Snapshot(), nil
}

// AddOutline puts a new card titled title at the front of the list.
func (s *Service) AddOutline(ctx context.Context, tenantID, title string) (OutlineCard, error) {
	_, ed, err := s.Editor(ctx, tenantID)
	if err != nil {
		return OutlineCard{}, err
	}
	front := 0
	card, err := ed.InsertAt(ctx, &front, title)
	if err != nil {
		return card, err
	}
	s.log(ctx, tenantID, card.ID, activity.TypeCardInserted, fmt.Sprintf("added %q", title))
	return card, nil
}

// ReplaceOutlines replaces the card list verbatim.
func (s *Service) ReplaceOutlines(ctx context.Context, tenantID string, cards []OutlineCard) error {
	for i := range cards {
		if strings.TrimSpace(cards[i].ID) == "" {
			return fmt.Errorf("%w: card %d has no id", ErrInvalidCard, i+1)
		}
	}
	_, ed, err := s.Editor(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := ed.Replace(ctx, cards); err != nil {
		return err
	}
	s.log(ctx, tenantID, "", activity.TypeOutlinesReplaced, fmt.Sprintf("replaced with %d outlines", len(cards)))
	return nil
}

// Reset clears the tenant's prompt, cards and editor state.
func (s *Service) Reset(ctx context.Context, tenantID string) error {
	store, ed, err := s.Editor(ctx, tenantID)
	if err != nil {
		return err
	}
	ed.ResetTransient()
	if err := store.Reset(ctx); err != nil {
		return err
	}
	s.log(ctx, tenantID, "", activity.TypeOutlineReset, "outline reset")
	return nil
}

// InsertCard inserts a card after the 1-based position anchor, or appends it
// when anchor is nil.
func (s *Service) InsertCard(ctx context.Context, tenantID string, anchor *int, title string) (OutlineCard, error) {
	_, ed, err := s.Editor(ctx, tenantID)
	if err != nil {
		return OutlineCard{}, err
	}
	card, err := ed.InsertAt(ctx, anchor, title)
	if err != nil {
		return card, err
	}
	s.log(ctx, tenantID, card.ID, activity.TypeCardInserted, fmt.Sprintf("inserted %q at %d", title, card.Order))
	return card, nil
}

// DeleteCard removes a card. It reports whether a card was removed.
func (s *Service) DeleteCard(ctx context.Context, tenantID, id string) (bool, error) {
	_, ed, err := s.Editor(ctx, tenantID)
	if err != nil {
		return false, err
	}
	removed, err := ed.Delete(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	s.log(ctx, tenantID, id, activity.TypeCardDeleted, "card deleted")
	return true, nil
}

// MoveCard moves a card to the insertion point target. It reports whether the
// order changed.
func (s *Service) MoveCard(ctx context.Context, tenantID, id string, target int) (bool, error) {
	_, ed, err := s.Editor(ctx, tenantID)
	if err != nil {
		return false, err
	}
	moved, err := ed.Move(ctx, id, target)
	if err != nil || !moved {
		return moved, err
	}
	s.log(ctx, tenantID, id, activity.TypeCardMoved, fmt.Sprintf("moved to %d", target))
	return true, nil
}

// DragCard applies a complete drag gesture as one commit.
func (s *Service) DragCard(ctx context.Context, tenantID string, req DragRequest) (bool, error) {
	_, ed, err := s.Editor(ctx, tenantID)
	if err != nil {
		return false, err
	}
	target, moved, err := ed.Drag(ctx, req.ID, req.HoverIndex, req.PointerY, req.Box)
	if err != nil || !moved {
		return moved, err
	}
	s.log(ctx, tenantID, req.ID, activity.TypeCardMoved, fmt.Sprintf("dragged to %d", target))
	return true, nil
}

// EditCard replaces a card's title.
func (s *Service) EditCard(ctx context.Context, tenantID, id, title string) (bool, error) {
	_, ed, err := s.Editor(ctx, tenantID)
	if err != nil {
		return false, err
	}
	edited, err := ed.CommitEdit(ctx, id, title)
	if err != nil || !edited {
		return edited, err
	}
	s.log(ctx, tenantID, id, activity.TypeCardEdited, fmt.Sprintf("renamed to %q", title))
	return true, nil
}

// Subscribe registers fn for the tenant's committed snapshots and returns the
// snapshot they follow.
func (s *Service) Subscribe(ctx context.Context, tenantID string, fn func(Snapshot)) (Snapshot, func(), error) {
	store, err := s.registry.Store(ctx, tenantID)
	if err != nil {
		return Snapshot{}, nil, err
	}
	current, unsubscribe := store.Subscribe(fn)
	return current, unsubscribe, nil
}

func (s *Service) log(ctx context.Context, tenantID, cardID string, typ activity.ActivityType, summary string) {
	if s.activities == nil {
		return
	}
	err := s.activities.Log(ctx, tenantID, &activity.ActivityEntry{
		CardID:       cardID,
		ActivityType: typ,
		Summary:      summary,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("logging outline activity", "type", typ, "error", err)
	}
}
