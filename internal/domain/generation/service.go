// Package generation turns a prompt into outline cards through an external
// Generator and commits them to the tenant's outline store.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/outline"
)

const (
	// DefaultCount is the number of outlines requested when neither the
	// request nor the service sets one.
	DefaultCount = 6
	// MaxCount caps the number of outlines per request.
	MaxCount = 20
)

// Service coordinates outline generation.
type Service struct {
	generator  Generator
	stores     StoreProvider
	activities ActivityRepository
	logger     *slog.Logger
	newID      func() string

	// DefaultCount is used when a request does not ask for a count.
	DefaultCount int
}

// NewService creates a generation service. activities may be nil.
func NewService(generator Generator, stores StoreProvider, activities ActivityRepository, logger *slog.Logger) *Service {
	if generator == nil {
		generator = Unavailable{}
	}
	return &Service{
		generator:    generator,
		stores:       stores,
		activities:   activities,
		logger:       logger,
		newID:        uuid.NewString,
		DefaultCount: DefaultCount,
	}
}

// Request is an outline generation request.
type Request struct {
	Prompt string
	Count  int
}

// Generate asks the generator for titles and replaces the tenant's prompt and
// outline list with the result. The store is left untouched on failure.
func (s *Service) Generate(ctx context.Context, tenantID string, req Request) ([]outline.OutlineCard, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	count := req.Count
	if count <= 0 {
		count = s.DefaultCount
	}
	if count <= 0 {
		count = DefaultCount
	}
	if count > MaxCount {
		count = MaxCount
	}

	store, err := s.stores.Store(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("opening outline store: %w", err)
	}

	titles, err := s.generator.GenerateOutlines(ctx, prompt, count)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("outline generation failed", "tenant_id", tenantID, "error", err)
		}
		if errors.Is(err, ErrGeneratorUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	cards := make([]outline.OutlineCard, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		cards = append(cards, outline.OutlineCard{ID: s.newID(), Title: title, Order: len(cards) + 1})
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no titles returned", ErrGenerationFailed)
	}

	if err := store.ReplaceSnapshot(ctx, outline.Snapshot{CurrentPrompt: req.Prompt, Outlines: cards}); err != nil {
		return nil, fmt.Errorf("storing generated outlines: %w", err)
	}

	s.log(ctx, tenantID, fmt.Sprintf("generated %d outlines", len(cards)))
	return cards, nil
}

func (s *Service) log(ctx context.Context, tenantID, summary string) {
	if s.activities == nil {
		return
	}
	err := s.activities.Log(ctx, tenantID, &activity.ActivityEntry{
		ActivityType: activity.TypeOutlinesGenerated,
		Summary:      summary,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("logging generation activity", "tenant_id", tenantID, "error", err)
	}
}
