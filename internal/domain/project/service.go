package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/ordering"
	"github.com/rpggio/deckline/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new project service. activities may be nil.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		activities: activities,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ID       string
	Title    string
	Prompt   string
	Outlines []outline.OutlineCard
}

// Create finalizes outlines into a project with one seeded slide per card.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (*Project, error) {
	if len(req.Outlines) == 0 {
		return nil, ErrEmptyOutlines
	}

	cards := ordering.Renumber(req.Outlines)
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = cards[0].Title
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	slides := make([]Slide, 0, len(cards))
	for _, card := range cards {
		slides = append(slides, Slide{ID: uuid.NewString(), Title: card.Title, Order: card.Order})
	}

	now := s.now()
	proj := &Project{
		ID:        id,
		TenantID:  tenantID,
		Title:     title,
		Prompt:    req.Prompt,
		Outlines:  cards,
		Slides:    slides,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, tenantID, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.log(ctx, tenantID, proj.ID, activity.TypeProjectCreated,
		fmt.Sprintf("created project %q from %d outlines", proj.Title, len(cards)))
	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns project summaries.
func (s *Service) List(ctx context.Context, tenantID string) ([]ProjectSummary, error) {
	list, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return list, nil
}

// SaveContent stores the serialized document of a project.
func (s *Service) SaveContent(ctx context.Context, tenantID, id string, content []byte) error {
	if len(content) > 0 && !json.Valid(content) {
		return fmt.Errorf("%w: content is not valid JSON", ErrInvalidInput)
	}
	if err := s.repo.SaveContent(ctx, tenantID, id, content); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("saving project content: %w", err)
	}
	return nil
}

// ReplaceSlides stores the full slide list of a project, renumbered.
func (s *Service) ReplaceSlides(ctx context.Context, tenantID, id string, slides []Slide) error {
	for _, slide := range slides {
		if strings.TrimSpace(slide.ID) == "" {
			return fmt.Errorf("%w: slide id is required", ErrInvalidInput)
		}
	}
	if err := s.repo.ReplaceSlides(ctx, tenantID, id, ordering.Renumber(slides)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("replacing slides: %w", err)
	}
	return nil
}

func (s *Service) log(ctx context.Context, tenantID, projectID string, typ activity.ActivityType, summary string) {
	if s.activities == nil {
		return
	}
	err := s.activities.Log(ctx, tenantID, &activity.ActivityEntry{
		ProjectID:    projectID,
		ActivityType: typ,
		Summary:      summary,
		CreatedAt:    s.now(),
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("activity not recorded", "type", typ, "error", err)
	}
}
