package project

import (
	"context"

	"github.com/rpggio/deckline/internal/domain/activity"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, tenantID string, proj *Project) error
	Get(ctx context.Context, tenantID, id string) (*Project, error)
	List(ctx context.Context, tenantID string) ([]ProjectSummary, error)
	SaveContent(ctx context.Context, tenantID, id string, content []byte) error
	ReplaceSlides(ctx context.Context, tenantID, id string, slides []Slide) error
}

// ActivityRepository logs project activities.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}
