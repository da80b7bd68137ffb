package deck

import (
	"context"

	"github.com/rpggio/deckline/internal/autosave"
	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/project"
)

// Projects loads and persists project slides.
type Projects interface {
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
	SaveContent(ctx context.Context, tenantID, id string, content []byte) error
	ReplaceSlides(ctx context.Context, tenantID, id string, slides []project.Slide) error
}

// Scheduler debounces document saves.
type Scheduler interface {
	Schedule(docID string, content []byte)
	Flush(ctx context.Context, docID string) error
	Cancel(docID string)
	Status(docID string) autosave.Status
}

// ActivityRepository logs deck activities.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}
