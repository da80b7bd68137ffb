package generation

import (
	"context"

	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/outline"
)

// Generator produces outline titles for a prompt.
type Generator interface {
	GenerateOutlines(ctx context.Context, prompt string, count int) ([]string, error)
}

// StoreProvider resolves the outline store of a tenant.
type StoreProvider interface {
	Store(ctx context.Context, tenantID string) (*outline.Store, error)
}

// ActivityRepository logs generation activities.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}

// Unavailable is the Generator used when no model is configured.
type Unavailable struct{}

// GenerateOutlines always fails with ErrGeneratorUnavailable.
func (Unavailable) GenerateOutlines(context.Context, string, int) ([]string, error) {
	return nil, ErrGeneratorUnavailable
}
