package mocks

import (
	"context"

	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	args := m.Called(ctx, tenantID, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]project.ProjectSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) SaveContent(ctx context.Context, tenantID, id string, content []byte) error {
	args := m.Called(ctx, tenantID, id, content)
	return args.Error(0)
}

func (m *ProjectRepository) ReplaceSlides(ctx context.Context, tenantID, id string, slides []project.Slide) error {
	args := m.Called(ctx, tenantID, id, slides)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SnapshotStore is a mock for outline.SnapshotStore.
type SnapshotStore struct {
	mock.Mock
}

func (m *SnapshotStore) Load(ctx context.Context) (outline.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(outline.Snapshot)
	return snap, args.Error(1)
}

func (m *SnapshotStore) Save(ctx context.Context, snap outline.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// OutlineGenerator is a mock for generation.Generator.
type OutlineGenerator struct {
	mock.Mock
}

func (m *OutlineGenerator) GenerateOutlines(ctx context.Context, prompt string, count int) ([]string, error) {
	args := m.Called(ctx, prompt, count)
	if titles, ok := args.Get(0).([]string); ok {
		return titles, args.Error(1)
	}
	return nil, args.Error(1)
}
