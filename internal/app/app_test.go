package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rpggio/deckline/internal/app"
	"github.com/rpggio/deckline/internal/config"
	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/deck"
	"github.com/rpggio/deckline/internal/domain/generation"
	"github.com/rpggio/deckline/internal/domain/project"
	"github.com/rpggio/deckline/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type cannedGenerator struct {
	titles []string
}

func (g cannedGenerator) GenerateOutlines(_ context.Context, _ string, count int) ([]string, error) {
	if count < len(g.titles) {
		return g.titles[:count], nil
	}
	return g.titles, nil
}

func newTestApp(t *testing.T, opts ...app.Option) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.DB.Path = ":memory:"
	cfg.Autosave.QuietPeriod = time.Hour

	a, err := app.New(context.Background(), cfg, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestApp_OutlineToDeck(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, app.WithGenerator(cannedGenerator{titles: []string{"Hook", "Problem", "Answer"}}))

	cards, err := a.Generation.Generate(ctx, "tenant1", generation.Request{Prompt: "pitch", Count: 3})
	require.NoError(t, err)
	require.Len(t, cards, 3)

	stored, err := sqlite.NewSnapshotRepository(a.DB).ForKey("outline-store/tenant1").Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "pitch", stored.CurrentPrompt)
	require.Equal(t, cards, stored.Outlines)

	proj, err := a.Projects.Create(ctx, "tenant1", project.CreateRequest{Outlines: cards, Prompt: stored.CurrentPrompt})
	require.NoError(t, err)
	require.Equal(t, "Hook", proj.Title)

	sess, err := a.Decks.Open(ctx, "tenant1", proj.ID)
	require.NoError(t, err)
	moved, err := sess.Editor().Move(ctx, proj.Slides[2].ID, 0)
	require.NoError(t, err)
	require.True(t, moved)
	require.True(t, sess.Status().Pending)
	require.NoError(t, sess.Flush(ctx))

	saved, err := a.Projects.Get(ctx, "tenant1", proj.ID)
	require.NoError(t, err)
	require.Equal(t, "Answer", saved.Slides[0].Title)
	var doc deck.Document
	require.NoError(t, json.Unmarshal(saved.Content, &doc))
	require.Equal(t, proj.ID, doc.ProjectID)
	require.Len(t, doc.Slides, 3)

	savedType := activity.TypeDocumentSaved
	entries, err := a.Activity.GetRecentActivity(ctx, "tenant1", activity.ListActivityOptions{ActivityType: &savedType})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, proj.ID, entries[0].ProjectID)
}

func TestApp_GenerationUnavailableWithoutKey(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	_, err := a.Generation.Generate(ctx, "tenant1", generation.Request{Prompt: "anything"})
	require.ErrorIs(t, err, generation.ErrGeneratorUnavailable)

	snap, err := a.Outlines.Snapshot(ctx, "tenant1")
	require.NoError(t, err)
	require.Empty(t, snap.CurrentPrompt)
}

func TestApp_MCPServerRequiresResolver(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	require.NoError(t, a.APIKeys.Add(ctx, "secret", "tenant1", "test"))

	tenant, err := a.APIKeys.ResolveTenant(ctx, "secret")
	require.NoError(t, err)
	require.Equal(t, "tenant1", tenant)
	require.NotNil(t, a.MCPServer("http"))
}
