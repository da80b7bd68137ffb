package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/deckline/internal/autosave"
	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/deck"
	"github.com/rpggio/deckline/internal/domain/generation"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/domain/project"
	"github.com/stretchr/testify/require"
)

type generationStub struct {
	generateFn func(context.Context, string, generation.Request) ([]outline.OutlineCard, error)
}

func (g generationStub) Generate(ctx context.Context, tenantID string, req generation.Request) ([]outline.OutlineCard, error) {
	return g.generateFn(ctx, tenantID, req)
}

type projectStub struct {
	createFn func(context.Context, string, project.CreateRequest) (*project.Project, error)
	listFn   func(context.Context, string) ([]project.ProjectSummary, error)
	getFn    func(context.Context, string, string) (*project.Project, error)
}

func (p projectStub) Create(ctx context.Context, tenantID string, req project.CreateRequest) (*project.Project, error) {
	return p.createFn(ctx, tenantID, req)
}
func (p projectStub) List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error) {
	return p.listFn(ctx, tenantID)
}
func (p projectStub) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	return p.getFn(ctx, tenantID, id)
}
func (p projectStub) SaveContent(context.Context, string, string, []byte) error {
	return nil
}
func (p projectStub) ReplaceSlides(context.Context, string, string, []project.Slide) error {
	return nil
}

type activityStub struct {
	listFn func(context.Context, string, activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

func (a activityStub) GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	return a.listFn(ctx, tenantID, opts)
}

func newTestHandler(t *testing.T, projects projectStub, gen generationStub, acts activityStub) (*Handler, *outline.Service) {
	t.Helper()
	outlines := outline.NewService(outline.NewRegistry(nil, "", nil), nil, nil)
	decks := deck.NewManager(projects, nil, autosave.Options{QuietPeriod: time.Hour}, nil)
	t.Cleanup(func() { decks.Shutdown(context.Background()) })
	return NewHandler(Services{
		Outlines:   outlines,
		Generation: gen,
		Projects:   projects,
		Decks:      decks,
		Activity:   acts,
	}), outlines
}

func TestHandler_OutlineCommands(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"
	handler, _ := newTestHandler(t, projectStub{}, generationStub{}, activityStub{})

	result, err := handler.Handle(ctx, tenantID, "set_prompt", mustJSON(t, SetPromptParams{Prompt: "rivers"}))
	require.NoError(t, err)
	require.Equal(t, "rivers", result.(OutlineResponse).Prompt)

	result, err = handler.Handle(ctx, tenantID, "insert_card", mustJSON(t, InsertCardParams{Title: "Source"}))
	require.NoError(t, err)
	source := result.(CardChangeResponse).Card
	require.NotNil(t, source)

	result, err = handler.Handle(ctx, tenantID, "insert_card", mustJSON(t, InsertCardParams{Title: "Delta"}))
	require.NoError(t, err)
	delta := result.(CardChangeResponse).Card

	after := 1
	result, err = handler.Handle(ctx, tenantID, "insert_card", mustJSON(t, InsertCardParams{Title: "Bends", After: &after}))
	require.NoError(t, err)
	change := result.(CardChangeResponse)
	require.Equal(t, []string{"Source", "Bends", "Delta"}, titles(change.Outlines))

	result, err = handler.Handle(ctx, tenantID, "move_card", mustJSON(t, MoveCardParams{ID: delta.ID, Target: 0}))
	require.NoError(t, err)
	require.True(t, result.(CardChangeResponse).Changed)
	require.Equal(t, []string{"Delta", "Source", "Bends"}, titles(result.(CardChangeResponse).Outlines))

	result, err = handler.Handle(ctx, tenantID, "drag_card", mustJSON(t, DragCardParams{
		ID: delta.ID, HoverIndex: 1, PointerY: 30, RowTop: 20, RowHeight: 10,
	}))
	require.NoError(t, err)
	require.Equal(t, []string{"Source", "Delta", "Bends"}, titles(result.(CardChangeResponse).Outlines))

	result, err = handler.Handle(ctx, tenantID, "edit_card", mustJSON(t, EditCardParams{ID: source.ID, Title: "Spring"}))
	require.NoError(t, err)
	require.Equal(t, "Spring", result.(CardChangeResponse).Outlines[0].Title)

	result, err = handler.Handle(ctx, tenantID, "delete_card", mustJSON(t, CardIDParams{ID: "missing"}))
	require.NoError(t, err)
	require.False(t, result.(CardChangeResponse).Changed)
	require.Len(t, result.(CardChangeResponse).Outlines, 3)

	result, err = handler.Handle(ctx, tenantID, "add_outline", mustJSON(t, AddOutlineParams{Title: "Intro"}))
	require.NoError(t, err)
	require.Equal(t, "Intro", result.(CardChangeResponse).Outlines[0].Title)

	result, err = handler.Handle(ctx, tenantID, "reset_outline", nil)
	require.NoError(t, err)
	require.Equal(t, OutlineResponse{Outlines: []outline.OutlineCard{}}, result)
}

func TestHandler_ReplaceOutlines(t *testing.T) {
	ctx := context.Background()
	handler, _ := newTestHandler(t, projectStub{}, generationStub{}, activityStub{})

	cards := []outline.OutlineCard{{ID: "a", Title: "A", Order: 1}, {ID: "b", Title: "B", Order: 2}}
	result, err := handler.Handle(ctx, "tenant1", "replace_outlines", mustJSON(t, ReplaceOutlinesParams{Outlines: cards}))
	require.NoError(t, err)
	require.Equal(t, cards, result.(OutlineResponse).Outlines)

	_, err = handler.Handle(ctx, "tenant1", "replace_outlines", mustJSON(t, ReplaceOutlinesParams{
		Outlines: []outline.OutlineCard{{Title: "no id"}},
	}))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_INPUT", apiErr.Code)
}

func TestHandler_GenerateOutlines(t *testing.T) {
	ctx := context.Background()
	var outlines *outline.Service
	gen := generationStub{generateFn: func(ctx context.Context, tenantID string, req generation.Request) ([]outline.OutlineCard, error) {
		if req.Prompt == "" {
			return nil, generation.ErrEmptyPrompt
		}
		cards := []outline.OutlineCard{{ID: "g1", Title: "Generated", Order: 1}}
		require.NoError(t, outlines.ReplaceOutlines(ctx, tenantID, cards))
		return cards, nil
	}}
	handler, svc := newTestHandler(t, projectStub{}, gen, activityStub{})
	outlines = svc

	result, err := handler.Handle(ctx, "tenant1", "generate_outlines", mustJSON(t, GenerateOutlinesParams{Prompt: "comets", Count: 1}))
	require.NoError(t, err)
	require.Equal(t, "Generated", result.(OutlineResponse).Outlines[0].Title)

	_, err = handler.Handle(ctx, "tenant1", "generate_outlines", mustJSON(t, GenerateOutlinesParams{}))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "EMPTY_PROMPT", apiErr.Code)
}

func TestHandler_ProjectCommands(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	var created project.CreateRequest
	projects := projectStub{
		createFn: func(_ context.Context, _ string, req project.CreateRequest) (*project.Project, error) {
			created = req
			return &project.Project{ID: "p1", Title: req.Outlines[0].Title, Outlines: req.Outlines}, nil
		},
		listFn: func(_ context.Context, _ string) ([]project.ProjectSummary, error) {
			return nil, nil
		},
		getFn: func(_ context.Context, _ string, id string) (*project.Project, error) {
			if id != "p1" {
				return nil, project.ErrProjectNotFound
			}
			return &project.Project{ID: id, Title: "Proj"}, nil
		},
	}
	handler, outlines := newTestHandler(t, projects, generationStub{}, activityStub{})
	_, err := outlines.SetPrompt(ctx, tenantID, "tides")
	require.NoError(t, err)
	_, err = outlines.InsertCard(ctx, tenantID, nil, "Moon")
	require.NoError(t, err)

	result, err := handler.Handle(ctx, tenantID, "create_project", nil)
	require.NoError(t, err)
	require.Equal(t, "p1", result.(*project.Project).ID)
	require.Equal(t, "tides", created.Prompt)
	require.Len(t, created.Outlines, 1)

	result, err = handler.Handle(ctx, tenantID, "list_projects", nil)
	require.NoError(t, err)
	require.Equal(t, []project.ProjectSummary{}, result)

	_, err = handler.Handle(ctx, tenantID, "get_project", mustJSON(t, GetProjectParams{ID: "p1"}))
	require.NoError(t, err)

	_, err = handler.Handle(ctx, tenantID, "get_project", mustJSON(t, GetProjectParams{ID: "nope"}))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "PROJECT_NOT_FOUND", apiErr.Code)
}

func TestHandler_DeckCommands(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"
	projects := projectStub{
		getFn: func(_ context.Context, _ string, id string) (*project.Project, error) {
			return &project.Project{ID: id, Title: "Deck", Slides: []project.Slide{
				{ID: "s1", Title: "One", Order: 1},
				{ID: "s2", Title: "Two", Order: 2},
			}}, nil
		},
	}
	handler, _ := newTestHandler(t, projects, generationStub{}, activityStub{})

	result, err := handler.Handle(ctx, tenantID, "open_deck", mustJSON(t, DeckParams{ProjectID: "p1"}))
	require.NoError(t, err)
	require.Len(t, result.(DeckResponse).Slides, 2)
	require.False(t, result.(DeckResponse).Status.Pending)

	result, err = handler.Handle(ctx, tenantID, "move_slide", mustJSON(t, MoveSlideParams{ProjectID: "p1", ID: "s2", Target: 0}))
	require.NoError(t, err)
	deckResp := result.(DeckResponse)
	require.True(t, deckResp.Changed)
	require.Equal(t, "s2", deckResp.Slides[0].ID)
	require.True(t, deckResp.Status.Pending)

	result, err = handler.Handle(ctx, tenantID, "insert_slide", mustJSON(t, InsertSlideParams{ProjectID: "p1", Title: "Three"}))
	require.NoError(t, err)
	require.Equal(t, 3, result.(DeckResponse).Slide.Order)

	title := "Uno"
	result, err = handler.Handle(ctx, tenantID, "edit_slide", mustJSON(t, EditSlideParams{
		ProjectID: "p1", ID: "s1", Title: &title, Body: json.RawMessage(`{"blocks":[]}`),
	}))
	require.NoError(t, err)
	require.Equal(t, "Uno", result.(DeckResponse).Slides[1].Title)
	require.JSONEq(t, `{"blocks":[]}`, string(result.(DeckResponse).Slides[1].Body))

	result, err = handler.Handle(ctx, tenantID, "delete_slide", mustJSON(t, SlideIDParams{ProjectID: "p1", ID: "s2"}))
	require.NoError(t, err)
	require.Len(t, result.(DeckResponse).Slides, 2)

	result, err = handler.Handle(ctx, tenantID, "save_status", mustJSON(t, SaveStatusParams{ProjectID: "p1", Flush: true}))
	require.NoError(t, err)
	status := result.(autosave.Status)
	require.False(t, status.Pending)
	require.Empty(t, status.LastError)
	require.False(t, status.LastSavedAt.IsZero())

	result, err = handler.Handle(ctx, tenantID, "close_deck", mustJSON(t, DeckParams{ProjectID: "p1"}))
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"closed": true}, result)
}

func TestHandler_RecentActivity(t *testing.T) {
	ctx := context.Background()
	var got activity.ListActivityOptions
	acts := activityStub{listFn: func(_ context.Context, _ string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
		got = opts
		return []activity.ActivityEntry{{ActivityType: activity.TypeCardMoved, CardID: "c1", Summary: "moved"}}, nil
	}}
	handler, _ := newTestHandler(t, projectStub{}, generationStub{}, acts)

	result, err := handler.Handle(ctx, "tenant1", "get_recent_activity", mustJSON(t, GetRecentActivityParams{
		ProjectID: "p1", Type: "card_moved", Limit: 5,
	}))
	require.NoError(t, err)
	require.Equal(t, "p1", got.ProjectID)
	require.Equal(t, activity.TypeCardMoved, *got.ActivityType)
	require.Equal(t, 5, got.Limit)
	require.Equal(t, "c1", result.([]ActivityEntryResponse)[0].CardID)
}

func TestHandler_UnknownMethodAndBadParams(t *testing.T) {
	ctx := context.Background()
	handler, _ := newTestHandler(t, projectStub{}, generationStub{}, activityStub{})

	_, err := handler.Handle(ctx, "tenant1", "activate", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "UNKNOWN_METHOD", apiErr.Code)

	_, err = handler.Handle(ctx, "tenant1", "move_card", json.RawMessage(`{"id":1}`))
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_INPUT", apiErr.Code)
}

func TestMapError(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("boom")))
	require.Equal(t, "GENERATION_FAILED", MapError(errors.Join(generation.ErrGenerationFailed, errors.New("503"))).Code)
	require.Equal(t, "PERSIST_FAILED", MapError(outline.ErrPersist).Code)
	require.Equal(t, "EMPTY_OUTLINES", MapError(project.ErrEmptyOutlines).Code)
	require.Equal(t, "DECK_CLOSED", MapError(deck.ErrSessionClosed).Code)
}

func titles(cards []outline.OutlineCard) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Title)
	}
	return out
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
