package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/deck"
	"github.com/rpggio/deckline/internal/domain/generation"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/domain/project"
	"github.com/rpggio/deckline/internal/ordering"
)

// Handler dispatches MCP commands.
type Handler struct {
	outlines   OutlineService
	generation GenerationService
	projects   ProjectService
	decks      DeckService
	activity   ActivityService
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		outlines:   services.Outlines,
		generation: services.Generation,
		projects:   services.Projects,
		decks:      services.Decks,
		activity:   services.Activity,
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, tenantID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "get_outline":
		return h.outline(ctx, tenantID)
	case "set_prompt":
		var req SetPromptParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		snap, err := h.outlines.SetPrompt(ctx, tenantID, req.Prompt)
		if err != nil {
			return nil, mapError(err)
		}
		return outlineResponse(snap), nil
	case "generate_outlines":
		var req GenerateOutlinesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if _, err := h.generation.Generate(ctx, tenantID, generation.Request{Prompt: req.Prompt, Count: req.Count}); err != nil {
			return nil, mapError(err)
		}
		return h.outline(ctx, tenantID)
	case "add_outline":
		var req AddOutlineParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		card, err := h.outlines.AddOutline(ctx, tenantID, req.Title)
		if err != nil {
			return nil, mapError(err)
		}
		return h.cardChange(ctx, tenantID, true, &card)
	case "replace_outlines":
		var req ReplaceOutlinesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.outlines.ReplaceOutlines(ctx, tenantID, req.Outlines); err != nil {
			return nil, mapError(err)
		}
		return h.outline(ctx, tenantID)
	case "reset_outline":
		if err := h.outlines.Reset(ctx, tenantID); err != nil {
			return nil, mapError(err)
		}
		return h.outline(ctx, tenantID)
	case "insert_card":
		var req InsertCardParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		card, err := h.outlines.InsertCard(ctx, tenantID, req.After, req.Title)
		if err != nil {
			return nil, mapError(err)
		}
		return h.cardChange(ctx, tenantID, true, &card)
	case "delete_card":
		var req CardIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		removed, err := h.outlines.DeleteCard(ctx, tenantID, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return h.cardChange(ctx, tenantID, removed, nil)
	case "move_card":
		var req MoveCardParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		moved, err := h.outlines.MoveCard(ctx, tenantID, req.ID, req.Target)
		if err != nil {
			return nil, mapError(err)
		}
		return h.cardChange(ctx, tenantID, moved, nil)
	case "drag_card":
		var req DragCardParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		moved, err := h.outlines.DragCard(ctx, tenantID, outline.DragRequest{
			ID:         req.ID,
			HoverIndex: req.HoverIndex,
			PointerY:   req.PointerY,
			Box:        ordering.Box{Top: req.RowTop, Height: req.RowHeight},
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.cardChange(ctx, tenantID, moved, nil)
	case "edit_card":
		var req EditCardParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		edited, err := h.outlines.EditCard(ctx, tenantID, req.ID, req.Title)
		if err != nil {
			return nil, mapError(err)
		}
		return h.cardChange(ctx, tenantID, edited, nil)
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		createReq := project.CreateRequest{ID: req.ID, Title: req.Title, Outlines: req.Outlines}
		if len(createReq.Outlines) == 0 {
			snap, err := h.outlines.Snapshot(ctx, tenantID)
			if err != nil {
				return nil, mapError(err)
			}
			createReq.Outlines = snap.Outlines
			createReq.Prompt = snap.CurrentPrompt
		}
		proj, err := h.projects.Create(ctx, tenantID, createReq)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "list_projects":
		projects, err := h.projects.List(ctx, tenantID)
		if err != nil {
			return nil, mapError(err)
		}
		if projects == nil {
			projects = []project.ProjectSummary{}
		}
		return projects, nil
	case "get_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.Get(ctx, tenantID, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "open_deck":
		var req DeckParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sess, err := h.decks.Open(ctx, tenantID, req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		return deckResponse(sess, false, nil), nil
	case "close_deck":
		var req DeckParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return map[string]bool{"closed": h.decks.Close(tenantID, req.ProjectID)}, nil
	case "move_slide":
		var req MoveSlideParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.withDeck(ctx, tenantID, req.ProjectID, func(sess *deck.Session) (bool, *project.Slide, error) {
			moved, err := sess.Editor().Move(ctx, req.ID, req.Target)
			return moved, nil, err
		})
	case "insert_slide":
		var req InsertSlideParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.withDeck(ctx, tenantID, req.ProjectID, func(sess *deck.Session) (bool, *project.Slide, error) {
			slide, err := sess.Editor().InsertAt(ctx, req.After, req.Title)
			if err != nil {
				return false, nil, err
			}
			return true, &slide, nil
		})
	case "delete_slide":
		var req SlideIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.withDeck(ctx, tenantID, req.ProjectID, func(sess *deck.Session) (bool, *project.Slide, error) {
			removed, err := sess.Editor().Delete(ctx, req.ID)
			return removed, nil, err
		})
	case "edit_slide":
		var req EditSlideParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.withDeck(ctx, tenantID, req.ProjectID, func(sess *deck.Session) (bool, *project.Slide, error) {
			changed := false
			if req.Title != nil {
				edited, err := sess.Editor().CommitEdit(ctx, req.ID, *req.Title)
				if err != nil {
					return false, nil, err
				}
				changed = edited
			}
			if len(req.Body) > 0 {
				updated, err := sess.UpdateBody(ctx, req.ID, req.Body)
				if err != nil {
					return false, nil, err
				}
				changed = changed || updated
			}
			return changed, nil, nil
		})
	case "save_status":
		var req SaveStatusParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sess, err := h.decks.Open(ctx, tenantID, req.ProjectID)
		if err != nil {
			return nil, mapError(err)
		}
		if req.Flush {
			if err := sess.Flush(ctx); err != nil {
				return nil, mapError(err)
			}
		}
		return sess.Status(), nil
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListActivityOptions{
			ProjectID: req.ProjectID,
			Limit:     req.Limit,
			Offset:    req.Offset,
		}
		if req.Type != "" {
			typ := activity.ActivityType(req.Type)
			opts.ActivityType = &typ
		}
		entries, err := h.activity.GetRecentActivity(ctx, tenantID, opts)
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				Timestamp: entry.CreatedAt,
				Type:      entry.ActivityType,
				ProjectID: entry.ProjectID,
				CardID:    entry.CardID,
				Summary:   entry.Summary,
				Details:   entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, mapError(fmt.Errorf("%w: %s", ErrUnknownMethod, method))
	}
}

func (h *Handler) outline(ctx context.Context, tenantID string) (OutlineResponse, error) {
	snap, err := h.outlines.Snapshot(ctx, tenantID)
	if err != nil {
		return OutlineResponse{}, mapError(err)
	}
	return outlineResponse(snap), nil
}

func (h *Handler) cardChange(ctx context.Context, tenantID string, changed bool, card *outline.OutlineCard) (CardChangeResponse, error) {
	snap, err := h.outlines.Snapshot(ctx, tenantID)
	if err != nil {
		return CardChangeResponse{}, mapError(err)
	}
	return CardChangeResponse{Changed: changed, Card: card, Outlines: nonNilCards(snap.Outlines)}, nil
}

func (h *Handler) withDeck(ctx context.Context, tenantID, projectID string, fn func(*deck.Session) (bool, *project.Slide, error)) (DeckResponse, error) {
	sess, err := h.decks.Open(ctx, tenantID, projectID)
	if err != nil {
		return DeckResponse{}, mapError(err)
	}
	changed, slide, err := fn(sess)
	if err != nil {
		return DeckResponse{}, mapError(err)
	}
	return deckResponse(sess, changed, slide), nil
}

func outlineResponse(snap outline.Snapshot) OutlineResponse {
	return OutlineResponse{Prompt: snap.CurrentPrompt, Outlines: nonNilCards(snap.Outlines)}
}

func deckResponse(sess *deck.Session, changed bool, slide *project.Slide) DeckResponse {
	slides := sess.Items()
	if slides == nil {
		slides = []project.Slide{}
	}
	return DeckResponse{
		ProjectID: sess.ProjectID(),
		Changed:   changed,
		Slide:     slide,
		Slides:    slides,
		Status:    sess.Status(),
	}
}

func nonNilCards(cards []outline.OutlineCard) []outline.OutlineCard {
	if cards == nil {
		return []outline.OutlineCard{}
	}
	return cards
}

func decodeParams(params json.RawMessage, out any) error {
	if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return mapError(fmt.Errorf("%w: %w", ErrInvalidParams, err))
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
