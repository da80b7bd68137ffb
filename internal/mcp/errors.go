package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/deck"
	"github.com/rpggio/deckline/internal/domain/generation"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/domain/project"
	"github.com/rpggio/deckline/internal/editor"
	"github.com/rpggio/deckline/internal/repository"
)

var (
	// ErrUnknownMethod is returned for tool names the handler does not serve.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidParams is returned when tool arguments cannot be decoded.
	ErrInvalidParams = errors.New("invalid params")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, generation.ErrEmptyPrompt):
		return &APIError{Code: "EMPTY_PROMPT", Message: "prompt is empty", RecoveryHint: "Describe the presentation topic"}
	case errors.Is(err, generation.ErrGeneratorUnavailable):
		return &APIError{Code: "GENERATOR_UNAVAILABLE", Message: "no outline generator configured", RecoveryHint: "Add outlines manually or configure an API key"}
	case errors.Is(err, generation.ErrGenerationFailed):
		return &APIError{Code: "GENERATION_FAILED", Message: err.Error(), RecoveryHint: "Retry; the outline was left unchanged"}
	case errors.Is(err, project.ErrEmptyOutlines):
		return &APIError{Code: "EMPTY_OUTLINES", Message: "no outlines to create a project from", RecoveryHint: "Generate or add outlines first"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, editor.ErrNotFound):
		return &APIError{Code: "ITEM_NOT_FOUND", Message: err.Error(), RecoveryHint: "Reload the list; the item may have been deleted"}
	case errors.Is(err, deck.ErrSessionClosed):
		return &APIError{Code: "DECK_CLOSED", Message: "deck session closed", RecoveryHint: "Call open_deck again"}
	case errors.Is(err, outline.ErrPersist):
		return &APIError{Code: "PERSIST_FAILED", Message: err.Error(), RecoveryHint: "The change is kept in memory; retry later to persist it"}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "an item with this id already exists", RecoveryHint: "Omit the id to generate one"}
	case errors.Is(err, outline.ErrInvalidCard),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, ErrInvalidParams):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check the tool's input schema"}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: "UNKNOWN_METHOD", Message: err.Error(), RecoveryHint: "Call tools/list for available tools"}
	default:
		return nil
	}
}
