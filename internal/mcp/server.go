package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/deck"
	"github.com/rpggio/deckline/internal/domain/generation"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/domain/project"
)

// OutlineService defines outline operations needed by MCP.
type OutlineService interface {
	Snapshot(ctx context.Context, tenantID string) (outline.Snapshot, error)
	SetPrompt(ctx context.Context, tenantID, text string) (outline.Snapshot, error)
	AddOutline(ctx context.Context, tenantID, title string) (outline.OutlineCard, error)
	ReplaceOutlines(ctx context.Context, tenantID string, cards []outline.OutlineCard) error
	Reset(ctx context.Context, tenantID string) error
	InsertCard(ctx context.Context, tenantID string, anchor *int, title string) (outline.OutlineCard, error)
	DeleteCard(ctx context.Context, tenantID, id string) (bool, error)
	MoveCard(ctx context.Context, tenantID, id string, target int) (bool, error)
	DragCard(ctx context.Context, tenantID string, req outline.DragRequest) (bool, error)
	EditCard(ctx context.Context, tenantID, id, title string) (bool, error)
}

// GenerationService defines outline generation needed by MCP.
type GenerationService interface {
	Generate(ctx context.Context, tenantID string, req generation.Request) ([]outline.OutlineCard, error)
}

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, tenantID string, req project.CreateRequest) (*project.Project, error)
	List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error)
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
}

// DeckService defines slide editing sessions needed by MCP.
type DeckService interface {
	Open(ctx context.Context, tenantID, projectID string) (*deck.Session, error)
	Close(tenantID, projectID string) bool
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Outlines   OutlineService
	Generation GenerationService
	Projects   ProjectService
	Decks      DeckService
	Activity   ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      TenantResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	DefaultTenant string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "deckline",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	defaultTenant := cfg.DefaultTenant
	if defaultTenant == "" {
		defaultTenant = "default"
	}

	// Stdio is local only and never authenticates.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(defaultTenant))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services))

	return server
}
