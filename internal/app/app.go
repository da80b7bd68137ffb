// Package app wires the storage backends and domain services described by a
// config.Config. The server, the CLI and the functional test server share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/deckline/internal/autosave"
	"github.com/rpggio/deckline/internal/config"
	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/rpggio/deckline/internal/domain/deck"
	"github.com/rpggio/deckline/internal/domain/generation"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/domain/project"
	"github.com/rpggio/deckline/internal/gemini"
	"github.com/rpggio/deckline/internal/mcp"
	"github.com/rpggio/deckline/internal/redisstore"
	"github.com/rpggio/deckline/internal/sqlite"
)

// App holds the opened backends and the services built on them.
type App struct {
	Config config.Config
	Logger *slog.Logger

	DB      *sqlite.DB
	APIKeys *sqlite.APIKeyRepository

	Activity   *activity.Service
	Outlines   *outline.Service
	Generation *generation.Service
	Projects   *project.Service
	Decks      *deck.Manager

	closers []func() error
}

// Option adjusts how an App is built.
type Option func(*buildOptions)

type buildOptions struct {
	generator generation.Generator
}

// WithGenerator replaces the configured outline generator.
func WithGenerator(g generation.Generator) Option {
	return func(o *buildOptions) { o.generator = g }
}

// New opens the database and snapshot backend and builds every service.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, DB: db}
	a.closers = append(a.closers, db.Close)

	if err := db.RunMigrations(); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	snapshots, err := a.snapshotFactory(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	generator := o.generator
	if generator == nil {
		generator = a.generator(ctx)
	}

	a.APIKeys = sqlite.NewAPIKeyRepository(db)
	a.Activity = activity.NewService(sqlite.NewActivityRepository(db), logger)

	registry := outline.NewRegistry(snapshots, cfg.Snapshot.Namespace, logger)
	a.Outlines = outline.NewService(registry, a.Activity, logger)

	a.Generation = generation.NewService(generator, registry, a.Activity, logger)
	if cfg.Generator.DefaultCount > 0 {
		a.Generation.DefaultCount = cfg.Generator.DefaultCount
	}

	a.Projects = project.NewService(sqlite.NewProjectRepository(db), a.Activity, logger)
	a.Decks = deck.NewManager(a.Projects, a.Activity, autosave.Options{
		QuietPeriod: cfg.Autosave.QuietPeriod,
		MaxTries:    cfg.Autosave.MaxTries,
		Logger:      logger,
	}, logger)

	return a, nil
}

// Services returns the MCP view of the app's services.
func (a *App) Services() mcp.Services {
	return mcp.Services{
		Outlines:   a.Outlines,
		Generation: a.Generation,
		Projects:   a.Projects,
		Decks:      a.Decks,
		Activity:   a.Activity,
	}
}

// Handler returns an MCP handler over the app's services.
func (a *App) Handler() *mcp.Handler {
	return mcp.NewHandler(a.Services())
}

// MCPServer builds the MCP server for the given transport mode.
func (a *App) MCPServer(transportMode string) *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services:      a.Services(),
		Resolver:      a.APIKeys,
		AuthEnabled:   a.Config.Auth.Enabled,
		TransportMode: transportMode,
		Logger:        a.Logger,
	})
}

// Close flushes open decks and releases the backends.
func (a *App) Close(ctx context.Context) error {
	if a.Decks != nil {
		a.Decks.Shutdown(ctx)
	}
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) snapshotFactory(ctx context.Context) (outline.SnapshotStoreFactory, error) {
	switch a.Config.Snapshot.Backend {
	case "redis":
		repo, err := redisstore.New(ctx, redisstore.Options{
			Addr:     a.Config.Snapshot.RedisAddr,
			Password: a.Config.Snapshot.RedisPassword,
			DB:       a.Config.Snapshot.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting snapshot backend: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	default:
		return sqlite.NewSnapshotRepository(a.DB), nil
	}
}

func (a *App) generator(ctx context.Context) generation.Generator {
	if a.Config.Generator.APIKey == "" {
		a.info("outline generation disabled", "reason", "no api key")
		return generation.Unavailable{}
	}
	g, err := gemini.NewGenerator(ctx, a.Config.Generator.APIKey, a.Config.Generator.Model, a.Logger)
	if err != nil {
		if a.Logger != nil {
			a.Logger.Warn("outline generation disabled", "error", err)
		}
		return generation.Unavailable{}
	}
	return g
}

func (a *App) info(msg string, args ...any) {
	if a.Logger != nil {
		a.Logger.Info(msg, args...)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
