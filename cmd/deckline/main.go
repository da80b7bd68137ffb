// Command deckline edits a tenant's outline and projects directly in the
// database, without a running server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rpggio/deckline/internal/app"
	"github.com/rpggio/deckline/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	dbPath  string
	tenant  string
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "deckline",
		Short:         "Edit presentation outlines and projects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (defaults to DECKLINE_DB_PATH or deckline.db)")
	root.PersistentFlags().StringVarP(&opts.tenant, "tenant", "t", "default", "tenant to operate on")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newOutlineCmd(opts),
		newProjectCmd(opts),
		newKeyCmd(opts),
	)
	return root
}

// withApp opens the configured database for the duration of fn.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.dbPath != "" {
		cfg.DB.Path = opts.dbPath
	}

	var logger *slog.Logger
	if opts.verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)
	if err := a.Close(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
