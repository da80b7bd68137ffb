package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rpggio/deckline/internal/app"
	"github.com/rpggio/deckline/internal/domain/generation"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/spf13/cobra"
)

func newOutlineCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Show and edit the outline",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the prompt and cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				snap, err := a.Outlines.Snapshot(ctx, opts.tenant)
				if err != nil {
					return err
				}
				printOutline(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}

	prompt := &cobra.Command{
		Use:   "prompt <text>",
		Short: "Set the prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				_, err := a.Outlines.SetPrompt(ctx, opts.tenant, args[0])
				return err
			})
		},
	}

	var count int
	generate := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Replace the outline with generated cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if _, err := a.Generation.Generate(ctx, opts.tenant, generation.Request{Prompt: args[0], Count: count}); err != nil {
					return err
				}
				return printCurrent(ctx, cmd.OutOrStdout(), a, opts.tenant)
			})
		},
	}
	generate.Flags().IntVarP(&count, "count", "n", 0, "number of cards (0 uses the configured default)")

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a card at the front",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				card, err := a.Outlines.AddOutline(ctx, opts.tenant, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), card.ID)
				return nil
			})
		},
	}

	var after int
	insert := &cobra.Command{
		Use:   "insert <title>",
		Short: "Insert a card after a position, or append",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var anchor *int
			if cmd.Flags().Changed("after") {
				anchor = &after
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				card, err := a.Outlines.InsertCard(ctx, opts.tenant, anchor, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), card.ID)
				return nil
			})
		},
	}
	insert.Flags().IntVar(&after, "after", 0, "1-based position to insert after; 0 inserts at the front")

	move := &cobra.Command{
		Use:   "move <id> <target>",
		Short: "Move a card to an insertion point between 0 and N",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid target %q: %w", args[1], err)
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				changed, err := a.Outlines.MoveCard(ctx, opts.tenant, args[0], target)
				return reportChange(ctx, cmd.OutOrStdout(), a, opts.tenant, changed, err)
			})
		},
	}

	edit := &cobra.Command{
		Use:   "edit <id> <title>",
		Short: "Rename a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				changed, err := a.Outlines.EditCard(ctx, opts.tenant, args[0], args[1])
				return reportChange(ctx, cmd.OutOrStdout(), a, opts.tenant, changed, err)
			})
		},
	}

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a card",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				changed, err := a.Outlines.DeleteCard(ctx, opts.tenant, args[0])
				return reportChange(ctx, cmd.OutOrStdout(), a, opts.tenant, changed, err)
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Clear the prompt and all cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return a.Outlines.Reset(ctx, opts.tenant)
			})
		},
	}

	tenants := &cobra.Command{
		Use:   "tenants",
		Short: "List tenants with a stored outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				names, err := a.Outlines.Tenants(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(show, prompt, generate, add, insert, move, edit, del, reset, tenants)
	return cmd
}

func reportChange(ctx context.Context, w io.Writer, a *app.App, tenant string, changed bool, err error) error {
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(w, "no change")
		return nil
	}
	return printCurrent(ctx, w, a, tenant)
}

func printCurrent(ctx context.Context, w io.Writer, a *app.App, tenant string) error {
	snap, err := a.Outlines.Snapshot(ctx, tenant)
	if err != nil {
		return err
	}
	printOutline(w, snap)
	return nil
}

func printOutline(w io.Writer, snap outline.Snapshot) {
	if snap.CurrentPrompt != "" {
		fmt.Fprintf(w, "prompt: %s\n", snap.CurrentPrompt)
	}
	if len(snap.Outlines) == 0 {
		fmt.Fprintln(w, "(no cards)")
		return
	}
	for _, card := range snap.Outlines {
		fmt.Fprintf(w, "%d. %s  [%s]\n", card.Order, card.Title, card.ID)
	}
}
