package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/rpggio/deckline/internal/app"
	"github.com/rpggio/deckline/internal/domain/project"
	"github.com/spf13/cobra"
)

func newProjectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create and inspect projects",
	}

	var title string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project from the current outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				snap, err := a.Outlines.Snapshot(ctx, opts.tenant)
				if err != nil {
					return err
				}
				proj, err := a.Projects.Create(ctx, opts.tenant, project.CreateRequest{
					Title:    title,
					Prompt:   snap.CurrentPrompt,
					Outlines: snap.Outlines,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), proj.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&title, "title", "", "project title (defaults to the first card)")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				projects, err := a.Projects.List(ctx, opts.tenant)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tSLIDES\tUPDATED")
				for _, p := range projects {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Title, p.SlideCount, p.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a project as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				proj, err := a.Projects.Get(ctx, opts.tenant, args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(proj)
			})
		},
	}

	cmd.AddCommand(create, list, show)
	return cmd
}
