package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpggio/deckline/internal/app"
	"github.com/spf13/cobra"
)

func newKeyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage API keys for the HTTP server",
	}

	var description string
	add := &cobra.Command{
		Use:   "add [token]",
		Short: "Register a bearer token for the tenant; prints a new token when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := uuid.NewString()
			if len(args) == 1 {
				token = args[0]
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := a.APIKeys.Add(ctx, token, opts.tenant, description); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	add.Flags().StringVar(&description, "description", "", "note stored with the key")

	cmd.AddCommand(add)
	return cmd
}
