package main

import (
	"context"
	"errors"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"goszakup/internal/cli"
	"goszakup/internal/storage"
)

func newRunsCmd(flags *scopeFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored report runs as JSON",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, cmd *cobra.Command, app *cli.App) error {
			if app.Store == nil {
				return errors.New("run storage is disabled (STORAGE_DRIVER=none)")
			}
			runs, err := app.Store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if runs == nil {
				runs = []storage.Run{}
			}
			body, err := json.MarshalIndent(runs, "", "  ")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(body, '\n'))
			return err
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list (max 200)")
	return cmd
}
