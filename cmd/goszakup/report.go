package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"goszakup/internal/cli"
)

func newReportCmd(flags *scopeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Build the summary report: methods, subjects, terminated contracts, announcements",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, cmd *cobra.Command, app *cli.App) error {
			outcome, err := app.Runner.Report(ctx, app.Config.Scope())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "run %s written to %s\n", outcome.RunID, outcome.SheetRef)
			for _, w := range outcome.Report.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		}),
	}
}

func newContractsCmd(flags *scopeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "Export the contract register",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, cmd *cobra.Command, app *cli.App) error {
			ref, err := app.Runner.Register(ctx, app.Config.Scope())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "contract register written to %s\n", ref)
			return nil
		}),
	}
}

func newAnnouncementsCmd(flags *scopeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "announcements",
		Short: "Count purchase announcements by method",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, cmd *cobra.Command, app *cli.App) error {
			ref, err := app.Runner.Announcements(ctx, app.Config.Scope())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "announcements written to %s\n", ref)
			return nil
		}),
	}
}
