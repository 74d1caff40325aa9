package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"goszakup/internal/cli"
	"goszakup/internal/config"
	"goszakup/internal/log"
)

// scopeFlags override the report scope read from the environment.
type scopeFlags struct {
	year    int
	quarter string
	bin     string
	output  string
}

func (f *scopeFlags) overrides(cmd *cobra.Command) cli.Override {
	return func(c *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("year") {
			c.FinYear = f.year
		}
		if flags.Changed("quarter") {
			c.ReportQuarter = f.quarter
		}
		if flags.Changed("bin") {
			c.CustomerBIN = f.bin
		}
		if flags.Changed("output") {
			c.ReportOutput = f.output
		}
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &scopeFlags{}
	root := &cobra.Command{
		Use:           "goszakup",
		Short:         "Procurement reports from the goszakup GraphQL API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.IntVar(&flags.year, "year", 0, "financial year (FIN_YEAR)")
	pf.StringVar(&flags.quarter, "quarter", "", "quarter 1-4, empty for the whole year (REPORT_QUARTER)")
	pf.StringVar(&flags.bin, "bin", "", "customer BIN (BIN_COMPANY)")
	pf.StringVar(&flags.output, "output", "", "sheets or stdout (REPORT_OUTPUT)")

	root.AddCommand(
		newReportCmd(flags),
		newContractsCmd(flags),
		newAnnouncementsCmd(flags),
		newRunsCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// bootstrap loads the configuration with flag overrides and wires the app.
func bootstrap(cmd *cobra.Command, flags *scopeFlags) (*cli.App, error) {
	cfg, err := cli.LoadAndValidateConfig(flags.overrides(cmd))
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr())
	return cli.NewApp(cmd.Context(), cfg, logger, cmd.OutOrStdout())
}

// withApp runs fn with a wired app and a context cancelled on SIGINT or
// SIGTERM.
func withApp(flags *scopeFlags, fn func(ctx context.Context, cmd *cobra.Command, app *cli.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		app, err := bootstrap(cmd, flags)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := cli.GracefulShutdown(cmd.Context(), app.Logger)
		defer stop()

		app.Logger.InfoContext(ctx, "Command started",
			"command", cmd.Name(),
			log.FieldCustomerBIN, app.Config.CustomerBIN,
			log.FieldFinYear, app.Config.FinYear,
			log.FieldQuarter, app.Config.ReportQuarter)
		return fn(ctx, cmd, app)
	}
}
