package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"goszakup/internal/amqp"
	"goszakup/internal/cache"
	"goszakup/internal/cli"
	apphttp "goszakup/internal/http"
	"goszakup/internal/log"
	"goszakup/internal/worker"
)

const (
	shutdownTimeout = 30 * time.Second
	runCacheSize    = 256
	runCacheTTL     = 15 * time.Minute
)

func newServeCmd(flags *scopeFlags) *cobra.Command {
	var origins []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over stored runs and the report trigger",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(ctx context.Context, cmd *cobra.Command, app *cli.App) error {
			cfg := app.Config
			opts := apphttp.Options{
				Addr:           ":" + cfg.Port,
				DefaultScope:   cfg.Scope(),
				Runner:         worker.NewReportWorker(app.Runner, app.Logger),
				AllowedOrigins: origins,
				Logger:         app.Logger,
			}
			var sweeper *cache.Manager
			if app.Store != nil {
				runs := cache.NewRuns(app.Store, runCacheSize, runCacheTTL)
				sweeper = cache.NewManager(app.Logger, runs)
				opts.Runs = runs
			}

			if cfg.AMQPURL != "" {
				client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, app.Logger)
				if err != nil {
					app.Logger.Warn("AMQP unavailable, reports run inline", log.FieldError, err)
				} else {
					defer client.Close()
					opts.Publisher = client
				}
			}

			srv := apphttp.NewServer(opts)
			srv.ReadTimeout = 10 * time.Second
			srv.IdleTimeout = 60 * time.Second
			srv.MaxHeaderBytes = 1 << 16

			g, gctx := errgroup.WithContext(ctx)
			if sweeper != nil {
				g.Go(func() error {
					sweeper.Run(gctx, time.Minute)
					return nil
				})
			}
			g.Go(func() error {
				app.Logger.Info("Starting server", "addr", srv.Addr, log.FieldOperation, log.OpStartup)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		}),
	}
	cmd.Flags().StringSliceVar(&origins, "cors-origin", []string{"*"}, "allowed CORS origins")
	return cmd
}
