// Command goszakup-worker consumes report requests from AMQP and writes
// the reports.
package main

import (
	"context"
	"errors"
	"os"

	"goszakup/internal/amqp"
	"goszakup/internal/cli"
	"goszakup/internal/log"
	"goszakup/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	cli.ExitOnError(err)
	if cfg.AMQPURL == "" {
		cli.ExitOnError(errors.New("AMQP_URL is required for the worker"))
	}

	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)
	logger.Info("Starting goszakup-worker", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger, os.Stdout)
	cli.ExitOnError(err)
	defer app.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		app.Close()
		cli.ExitOnError(err)
	}
	defer client.Close()

	reportWorker := worker.NewReportWorker(app.Runner, logger)
	if err := client.ConsumeReportRequests(ctx, reportWorker.HandleReportRequest); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		client.Close()
		app.Close()
		os.Exit(1)
	}
	logger.Info("Worker stopped", log.FieldOperation, log.OpShutdown)
}
