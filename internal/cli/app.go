package cli

import (
	"context"
	"fmt"
	"io"

	"goszakup/internal/config"
	"goszakup/internal/graphql"
	"goszakup/internal/log"
	"goszakup/internal/services"
	"goszakup/internal/sheets"
	gsheet "goszakup/internal/sheets/google"
	"goszakup/internal/sheets/memory"
	"goszakup/internal/storage"
)

// App holds the components every command builds from one configuration.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Service *services.ReportService
	Runner  *services.ReportRunner
	Writer  sheets.ReportWriter
	Store   *storage.Repository // nil when STORAGE_DRIVER=none
}

// NewApp wires the GraphQL client, the report service, the configured
// writer and the run storage. Stdout output renders tables to out.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer) (*App, error) {
	client := graphql.NewClient(cfg.GoszakupBaseURL, cfg.GoszakupToken, graphql.WithTimeout(cfg.HTTPTimeout))
	paginator := graphql.NewPaginator(client, cfg.PageLimit, logger)
	service := services.NewReportService(paginator, services.ReportServiceConfig{
		ContractStatuses:   cfg.ContractStatuses,
		TerminatedStatuses: cfg.TerminatedStatuses,
		ContractTypes:      cfg.ContractTypes,
	}, logger)

	writer, err := NewWriter(ctx, cfg, logger, out)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger, Service: service, Writer: writer}

	var saver services.RunSaver
	if cfg.StorageDriver != config.StorageNone {
		store, err := storage.Open(ctx, cfg.StorageDriver, cfg.StorageDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open run storage: %w", err)
		}
		app.Store = store
		saver = store
	}

	app.Runner = services.NewReportRunner(service, writer, saver, logger)
	return app, nil
}

// NewWriter returns the Google Sheets writer or the terminal writer.
func NewWriter(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer) (sheets.ReportWriter, error) {
	switch cfg.ReportOutput {
	case config.OutputSheets:
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init Google Sheets writer: %w", err)
		}
		return client, nil
	default:
		return memory.New(out), nil
	}
}

// Close releases the run storage.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn("Closing run storage failed", log.FieldError, err)
		}
	}
}
