package worker

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"goszakup/internal/amqp"
	"goszakup/internal/core"
	"goszakup/internal/log"
	"goszakup/internal/services"
)

// Reporter builds and writes one summary report.
type Reporter interface {
	Report(ctx context.Context, scope core.Scope) (*services.ReportOutcome, error)
}

// ReportWorker runs report requests. Requests for the same scope that
// arrive while one is running share its outcome.
type ReportWorker struct {
	reporter Reporter
	group    singleflight.Group
	logger   *log.Logger
}

func NewReportWorker(reporter Reporter, logger *log.Logger) *ReportWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &ReportWorker{reporter: reporter, logger: logger.WithComponent(log.ComponentWorker)}
}

// Run builds the report for req. shared is true when the outcome came
// from a run started by another caller. On services.ErrRunNotSaved the
// outcome of the written sheet is returned with the error.
func (w *ReportWorker) Run(ctx context.Context, req *amqp.ReportRequest) (outcome *services.ReportOutcome, shared bool, err error) {
	v, err, shared := w.group.Do(req.Key(), func() (any, error) {
		return w.reporter.Report(ctx, req.Scope())
	})
	outcome, _ = v.(*services.ReportOutcome)
	return outcome, shared, err
}

// HandleReportRequest processes a single report request from AMQP. A sheet
// that was written but not recorded is acknowledged; redelivery would only
// rewrite the same sheet.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, req *amqp.ReportRequest) error {
	outcome, shared, err := w.Run(ctx, req)
	if errors.Is(err, services.ErrRunNotSaved) && outcome != nil {
		w.logger.ErrorContext(ctx, "Report written but run not stored",
			"request_id", req.RequestID,
			log.FieldRunID, outcome.RunID,
			log.FieldSheet, outcome.SheetRef,
			log.FieldError, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("run report %s: %w", req.RequestID, err)
	}

	w.logger.InfoContext(ctx, "Report request completed",
		"request_id", req.RequestID,
		log.FieldRunID, outcome.RunID,
		log.FieldSheet, outcome.SheetRef,
		"shared", shared)
	return nil
}
