package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"goszakup/internal/core"
	"goszakup/internal/log"
	"goszakup/internal/sheets"
	"goszakup/internal/storage"
)

// ErrRunNotSaved marks a report whose sheet was written but whose run
// could not be stored. The outcome is still returned with it.
var ErrRunNotSaved = errors.New("run not saved")

// RunSaver persists finished summary reports.
type RunSaver interface {
	SaveRun(ctx context.Context, run *storage.Run) error
}

// ReportOutcome describes one written summary report.
type ReportOutcome struct {
	RunID    string
	SheetRef string
	Report   *core.ContractReport
}

// ReportRunner builds a report, writes its sheet and records the run.
type ReportRunner struct {
	service *ReportService
	writer  sheets.ReportWriter
	store   RunSaver
	logger  *log.Logger
	newID   func() string
}

// NewReportRunner wires the runner. store may be nil when runs are not kept.
func NewReportRunner(service *ReportService, writer sheets.ReportWriter, store RunSaver, logger *log.Logger) *ReportRunner {
	if logger == nil {
		logger = log.Default(log.ComponentReport)
	}
	return &ReportRunner{
		service: service,
		writer:  writer,
		store:   store,
		logger:  logger.WithComponent(log.ComponentReport),
		newID:   uuid.NewString,
	}
}

// Report writes the summary sheet for scope and saves the run.
func (r *ReportRunner) Report(ctx context.Context, scope core.Scope) (*ReportOutcome, error) {
	report, err := r.service.ContractReport(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	sheet := sheets.SummarySheet(report)
	ref, err := r.writer.WriteSheet(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("write sheet %q: %w", sheet.Title, err)
	}

	outcome := &ReportOutcome{RunID: r.newID(), SheetRef: ref, Report: report}
	for _, w := range report.Warnings {
		r.logger.WarnContext(ctx, "Report is incomplete", log.FieldRunID, outcome.RunID, "warning", w)
	}

	if r.store != nil {
		if err := r.store.SaveRun(ctx, storage.NewRun(outcome.RunID, report, ref)); err != nil {
			return outcome, fmt.Errorf("%w: save run %s: %w", ErrRunNotSaved, outcome.RunID, err)
		}
	}

	r.logger.InfoContext(ctx, "Report written",
		log.FieldRunID, outcome.RunID,
		log.FieldSheet, ref,
		log.FieldPartial, report.Partial())
	return outcome, nil
}

// Register writes the contract register sheet.
func (r *ReportRunner) Register(ctx context.Context, scope core.Scope) (string, error) {
	register, err := r.service.ContractRegister(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("build register: %w", err)
	}
	return r.write(ctx, sheets.RegisterSheet(register))
}

// Announcements writes the announcement summary sheet.
func (r *ReportRunner) Announcements(ctx context.Context, scope core.Scope) (string, error) {
	summary, err := r.service.AnnouncementSummary(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("build announcement summary: %w", err)
	}
	return r.write(ctx, sheets.AnnouncementSheet(summary))
}

func (r *ReportRunner) write(ctx context.Context, sheet sheets.Sheet) (string, error) {
	ref, err := r.writer.WriteSheet(ctx, sheet)
	if err != nil {
		return "", fmt.Errorf("write sheet %q: %w", sheet.Title, err)
	}
	r.logger.InfoContext(ctx, "Sheet written", log.FieldSheet, ref)
	return ref, nil
}
