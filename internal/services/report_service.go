package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"goszakup/internal/core"
	"goszakup/internal/goszakup"
	"goszakup/internal/graphql"
	"goszakup/internal/log"
)

// ErrInvalidScope is returned for a scope without a customer or a year.
var ErrInvalidScope = errors.New("invalid report scope")

// ReportServiceConfig holds the status and type sets that select contracts.
type ReportServiceConfig struct {
	// ContractStatuses are sent as the refContractStatusId filter of the report pull.
	ContractStatuses []int

	// TerminatedStatuses select terminated contracts.
	TerminatedStatuses []int

	// ContractTypes keeps only these refContractTypeId values. Empty keeps all.
	ContractTypes []int
}

// ReportService runs the pulls behind each report. Pulls run one after
// another and every call builds fresh aggregates.
type ReportService struct {
	paginator *graphql.Paginator
	config    ReportServiceConfig
	logger    *log.Logger
	now       func() time.Time
}

// NewReportService creates a new report service
func NewReportService(paginator *graphql.Paginator, config ReportServiceConfig, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Default(log.ComponentReport)
	}
	return &ReportService{
		paginator: paginator,
		config:    config,
		logger:    logger.WithComponent(log.ComponentReport),
		now:       time.Now,
	}
}

func validateScope(scope core.Scope) error {
	if scope.CustomerBIN == "" {
		return fmt.Errorf("%w: customer BIN is empty", ErrInvalidScope)
	}
	if scope.FinYear <= 0 {
		return fmt.Errorf("%w: fin year %d", ErrInvalidScope, scope.FinYear)
	}
	return nil
}

// ContractReport builds the summary report: aggregated contracts in the
// configured statuses, the terminated count and the announcement tally.
// Failed pulls do not fail the report; they add warnings.
func (s *ReportService) ContractReport(ctx context.Context, scope core.Scope) (*core.ContractReport, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	logger := s.scopeLogger(scope)
	report := &core.ContractReport{Scope: scope, GeneratedAt: s.now()}

	logger.InfoContext(ctx, "Loading contracts for report", "statuses", s.config.ContractStatuses)
	res := s.paginator.FetchAll(ctx, goszakup.ReportQuery(scope.CustomerBIN, scope.FinYear, s.config.ContractStatuses))
	if res.Partial() {
		report.Warnings = append(report.Warnings, partialWarning("договоры", len(res.Records), res.Err))
	}
	raws, malformed := goszakup.DecodeContracts(res.Records, s.logger)
	report.Stats.Fetched = len(raws)
	report.Stats.Malformed = malformed

	raws = s.filterContractTypes(raws)
	raws = core.FilterByQuarter(raws, scope.Quarter, goszakup.RawContract.SignDateValue)
	report.Stats.OutOfScope = report.Stats.Fetched - len(raws)

	contracts := make([]core.Contract, 0, len(raws))
	for _, rc := range raws {
		contracts = append(contracts, goszakup.NormalizeContract(rc))
	}
	report.Aggregates = core.Aggregate(contracts)
	report.Totals = report.Aggregates.Totals()

	terminated, warning := s.terminatedCount(ctx, scope)
	report.TerminatedCount = terminated
	if warning != "" {
		report.Warnings = append(report.Warnings, warning)
	}

	tally, warning := s.announcementTally(ctx, scope)
	report.Announcements = tally.Sorted()
	report.AnnouncementSum = tally.Total()
	if warning != "" {
		report.Warnings = append(report.Warnings, warning)
	}

	logger.InfoContext(ctx, "Contract report ready",
		log.FieldFetched, report.Stats.Fetched,
		"aggregated", report.Totals.Count,
		"out_of_scope", report.Stats.OutOfScope,
		"malformed", report.Stats.Malformed,
		"terminated", report.TerminatedCount,
		"announcements", report.AnnouncementSum,
		log.FieldPartial, report.Partial())
	return report, nil
}

// terminatedCount reads totalCount for a whole-year scope. With a quarter
// selected the terminated contracts are fetched and bucketed by sign date.
func (s *ReportService) terminatedCount(ctx context.Context, scope core.Scope) (int, string) {
	q := goszakup.TerminatedQuery(scope.CustomerBIN, scope.FinYear, s.config.TerminatedStatuses)
	if !scope.Quarter.Active() {
		n, err := s.paginator.Count(ctx, q)
		if err != nil {
			return 0, fmt.Sprintf("Количество расторгнутых договоров не получено: %v", err)
		}
		return n, ""
	}

	res := s.paginator.FetchAll(ctx, q)
	raws, _ := goszakup.DecodeContracts(res.Records, s.logger)
	n := len(core.FilterByQuarter(raws, scope.Quarter, goszakup.RawContract.SignDateValue))
	if res.Partial() {
		return n, partialWarning("расторгнутые договоры", len(res.Records), res.Err)
	}
	return n, ""
}

func (s *ReportService) announcementTally(ctx context.Context, scope core.Scope) (*core.AnnouncementTally, string) {
	from, to := scope.AnnouncementWindow()
	s.logger.InfoContext(ctx, "Loading announcements", "date_from", from, "date_to", to)

	res := s.paginator.FetchAll(ctx, goszakup.AnnouncementQuery(scope.CustomerBIN, from, to))
	raws, _ := goszakup.DecodeAnnouncements(res.Records, s.logger)
	items := make([]core.Announcement, 0, len(raws))
	for _, ra := range raws {
		items = append(items, goszakup.NormalizeAnnouncement(ra))
	}
	tally := core.TallyAnnouncements(items)
	if res.Partial() {
		return tally, partialWarning("объявления", len(res.Records), res.Err)
	}
	return tally, ""
}

// ContractRegister lists every contract of the customer for the fin year,
// narrowed to the quarter when one is selected.
func (s *ReportService) ContractRegister(ctx context.Context, scope core.Scope) (*core.ContractRegister, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	logger := s.scopeLogger(scope)
	register := &core.ContractRegister{Scope: scope}

	res := s.paginator.FetchAll(ctx, goszakup.RegisterQuery(scope.CustomerBIN, scope.FinYear))
	if res.Partial() {
		register.Warnings = append(register.Warnings, partialWarning("договоры", len(res.Records), res.Err))
	}
	raws, malformed := goszakup.DecodeContracts(res.Records, s.logger)
	raws = core.FilterByQuarter(raws, scope.Quarter, goszakup.RawContract.SignDateValue)
	register.Contracts = make([]core.Contract, 0, len(raws))
	for _, rc := range raws {
		register.Contracts = append(register.Contracts, goszakup.NormalizeContract(rc))
	}

	logger.InfoContext(ctx, "Contract register ready",
		log.FieldFetched, len(res.Records),
		"listed", len(register.Contracts),
		"malformed", malformed,
		log.FieldPartial, res.Partial())
	return register, nil
}

// AnnouncementSummary tallies the announcements published in the scope's
// announcement window.
func (s *ReportService) AnnouncementSummary(ctx context.Context, scope core.Scope) (*core.AnnouncementSummary, error) {
	if scope.CustomerBIN == "" {
		return nil, fmt.Errorf("%w: customer BIN is empty", ErrInvalidScope)
	}
	tally, warning := s.announcementTally(ctx, scope)
	summary := &core.AnnouncementSummary{
		Scope:   scope,
		Methods: tally.Sorted(),
		Total:   tally.Total(),
	}
	if warning != "" {
		summary.Warnings = append(summary.Warnings, warning)
	}
	s.scopeLogger(scope).InfoContext(ctx, "Announcement summary ready",
		"announcements", summary.Total, log.FieldPartial, warning != "")
	return summary, nil
}

// filterContractTypes keeps contracts whose type is configured. Contracts
// without a type id are kept.
func (s *ReportService) filterContractTypes(raws []goszakup.RawContract) []goszakup.RawContract {
	if len(s.config.ContractTypes) == 0 {
		return raws
	}
	out := make([]goszakup.RawContract, 0, len(raws))
	for _, rc := range raws {
		if rc.RefContractTypeID == nil || slices.Contains(s.config.ContractTypes, *rc.RefContractTypeID) {
			out = append(out, rc)
		}
	}
	return out
}

func (s *ReportService) scopeLogger(scope core.Scope) *log.Logger {
	fields := log.NewFields().WithScope(scope.CustomerBIN, scope.FinYear, scope.Quarter.String())
	return s.logger.With(fields.ToSlice()...)
}

func partialWarning(what string, got int, err error) string {
	return fmt.Sprintf("Неполные данные (%s): получено %d записей, выгрузка прервана: %v", what, got, err)
}
