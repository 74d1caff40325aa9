package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"goszakup/internal/core"
)

type (
	// Run is one persisted execution of the summary report.
	Run struct {
		ID                string            `json:"id"`
		CreatedAt         time.Time         `json:"created_at"`
		CustomerBIN       string            `json:"customer_bin"`
		FinYear           int               `json:"fin_year"`
		Quarter           int               `json:"quarter,omitempty"`
		PlanTotal         decimal.Decimal   `json:"plan_total"`
		ContractTotal     decimal.Decimal   `json:"contract_total"`
		ActualTotal       decimal.Decimal   `json:"actual_total"`
		EconomyTotal      decimal.Decimal   `json:"economy_total"`
		ContractCount     int               `json:"contract_count"`
		TerminatedCount   int               `json:"terminated_count"`
		AnnouncementTotal int               `json:"announcement_total"`
		Partial           bool              `json:"partial"`
		Warnings          []string          `json:"warnings"`
		SheetRef          string            `json:"sheet_ref,omitempty"`
		Methods           []RunMethod       `json:"methods,omitempty"`
		Announcements     []RunAnnouncement `json:"announcements,omitempty"`
	}

	// RunMethod is one row of the per-method table.
	RunMethod struct {
		Method        string          `json:"method"`
		Plan          decimal.Decimal `json:"plan"`
		HasPlan       bool            `json:"has_plan"`
		Contract      decimal.Decimal `json:"contract"`
		Actual        decimal.Decimal `json:"actual"`
		ContractCount int             `json:"contract_count"`
	}

	// RunAnnouncement is one row of the sorted announcement tally.
	RunAnnouncement struct {
		Method string `json:"method"`
		Count  int    `json:"count"`
	}
)

// NewRun captures a finished report.
func NewRun(id string, r *core.ContractReport, sheetRef string) *Run {
	run := &Run{
		ID:                id,
		CreatedAt:         r.GeneratedAt.UTC(),
		CustomerBIN:       r.Scope.CustomerBIN,
		FinYear:           r.Scope.FinYear,
		Quarter:           int(r.Scope.Quarter),
		PlanTotal:         r.Totals.Plan,
		ContractTotal:     r.Totals.Contract,
		ActualTotal:       r.Totals.Actual,
		EconomyTotal:      r.Totals.Economy,
		ContractCount:     r.Totals.Count,
		TerminatedCount:   r.TerminatedCount,
		AnnouncementTotal: r.AnnouncementSum,
		Partial:           r.Partial(),
		Warnings:          append([]string{}, r.Warnings...),
		SheetRef:          sheetRef,
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	for method, m := range r.Aggregates.ByMethod.All() {
		run.Methods = append(run.Methods, RunMethod{
			Method:        method,
			Plan:          m.Plan,
			HasPlan:       m.HasPlan,
			Contract:      m.Contract,
			Actual:        m.Actual,
			ContractCount: m.Count,
		})
	}
	for _, mc := range r.Announcements {
		run.Announcements = append(run.Announcements, RunAnnouncement{Method: mc.Method, Count: mc.Count})
	}
	return run
}
