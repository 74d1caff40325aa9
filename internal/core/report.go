package core

import "time"

type (
	// Scope selects the organization and period of a report.
	Scope struct {
		CustomerBIN string
		FinYear     int
		Quarter     Quarter
		DateFrom    string // announcement window, YYYY-MM-DD
		DateTo      string
	}

	// PullStats describes one run of the pipeline.
	PullStats struct {
		Fetched    int // contracts returned by the API
		OutOfScope int // removed by the quarter or contract type filter
		Malformed  int // decoded with defaults
	}

	// ContractReport is everything the summary report renders.
	ContractReport struct {
		Scope           Scope
		Aggregates      Aggregates
		Totals          Totals
		TerminatedCount int
		Announcements   []MethodCount
		AnnouncementSum int
		Stats           PullStats
		Warnings        []string
		GeneratedAt     time.Time
	}

	// AnnouncementSummary is the standalone announcement report.
	AnnouncementSummary struct {
		Scope    Scope
		Methods  []MethodCount
		Total    int
		Warnings []string
	}

	// ContractRegister is the flat contract export.
	ContractRegister struct {
		Scope     Scope
		Contracts []Contract
		Warnings  []string
	}
)

// Partial reports whether any pull was cut short.
func (r ContractReport) Partial() bool {
	return len(r.Warnings) > 0
}

// YearWindow returns the calendar bounds of the scope's fin year, narrowed to
// the quarter when one is selected.
func (s Scope) YearWindow() (from, to string) {
	first, last := s.Quarter.Months()
	start := time.Date(s.FinYear, time.Month(first), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(s.FinYear, time.Month(last)+1, 0, 0, 0, 0, 0, time.UTC)
	return start.Format(time.DateOnly), end.Format(time.DateOnly)
}

// AnnouncementWindow returns the configured window, defaulting each missing
// bound to YearWindow.
func (s Scope) AnnouncementWindow() (from, to string) {
	from, to = s.YearWindow()
	if s.DateFrom != "" {
		from = s.DateFrom
	}
	if s.DateTo != "" {
		to = s.DateTo
	}
	return from, to
}
