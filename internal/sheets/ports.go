package sheets

import (
	"context"
)

// Ports for outbound adapters.
type (
	// ReportWriter publishes one rendered sheet and returns a reference to
	// where it landed (a spreadsheet range, a file, a memory key).
	//
	//go:generate mockgen -destination=mocks/mock_report_writer.go -source=ports.go ReportWriter
	ReportWriter interface {
		WriteSheet(ctx context.Context, sheet Sheet) (ref string, err error)
	}
)
