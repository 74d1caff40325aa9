package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"goszakup/internal/log"
	ports "goszakup/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client writes report sheets into one spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// Options select the spreadsheet and the service account.
type Options struct {
	SpreadsheetID string

	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string

	// ClientOptions are appended to the service options, e.g. an endpoint in tests.
	ClientOptions []goption.ClientOption
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default(log.ComponentSheets)
	}
	logger = logger.WithComponent(log.ComponentSheets)

	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	clientOpts := append([]goption.ClientOption(nil), opts.ClientOptions...)
	if len(clientOpts) == 0 {
		credentialsJSON, err := loadCredentials(opts)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID)
	return NewWithService(svc, spreadsheetID, logger), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default(log.ComponentSheets)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}
}

func loadCredentials(opts Options) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(opts.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(opts.CredentialsFile)
	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteSheet replaces the content of the tab named after the sheet,
// creating the tab when needed, and returns the written A1 range.
func (c *Client) WriteSheet(ctx context.Context, sheet ports.Sheet) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if sheet.Title == "" {
		return "", errors.New("sheet title is empty")
	}
	start := time.Now()

	sheetID, err := c.ensureSheet(ctx, sheet.Title)
	if err != nil {
		return "", err
	}

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoteSheet(sheet.Title), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %q: %w", sheet.Title, err)
	}

	rng := a1Range(sheet.Title, sheet.Width(), len(sheet.Rows))
	vr := &gsheet.ValueRange{Values: sheet.Values()}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("write %q: %w", sheet.Title, err)
	}

	batch := &gsheet.BatchUpdateSpreadsheetRequest{Requests: formatRequests(sheetID, sheet)}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, batch).Context(ctx).Do(); err != nil {
		// Values are already in place; formatting is cosmetic.
		c.logger.WarnContext(ctx, "Failed to format sheet", log.FieldSheet, sheet.Title, log.FieldError, err)
	}

	c.logger.InfoContext(ctx, "Sheet written",
		log.FieldSheet, sheet.Title,
		"rows", len(sheet.Rows),
		log.FieldDuration, time.Since(start).Milliseconds())
	return rng, nil
}

// ensureSheet returns the id of the tab with the given title, adding it if
// the spreadsheet has none.
func (c *Client) ensureSheet(ctx context.Context, title string) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}}}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("add sheet %q: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add sheet %q: empty reply", title)
	}
	c.logger.InfoContext(ctx, "Sheet tab created", log.FieldSheet, title)
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}
