package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"goszakup/internal/amqp"
	"goszakup/internal/core"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
	maxBodyBytes    = 1 << 16
)

// reportRequestBody is the POST /api/reports payload. Missing fields fall
// back to the configured scope.
type reportRequestBody struct {
	CustomerBIN string `json:"customer_bin"`
	FinYear     int    `json:"fin_year"`
	Quarter     *int   `json:"quarter"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
}

// parseLimit reads ?limit=, clamped to 1..maxRunLimit.
func parseLimit(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return defaultRunLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", v)
	}
	if n > maxRunLimit {
		n = maxRunLimit
	}
	return n, nil
}

// parseReportRequest merges the body over defaults. An empty body
// requests the default scope.
func parseReportRequest(r *http.Request, defaults core.Scope) (*amqp.ReportRequest, error) {
	var body reportRequestBody
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
	}

	scope := defaults
	if body.CustomerBIN != "" {
		scope.CustomerBIN = strings.TrimSpace(body.CustomerBIN)
	}
	if body.FinYear != 0 {
		scope.FinYear = body.FinYear
	}
	if body.Quarter != nil {
		if *body.Quarter < 0 || *body.Quarter > 4 {
			return nil, fmt.Errorf("invalid quarter %d: must be 0-4", *body.Quarter)
		}
		scope.Quarter = core.Quarter(*body.Quarter)
	}
	for _, d := range []*string{&body.DateFrom, &body.DateTo} {
		if *d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, *d); err != nil {
			return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", *d)
		}
	}
	if body.DateFrom != "" {
		scope.DateFrom = body.DateFrom
	}
	if body.DateTo != "" {
		scope.DateTo = body.DateTo
	}

	req := amqp.NewReportRequest(scope)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
