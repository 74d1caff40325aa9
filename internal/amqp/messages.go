package amqp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"goszakup/internal/core"
)

// ErrInvalidRequest marks a report request that cannot be run.
var ErrInvalidRequest = errors.New("invalid report request")

// ReportRequest asks a worker to build and write the summary report for
// one scope.
type ReportRequest struct {
	RequestID   string    `json:"request_id"`
	CustomerBIN string    `json:"customer_bin"`
	FinYear     int       `json:"fin_year"`
	Quarter     int       `json:"quarter,omitempty"`
	DateFrom    string    `json:"date_from,omitempty"`
	DateTo      string    `json:"date_to,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewReportRequest creates a request for scope with a fresh id.
func NewReportRequest(scope core.Scope) *ReportRequest {
	return &ReportRequest{
		RequestID:   uuid.NewString(),
		CustomerBIN: scope.CustomerBIN,
		FinYear:     scope.FinYear,
		Quarter:     int(scope.Quarter),
		DateFrom:    scope.DateFrom,
		DateTo:      scope.DateTo,
		RequestedAt: time.Now().UTC(),
	}
}

// Scope returns the report scope carried by the request.
func (m *ReportRequest) Scope() core.Scope {
	return core.Scope{
		CustomerBIN: m.CustomerBIN,
		FinYear:     m.FinYear,
		Quarter:     core.Quarter(m.Quarter),
		DateFrom:    m.DateFrom,
		DateTo:      m.DateTo,
	}
}

// Key identifies requests for the same scope regardless of their id.
func (m *ReportRequest) Key() string {
	return strings.Join([]string{
		m.CustomerBIN, strconv.Itoa(m.FinYear), strconv.Itoa(m.Quarter), m.DateFrom, m.DateTo,
	}, "|")
}

// Validate checks the fields a worker needs.
func (m *ReportRequest) Validate() error {
	switch {
	case m.CustomerBIN == "":
		return fmt.Errorf("%w: customer_bin is empty", ErrInvalidRequest)
	case m.FinYear <= 0:
		return fmt.Errorf("%w: fin_year %d", ErrInvalidRequest, m.FinYear)
	case m.Quarter < 0 || m.Quarter > 4:
		return fmt.Errorf("%w: quarter %d", ErrInvalidRequest, m.Quarter)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestFromJSON decodes and validates a message body.
func ReportRequestFromJSON(data []byte) (*ReportRequest, error) {
	var msg ReportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
