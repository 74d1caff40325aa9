package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"goszakup/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// goszakup API
	GoszakupToken   string
	GoszakupBaseURL string
	PageLimit       int
	HTTPTimeout     time.Duration

	// Report scope
	CustomerBIN        string
	FinYear            int
	ContractStatuses   []int
	TerminatedStatuses []int
	ContractTypes      []int
	DateFrom           string
	DateTo             string
	ReportQuarter      string

	// Output
	ReportOutput string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Storage
	StorageDriver string
	StorageDSN    string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel string

	// problems found while reading the environment, reported by Validate
	loadErrors []string
}

const (
	OutputSheets = "sheets"
	OutputStdout = "stdout"

	StorageSQLite = "sqlite"
	StoragePgx    = "pgx"
	StorageNone   = "none"
)

func Load() *Config {
	var loadErrors []string
	ints := func(key string, defaultValue []int) []int {
		v, err := getEnvInts(key, defaultValue)
		if err != nil {
			loadErrors = append(loadErrors, err.Error())
		}
		return v
	}

	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		GoszakupToken:   getEnv("GOSZAKUP_TOKEN", ""),
		GoszakupBaseURL: getEnv("GOSZAKUP_BASE_URL", "https://ows.goszakup.gov.kz"),
		PageLimit:       getEnvInt("GOSZAKUP_PAGE_LIMIT", 200),
		HTTPTimeout:     getEnvDuration("GOSZAKUP_HTTP_TIMEOUT", 60*time.Second),

		CustomerBIN:        getEnv("BIN_COMPANY", ""),
		FinYear:            getEnvInt("FIN_YEAR", time.Now().Year()),
		ContractStatuses:   ints("CONTRACT_STATUSES", []int{390, 375, 190}),
		TerminatedStatuses: ints("TERMINATED_STATUSES", []int{340, 350}),
		ContractTypes:      ints("CONTRACT_TYPES", []int{1, 2}),
		DateFrom:           getEnv("DATE_FROM", ""),
		DateTo:             getEnv("DATE_TO", ""),
		ReportQuarter:      getEnv("REPORT_QUARTER", ""),

		ReportOutput: getEnv("REPORT_OUTPUT", OutputStdout),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		StorageDriver: getEnv("STORAGE_DRIVER", StorageSQLite),
		StorageDSN:    getEnv("STORAGE_DSN", "./data/goszakup.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "goszakup"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_requests"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		loadErrors: loadErrors,
	}

	return cfg
}

// Scope returns the report scope described by the configuration. Call it
// after Validate.
func (c *Config) Scope() core.Scope {
	q, _ := core.ParseQuarter(c.ReportQuarter)
	return core.Scope{
		CustomerBIN: c.CustomerBIN,
		FinYear:     c.FinYear,
		Quarter:     q,
		DateFrom:    c.DateFrom,
		DateTo:      c.DateTo,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	errors := slices.Clone(c.loadErrors)

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// goszakup API
	if c.GoszakupToken == "" {
		errors = append(errors, "GOSZAKUP_TOKEN is required")
	}
	if u, err := url.Parse(c.GoszakupBaseURL); err != nil || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid goszakup base URL '%s'", c.GoszakupBaseURL))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid goszakup base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}
	if c.PageLimit < 1 || c.PageLimit > 200 {
		errors = append(errors, fmt.Sprintf("invalid page limit %d: must be between 1 and 200", c.PageLimit))
	}
	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	}

	// Report scope
	if !isBIN(c.CustomerBIN) {
		errors = append(errors, fmt.Sprintf("invalid BIN_COMPANY '%s': must be 12 digits", c.CustomerBIN))
	}
	if c.FinYear < 2000 || c.FinYear > 2100 {
		errors = append(errors, fmt.Sprintf("invalid fin year %d: must be between 2000 and 2100", c.FinYear))
	}
	if len(c.ContractStatuses) == 0 {
		errors = append(errors, "CONTRACT_STATUSES cannot be empty")
	}
	if len(c.TerminatedStatuses) == 0 {
		errors = append(errors, "TERMINATED_STATUSES cannot be empty")
	}
	for _, d := range []struct{ key, value string }{{"DATE_FROM", c.DateFrom}, {"DATE_TO", c.DateTo}} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d.value); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be YYYY-MM-DD", d.key, d.value))
		}
	}
	if c.DateFrom != "" && c.DateTo != "" && c.DateFrom > c.DateTo {
		errors = append(errors, fmt.Sprintf("invalid report window: DATE_FROM %s is after DATE_TO %s", c.DateFrom, c.DateTo))
	}
	if _, err := core.ParseQuarter(c.ReportQuarter); err != nil {
		errors = append(errors, fmt.Sprintf("invalid REPORT_QUARTER '%s': must be empty or 1-4", c.ReportQuarter))
	}

	// Output
	validOutputs := []string{OutputSheets, OutputStdout}
	if !slices.Contains(validOutputs, c.ReportOutput) {
		errors = append(errors, fmt.Sprintf("invalid report output '%s': must be one of %v", c.ReportOutput, validOutputs))
	}
	if c.ReportOutput == OutputSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets output")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets output")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Storage
	validDrivers := []string{StorageSQLite, StoragePgx, StorageNone}
	if !slices.Contains(validDrivers, c.StorageDriver) {
		errors = append(errors, fmt.Sprintf("invalid storage driver '%s': must be one of %v", c.StorageDriver, validDrivers))
	}
	if c.StorageDriver != StorageNone && c.StorageDSN == "" {
		errors = append(errors, fmt.Sprintf("STORAGE_DSN cannot be empty when using %s storage", c.StorageDriver))
	}
	if c.StorageDriver == StorageSQLite && c.StorageDSN != "" {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.StorageDSN)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func isBIN(s string) bool {
	if len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvInts reads a comma separated list of integers. An unparsable list
// yields nil and an error.
func getEnvInts(key string, defaultValue []int) ([]int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid %s '%s': '%s' is not an integer", key, value, part)
		}
		out = append(out, i)
	}
	return out, nil
}
