package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"goszakup/internal/log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("report run not found")

// Repository persists report runs in SQLite or Postgres.
type Repository struct {
	db     *sql.DB
	driver string
	logger *log.Logger
}

// Open connects to the database, creating the SQLite directory when
// needed, and applies migrations.
func Open(ctx context.Context, driver, dsn string, logger *log.Logger) (*Repository, error) {
	if logger == nil {
		logger = log.Default(log.ComponentStorage)
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(driver, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.InfoContext(ctx, "Run storage ready", "driver", driver)
	return &Repository{db: db, driver: driver, logger: logger}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// rebind turns ? placeholders into $n for Postgres.
func (r *Repository) rebind(query string) string {
	if r.driver != DriverPgx {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// SaveRun stores a run with its method and announcement rows.
func (r *Repository) SaveRun(ctx context.Context, run *Run) error {
	warnings, err := json.Marshal(run.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.rebind(`
		INSERT INTO report_runs (
			id, created_at, customer_bin, fin_year, quarter,
			plan_total, contract_total, actual_total, economy_total,
			contract_count, terminated_count, announcement_total,
			partial, warnings, sheet_ref
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.CreatedAt.UTC().Format(timeLayout), run.CustomerBIN, run.FinYear, run.Quarter,
		run.PlanTotal.String(), run.ContractTotal.String(), run.ActualTotal.String(), run.EconomyTotal.String(),
		run.ContractCount, run.TerminatedCount, run.AnnouncementTotal,
		run.Partial, string(warnings), run.SheetRef,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	insertMethod := r.rebind(`
		INSERT INTO report_run_methods (
			run_id, position, method, plan_total, has_plan, contract_total, actual_total, contract_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, m := range run.Methods {
		if _, err := tx.ExecContext(ctx, insertMethod,
			run.ID, i, m.Method, m.Plan.String(), m.HasPlan, m.Contract.String(), m.Actual.String(), m.ContractCount,
		); err != nil {
			return fmt.Errorf("insert method %q: %w", m.Method, err)
		}
	}

	insertAnnouncement := r.rebind(`
		INSERT INTO report_run_announcements (run_id, position, method, announcement_count)
		VALUES (?, ?, ?, ?)`)
	for i, a := range run.Announcements {
		if _, err := tx.ExecContext(ctx, insertAnnouncement, run.ID, i, a.Method, a.Count); err != nil {
			return fmt.Errorf("insert announcement %q: %w", a.Method, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	r.logger.InfoContext(ctx, "Report run saved",
		log.FieldRunID, run.ID,
		log.FieldCustomerBIN, run.CustomerBIN,
		log.FieldFinYear, run.FinYear,
		log.FieldPartial, run.Partial)
	return nil
}

const runColumns = `id, created_at, customer_bin, fin_year, quarter,
	plan_total, contract_total, actual_total, economy_total,
	contract_count, terminated_count, announcement_total,
	partial, warnings, sheet_ref`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*Run, error) {
	var (
		run       Run
		createdAt string
		warnings  string
	)
	if err := s.Scan(
		&run.ID, &createdAt, &run.CustomerBIN, &run.FinYear, &run.Quarter,
		&run.PlanTotal, &run.ContractTotal, &run.ActualTotal, &run.EconomyTotal,
		&run.ContractCount, &run.TerminatedCount, &run.AnnouncementTotal,
		&run.Partial, &warnings, &run.SheetRef,
	); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	run.CreatedAt = t
	if err := json.Unmarshal([]byte(warnings), &run.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs without their method and
// announcement rows.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT `+runColumns+`
		FROM report_runs
		ORDER BY created_at DESC, id
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its rows in their report order.
func (r *Repository) GetRun(ctx context.Context, id string) (*Run, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, r.rebind(`
		SELECT `+runColumns+`
		FROM report_runs
		WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	methods, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT method, plan_total, has_plan, contract_total, actual_total, contract_count
		FROM report_run_methods
		WHERE run_id = ?
		ORDER BY position`), id)
	if err != nil {
		return nil, fmt.Errorf("get run methods: %w", err)
	}
	defer methods.Close()
	for methods.Next() {
		var m RunMethod
		if err := methods.Scan(&m.Method, &m.Plan, &m.HasPlan, &m.Contract, &m.Actual, &m.ContractCount); err != nil {
			return nil, fmt.Errorf("scan run method: %w", err)
		}
		run.Methods = append(run.Methods, m)
	}
	if err := methods.Err(); err != nil {
		return nil, fmt.Errorf("iterate run methods: %w", err)
	}

	announcements, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT method, announcement_count
		FROM report_run_announcements
		WHERE run_id = ?
		ORDER BY position`), id)
	if err != nil {
		return nil, fmt.Errorf("get run announcements: %w", err)
	}
	defer announcements.Close()
	for announcements.Next() {
		var a RunAnnouncement
		if err := announcements.Scan(&a.Method, &a.Count); err != nil {
			return nil, fmt.Errorf("scan run announcement: %w", err)
		}
		run.Announcements = append(run.Announcements, a)
	}
	if err := announcements.Err(); err != nil {
		return nil, fmt.Errorf("iterate run announcements: %w", err)
	}
	return run, nil
}
