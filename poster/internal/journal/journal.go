// Package journal persists run outcomes to SQLite so failed records
// can be inspected after the browser is gone.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/geekbim/Auto-Post-FB-Marketplace/dbopen"
	"github.com/geekbim/Auto-Post-FB-Marketplace/idgen"
)

// Journal records run and per-record outcomes.
type Journal struct {
	db     *sql.DB
	runID  idgen.Generator
	recID  idgen.Generator
	logger *slog.Logger
}

// Open opens (or creates) the journal database at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	db, err := dbopen.Open(path,
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	return New(db, logger), nil
}

// New wraps an already-open database. The caller keeps ownership of db
// unless Close is used.
func New(db *sql.DB, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{
		db:     db,
		runID:  idgen.Prefixed("run_", idgen.UUIDv7()),
		recID:  idgen.Prefixed("rec_", idgen.UUIDv7()),
		logger: logger,
	}
}

// Close closes the underlying database.
func (j *Journal) Close() error { return j.db.Close() }

// StartRun inserts a new run row and returns its id.
func (j *Journal) StartRun(ctx context.Context) (string, error) {
	id := j.runID()
	_, err := dbopen.Exec(ctx, j.db,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("journal: start run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run row with its end time and totals.
func (j *Journal) FinishRun(ctx context.Context, runID string, records, failures int) error {
	_, err := dbopen.Exec(ctx, j.db,
		`UPDATE runs SET finished_at = ?, records = ?, failures = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), records, failures, runID,
	)
	if err != nil {
		return fmt.Errorf("journal: finish run: %w", err)
	}
	return nil
}

// Record is one reconciled listing's outcome.
type Record struct {
	RunID        string
	ListingTitle string
	Outcome      string // "succeeded" or "failed"
	FailedChecks []string
	Attempts     int
	Stability    int
	Duration     time.Duration
}

// Append writes one record row.
func (j *Journal) Append(ctx context.Context, rec Record) error {
	checks, err := json.Marshal(rec.FailedChecks)
	if err != nil {
		return fmt.Errorf("journal: marshal failed checks: %w", err)
	}
	_, err = dbopen.Exec(ctx, j.db,
		`INSERT INTO records
			(id, run_id, listing_title, outcome, failed_checks, attempts, stability, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.recID(), rec.RunID, rec.ListingTitle, rec.Outcome, string(checks),
		rec.Attempts, rec.Stability, rec.Duration.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("journal: append record: %w", err)
	}
	return nil
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID         string
	StartedAt  string
	FinishedAt string
	Records    int
	Failures   int
}

// Runs lists runs newest first, up to limit.
func (j *Journal) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), records, failures
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Records, &r.Failures); err != nil {
			return nil, fmt.Errorf("journal: scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
