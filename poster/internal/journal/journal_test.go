package journal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/geekbim/Auto-Post-FB-Marketplace/dbopen"
	_ "modernc.org/sqlite"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return New(db, nil)
}

func TestStartAndFinishRun(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	id, err := j.StartRun(ctx)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if !strings.HasPrefix(id, "run_") {
		t.Errorf("run id = %q, want run_ prefix", id)
	}

	if err := j.FinishRun(ctx, id, 3, 1); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := j.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != id {
		t.Errorf("run id = %q, want %q", got.ID, id)
	}
	if got.Records != 3 || got.Failures != 1 {
		t.Errorf("records/failures = %d/%d, want 3/1", got.Records, got.Failures)
	}
	if got.FinishedAt == "" {
		t.Error("finished_at not set")
	}
}

func TestAppendRecord(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	runID, err := j.StartRun(ctx)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	rec := Record{
		RunID:        runID,
		ListingTitle: "Toyota Avanza 2025",
		Outcome:      "failed",
		FailedChecks: []string{"field:model", "save-confirmed"},
		Attempts:     12,
		Stability:    1,
		Duration:     3 * time.Minute,
	}
	if err := j.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var outcome, checks string
	var durationMS int64
	err = j.db.QueryRowContext(ctx,
		`SELECT outcome, failed_checks, duration_ms FROM records WHERE run_id = ?`,
		runID).Scan(&outcome, &checks, &durationMS)
	if err != nil {
		t.Fatalf("query record: %v", err)
	}
	if outcome != "failed" {
		t.Errorf("outcome = %q, want failed", outcome)
	}
	if want := `["field:model","save-confirmed"]`; checks != want {
		t.Errorf("failed_checks = %s, want %s", checks, want)
	}
	if durationMS != 180000 {
		t.Errorf("duration_ms = %d, want 180000", durationMS)
	}
}

func TestAppendEmptyChecksWritesJSONArray(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	runID, err := j.StartRun(ctx)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := j.Append(ctx, Record{RunID: runID, ListingTitle: "x", Outcome: "succeeded"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var checks string
	if err := j.db.QueryRowContext(ctx,
		`SELECT failed_checks FROM records WHERE run_id = ?`, runID).Scan(&checks); err != nil {
		t.Fatalf("query: %v", err)
	}
	if checks != "null" && checks != "[]" {
		t.Errorf("failed_checks = %q, want empty JSON", checks)
	}
}
