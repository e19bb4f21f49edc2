// Package poster drives the whole publishing run: browser lifecycle,
// cookie import, per-record reconciliation, and the SQLite journal.
package poster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/geekbim/Auto-Post-FB-Marketplace/listing"
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/assets"
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/browser"
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/journal"
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/reconcile"
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/sequence"

	_ "modernc.org/sqlite"
)

// Result is one record's outcome. Err is non-nil when the record did
// not reach a fully reconciled state.
type Result struct {
	Title       string
	Diagnostics listing.Diagnostics
	Duration    time.Duration
	Err         error
}

// Runner executes one publishing run over all configured records.
type Runner struct {
	cfg    *Config
	logger *slog.Logger
}

// NewRunner creates a Runner. A nil logger falls back to slog.Default.
func NewRunner(cfg *Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run processes every record and returns per-record results. The
// returned error covers setup failures only; record failures live in
// the results.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	records, err := r.loadRecords()
	if err != nil {
		return nil, err
	}
	r.logger.Info("poster: run starting", "records", len(records))

	var jnl *journal.Journal
	runID := ""
	if r.cfg.Journal.Path != "" {
		jnl, err = journal.Open(r.cfg.Journal.Path, r.logger)
		if err != nil {
			return nil, err
		}
		defer jnl.Close()
		runID, err = jnl.StartRun(ctx)
		if err != nil {
			return nil, err
		}
	}

	cookies, err := r.loadCookies()
	if err != nil {
		return nil, err
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:      r.cfg.Browser.Remote,
		Headless:       r.cfg.Browser.Headless,
		ProfileDir:     r.cfg.Browser.ProfileDir,
		ViewportWidth:  r.cfg.Browser.ViewportWidth,
		ViewportHeight: r.cfg.Browser.ViewportHeight,
		Logger:         r.logger,
	})
	if _, err := mgr.Start(); err != nil {
		return nil, err
	}
	defer mgr.Close()

	tab, err := browser.OpenTab(ctx, mgr)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if len(cookies) > 0 {
		if err := tab.SetCookies(cookies); err != nil {
			return nil, err
		}
		r.logger.Info("poster: cookies imported", "count", len(cookies))
	}

	results := make([]Result, 0, len(records))
	failures := 0
	for i, rec := range records {
		res := r.runRecord(ctx, tab, rec)
		results = append(results, res)
		if res.Err != nil {
			failures++
		}
		if jnl != nil {
			r.journalRecord(ctx, jnl, runID, res)
		}

		// Park on the selling page between records so the next form
		// load starts from a neutral state.
		if i < len(records)-1 && rec.SellingURL != "" {
			if err := tab.Navigate(ctx, rec.SellingURL); err != nil {
				r.logger.Warn("poster: selling page navigation failed", "error", err)
			}
		}

		if ctx.Err() != nil {
			break
		}
	}

	if jnl != nil {
		if err := jnl.FinishRun(ctx, runID, len(results), failures); err != nil {
			r.logger.Warn("poster: journal finish failed", "error", err)
		}
	}

	r.logger.Info("poster: run finished",
		"records", len(results), "failures", failures)
	return results, nil
}

// runRecord reconciles one listing. Asset resolution happens before the
// browser touches the form: without an image the run cannot reach a
// publishable state, so the record fails immediately.
func (r *Runner) runRecord(ctx context.Context, tab *browser.Tab, rec listing.Listing) Result {
	title := recordTitle(rec)
	log := r.logger.With("record", title)
	start := time.Now()

	photo := rec.PhotoPath
	if photo == "" {
		photo = r.cfg.Files.Photo
	}
	resolved, err := assets.Resolve(r.cfg.Files.AssetDir, photo)
	if err != nil {
		if errors.Is(err, assets.ErrUnresolved) {
			log.Error("poster: no usable photo", "dir", r.cfg.Files.AssetDir)
			return Result{
				Title:    title,
				Duration: time.Since(start),
				Err:      fmt.Errorf("poster: %s: %w", title, err),
			}
		}
		return Result{Title: title, Duration: time.Since(start), Err: err}
	}

	if err := tab.Navigate(ctx, rec.TargetURL); err != nil {
		return Result{Title: title, Duration: time.Since(start), Err: err}
	}

	specs := listing.SpecsFor(rec)
	form := newPageForm(tab, rec, specs, log)
	seq := sequence.New(sequence.Config{
		Page:      tab.Page,
		Selects:   listing.SelectSpecs(specs),
		PhotoPath: resolved,
		Logger:    log,
	})
	machine := reconcile.New(form, seq, reconcile.Config{
		Specs:              specs,
		StabilityThreshold: r.cfg.Reconcile.StabilityThreshold,
		Deadline:           r.cfg.Reconcile.Deadline,
		Tick:               r.cfg.Reconcile.Tick,
		Logger:             log,
	})

	diag, err := machine.Run(ctx)
	if err != nil {
		log.Error("poster: record failed",
			"failed_checks", diag.Failed(), "attempts", diag.Attempts)
	} else {
		log.Info("poster: record reconciled", "attempts", diag.Attempts)
	}
	return Result{Title: title, Diagnostics: diag, Duration: time.Since(start), Err: err}
}

func (r *Runner) journalRecord(ctx context.Context, jnl *journal.Journal, runID string, res Result) {
	outcome := "succeeded"
	if res.Err != nil {
		outcome = "failed"
	}
	err := jnl.Append(ctx, journal.Record{
		RunID:        runID,
		ListingTitle: res.Title,
		Outcome:      outcome,
		FailedChecks: res.Diagnostics.Failed(),
		Attempts:     res.Diagnostics.Attempts,
		Stability:    res.Diagnostics.Stability,
		Duration:     res.Duration,
	})
	if err != nil {
		r.logger.Warn("poster: journal append failed", "error", err)
	}
}

// loadRecords reads the data file and overlays each record on the
// built-in defaults. No file, or an empty one, means a single default
// record.
func (r *Runner) loadRecords() ([]listing.Listing, error) {
	raw, err := listing.LoadFile(r.cfg.Files.Data)
	if err != nil {
		return nil, fmt.Errorf("poster: load listings: %w", err)
	}
	base := listing.Default()
	if len(raw) == 0 {
		r.logger.Info("poster: no data file records, using defaults")
		return []listing.Listing{base}, nil
	}
	out := make([]listing.Listing, 0, len(raw))
	for _, rec := range raw {
		out = append(out, listing.FromMap(rec, base))
	}
	return out, nil
}

func (r *Runner) loadCookies() ([]*proto.NetworkCookieParam, error) {
	raw, err := browser.LoadCookieFile(r.cfg.Files.Cookies)
	if err != nil {
		return nil, fmt.Errorf("poster: load cookies: %w", err)
	}
	return browser.NormalizeCookies(raw), nil
}

// RunSummary is one journaled run, for post-mortem inspection.
type RunSummary = journal.RunSummary

// RecentRuns lists the newest journaled runs, up to limit. Requires a
// configured journal path.
func RecentRuns(ctx context.Context, cfg *Config, limit int) ([]RunSummary, error) {
	if cfg.Journal.Path == "" {
		return nil, errors.New("poster: no journal path configured")
	}
	jnl, err := journal.Open(cfg.Journal.Path, nil)
	if err != nil {
		return nil, err
	}
	defer jnl.Close()
	return jnl.Runs(ctx, limit)
}

func recordTitle(rec listing.Listing) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{rec.Make, rec.Model, rec.Year} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "untitled listing"
	}
	return strings.Join(parts, " ")
}
