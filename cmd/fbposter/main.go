// Command fbposter publishes vehicle listings to the Marketplace
// creation form and reconciles every field until the draft is saved.
//
// Usage:
//
//	fbposter                                # defaults: data.json, cookies.json, first image in .
//	fbposter -config fbposter.yaml          # everything from YAML
//	fbposter -data listings.json -photo car.jpg
//	fbposter -journal fbposter.db -runs 10     # inspect recent runs
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geekbim/Auto-Post-FB-Marketplace/poster"
)

func main() {
	configPath := flag.String("config", "", "path to fbposter.yaml config file")
	dataPath := flag.String("data", "", "JSON listings file (overrides config)")
	cookiesPath := flag.String("cookies", "", "JSON cookie export (overrides config)")
	photoPath := flag.String("photo", "", "photo to attach (overrides asset discovery)")
	journalPath := flag.String("journal", "", "SQLite journal database (overrides config)")
	showRuns := flag.Int("runs", 0, "print the N most recent journal runs and exit")
	headless := flag.Bool("headless", false, "run the browser headless")
	timeout := flag.Duration("timeout", 0, "per-record deadline (overrides config)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *dataPath, *cookiesPath, *photoPath,
		*journalPath, *headless, *timeout, *showRuns); err != nil {
		logger.Error("fbposter: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, dataPath, cookiesPath,
	photoPath, journalPath string, headless bool, timeout time.Duration, showRuns int) error {

	cfg := poster.DefaultConfig()
	if configPath != "" {
		loaded, err := poster.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if dataPath != "" {
		cfg.Files.Data = dataPath
	}
	if cookiesPath != "" {
		cfg.Files.Cookies = cookiesPath
	}
	if photoPath != "" {
		cfg.Files.Photo = photoPath
	}
	if journalPath != "" {
		cfg.Journal.Path = journalPath
	}
	if headless {
		cfg.Browser.Headless = true
	}
	if timeout > 0 {
		cfg.Reconcile.Deadline = timeout
	}

	if showRuns > 0 {
		return printRuns(ctx, cfg, showRuns)
	}

	results, err := poster.NewRunner(cfg, logger).Run(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		failed++
		logger.Error("fbposter: record failed",
			"record", res.Title,
			"failed_checks", res.Diagnostics.Failed(),
			"attempts", res.Diagnostics.Attempts,
		)
	}
	if failed > 0 {
		logger.Error("fbposter: run incomplete",
			"failed", failed, "total", len(results))
		os.Exit(1)
	}

	logger.Info("fbposter: all records reconciled", "total", len(results))
	return nil
}

func printRuns(ctx context.Context, cfg *poster.Config, limit int) error {
	runs, err := poster.RecentRuns(ctx, cfg, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no journaled runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s\tstarted=%s\tfinished=%s\trecords=%d\tfailures=%d\n",
			r.ID, r.StartedAt, r.FinishedAt, r.Records, r.Failures)
	}
	return nil
}
