// Command diff_trades reconciles trade records observed independently by two
// or more log directories and prints a discrepancy for every trade id whose
// copies disagree or are not all present.
//
// Usage:
//
//	diff_trades [options] <logdir> [<logdir> ...]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tradediff/internal/config"
	"tradediff/internal/engine"
	"tradediff/internal/output"
	"tradediff/internal/util"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("diff_trades", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: diff_trades [options] <logdir> [<logdir> ...]\n\n")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "optional YAML file supplying defaults for any flag not set explicitly")
	maxSkewSeconds := fs.Int("max_skew_seconds", -1, "max allowed max-min timestamp delta within one matched trade (default 900)")
	extremeSkewSeconds := fs.Int("extreme_skew_seconds", -1, "age beyond which a still-incomplete pending trade is force-reconciled (default 3600)")
	reconcileFieldsFlag := fs.String("reconcile_fields", "", "comma-separated field names compared in addition to timestamp skew (default symbol,price,quantity)")
	includeDetails := fs.Bool("include_details", false, "include full per-source records in each discrepancy's rendered form")
	auditDB := fs.String("audit-db", "", "optional SQLite database path recording every discrepancy")
	archiveDir := fs.String("archive-dir", "", "optional directory receiving a Parquet archive of every discrepancy")
	tuiFlag := fs.Bool("tui", false, "show a live terminal dashboard of run progress")
	logLevel := fs.String("log-level", "", "logger level: debug, info, warn, error (default info)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	logdirs := fs.Args()
	if len(logdirs) < 2 {
		fmt.Fprintln(os.Stderr, "diff_trades: at least two logdirs are required for N-way reconciliation")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "diff_trades: loading config: %v\n", err)
		return 1
	}

	// Explicit flags win over file/env defaults.
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if *maxSkewSeconds >= 0 {
		cfg.Reconcile.MaxSkewSeconds = *maxSkewSeconds
	}
	if *extremeSkewSeconds >= 0 {
		cfg.Reconcile.ExtremeSkewSeconds = *extremeSkewSeconds
	}
	if *reconcileFieldsFlag != "" {
		cfg.Reconcile.Fields = strings.Split(*reconcileFieldsFlag, ",")
	}
	if explicit["include_details"] {
		cfg.Reconcile.IncludeDetails = *includeDetails
	}
	if *auditDB != "" {
		cfg.Output.AuditDB = *auditDB
	}
	if *archiveDir != "" {
		cfg.Output.ArchiveDir = *archiveDir
	}
	if explicit["tui"] {
		cfg.Output.TUI = *tuiFlag
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	log := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(log)

	sinks := engine.Sinks{
		Text: output.NewTextWriter(os.Stdout, logdirs, cfg.Reconcile.IncludeDetails),
	}

	if cfg.Output.AuditDB != "" {
		sink, err := output.NewAuditSink(cfg.Output.AuditDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "diff_trades: opening audit-db: %v\n", err)
			return 1
		}
		defer sink.Close()
		sinks.Audit = sink
	}

	if cfg.Output.ArchiveDir != "" {
		sink, err := output.NewArchiveSink(cfg.Output.ArchiveDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "diff_trades: opening archive-dir: %v\n", err)
			return 1
		}
		defer sink.Close()
		sinks.Archive = sink
	}

	var program *tea.Program
	if cfg.Output.TUI {
		program = tea.NewProgram(output.NewDashboard())
		sinks.TUI = program
		done := make(chan error, 1)
		go func() { _, err := program.Run(); done <- err }()
		defer func() { <-done }()
	}

	e := engine.NewEngine(
		logdirs,
		time.Duration(cfg.Reconcile.MaxSkewSeconds)*time.Second,
		time.Duration(cfg.Reconcile.ExtremeSkewSeconds)*time.Second,
		cfg.Reconcile.Fields,
		log,
		sinks,
	)

	stats, err := e.Run(context.Background())
	if err != nil {
		slog.Error("diff_trades run failed", "error", err)
		fmt.Fprintf(os.Stderr, "diff_trades: %v\n", err)
		return 1
	}

	slog.Info("run complete",
		"reconciled", output.FormatInt(stats.Reconciled),
		"discrepancies", output.FormatInt(stats.Discrepancies),
		"evictions", output.FormatInt(stats.Evictions),
	)

	return 0
}
