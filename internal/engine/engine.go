// Package engine wires together the per-source record streams, the
// reconciliation core, and the output sinks into one run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tradediff/internal/logstream"
	"tradediff/internal/output"
	"tradediff/internal/reconcile"
)

// Sinks bundles the optional durable outputs alongside the mandatory text
// writer. Audit, Archive, and TUI are all nil when not requested.
type Sinks struct {
	Text    *output.TextWriter
	Audit   *output.AuditSink
	Archive *output.ArchiveSink
	TUI     *tea.Program
}

// Engine opens one LogdirStream per logdir, drives NDiffer across them, and
// fans every discrepancy out to the configured sinks.
type Engine struct {
	logdirs         []string
	maxSkew         time.Duration
	extremeSkew     time.Duration
	reconcileFields []string
	log             *slog.Logger
	sinks           Sinks
}

// NewEngine creates an Engine wired with the given logdirs (in CLI argument
// order — also used as source names) and the reconciliation tunables.
func NewEngine(logdirs []string, maxSkew, extremeSkew time.Duration, reconcileFields []string, log *slog.Logger, sinks Sinks) *Engine {
	return &Engine{
		logdirs:         logdirs,
		maxSkew:         maxSkew,
		extremeSkew:     extremeSkew,
		reconcileFields: reconcileFields,
		log:             log,
		sinks:           sinks,
	}
}

// Run opens every source, drives reconciliation to completion, and returns
// the run's summary statistics. A non-nil error means a fatal input
// malformation or I/O failure occurred; output already written for prior
// discrepancies stands.
func (e *Engine) Run(ctx context.Context) (reconcile.Stats, error) {
	sources := make([]reconcile.Source, 0, len(e.logdirs))
	for _, dir := range e.logdirs {
		s, err := logstream.Open(dir, dir, e.log)
		if err != nil {
			return reconcile.Stats{}, fmt.Errorf("opening logdir %s: %w", dir, err)
		}
		sources = append(sources, s)
	}

	nd, err := reconcile.New(sources, e.logdirs, e.maxSkew, e.extremeSkew, e.reconcileFields, e.log)
	if err != nil {
		return reconcile.Stats{}, err
	}
	defer nd.Close()

	for {
		if err := ctx.Err(); err != nil {
			return nd.Stats, err
		}

		disc, err := nd.Next()
		if err != nil {
			return nd.Stats, err
		}
		if disc == nil {
			break
		}

		if err := e.sinks.Text.Write(disc); err != nil {
			return nd.Stats, fmt.Errorf("writing discrepancy for trade %q: %w", disc.TradeID, err)
		}
		if e.sinks.Audit != nil {
			if err := e.sinks.Audit.Write(ctx, disc); err != nil {
				return nd.Stats, fmt.Errorf("audit-db: writing trade %q: %w", disc.TradeID, err)
			}
		}
		if e.sinks.Archive != nil {
			if err := e.sinks.Archive.Write(disc); err != nil {
				return nd.Stats, fmt.Errorf("archive-dir: writing trade %q: %w", disc.TradeID, err)
			}
		}
		if e.sinks.TUI != nil {
			e.sinks.TUI.Send(output.DiscMsg(*disc))
			e.sinks.TUI.Send(output.StatsMsg(nd.Stats))
		}
	}

	if err := e.sinks.Text.Flush(); err != nil {
		return nd.Stats, err
	}
	if e.sinks.TUI != nil {
		e.sinks.TUI.Send(output.QuitMsg{})
	}

	return nd.Stats, nil
}
