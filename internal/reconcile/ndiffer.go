// Package reconcile implements NDiffer, the streaming N-way reconciliation
// engine described in §4.2: it consumes N already date/time-sorted record
// streams and yields one discrepancy per trade id that disagrees or is not
// fully present, while holding only the trades still in flight in memory.
package reconcile

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tradediff/internal/domain"
)

// Source is anything that can hand NDiffer records in non-decreasing
// timestamp order and release its resources when abandoned.
// *logstream.LogdirStream satisfies this.
type Source interface {
	Next() (*domain.Record, error)
	Close() error
}

// Stats accumulates run-level counters for the end-of-run summary (§10.1);
// it is not part of the reconciliation algorithm itself.
type Stats struct {
	Reconciled    int
	Discrepancies int
	Evictions     int
}

// NDiffer is a pull iterator: call Next repeatedly until it returns a nil
// discrepancy with a nil error, then call Close.
type NDiffer struct {
	sources         []Source
	sourceNames     []string
	maxSkew         time.Duration
	extremeSkew     time.Duration
	reconcileFields []string
	log             *slog.Logger

	next          *nextRecords
	pendingTrades map[string]*domain.PendingTrade
	pendingIdx    *pendingIndex

	flushing bool
	flushIDs []string
	flushPos int

	Stats Stats
}

// New builds an NDiffer over sources (already ordered per §4.1) and pulls
// one lookahead record from each, per §4.2's Initialisation step.
// sourceNames is used only for error messages; it may be nil, in which case
// numeric indices are used.
func New(sources []Source, sourceNames []string, maxSkew, extremeSkew time.Duration, reconcileFields []string, log *slog.Logger) (*NDiffer, error) {
	nd := &NDiffer{
		sources:         sources,
		sourceNames:     sourceNames,
		maxSkew:         maxSkew,
		extremeSkew:     extremeSkew,
		reconcileFields: reconcileFields,
		log:             log,
		next:            newNextRecords(),
		pendingTrades:   make(map[string]*domain.PendingTrade),
		pendingIdx:      newPendingIndex(),
	}

	for i, src := range sources {
		rec, err := src.Next()
		if err != nil {
			return nil, err
		}
		if rec != nil {
			nd.next.put(nextItem{ts: rec.Timestamp, source: i, rec: rec})
		}
	}

	return nd, nil
}

func (nd *NDiffer) sourceName(i int) string {
	if i < len(nd.sourceNames) && nd.sourceNames[i] != "" {
		return nd.sourceNames[i]
	}
	return fmt.Sprintf("source[%d]", i)
}

// Next runs the main step from §4.2 until it produces a discrepancy or
// reaches end-of-stream (nil, nil).
func (nd *NDiffer) Next() (*domain.DiscrepancyRecord, error) {
	for {
		if nd.next.len() == 0 {
			return nd.flushNext()
		}

		front, _ := nd.next.min()
		threshold := front.ts.Add(-nd.extremeSkew)

		// Eviction pass: the oldest still-pending record has aged past
		// extreme_skew relative to the front of the lookahead queue.
		if pk, ok := nd.pendingIdx.min(); ok && pk.ts.Before(threshold) {
			disc, err := nd.reconcile(pk.trade)
			if err != nil {
				return nil, err
			}
			nd.Stats.Evictions++
			if disc != nil {
				return disc, nil
			}
			continue
		}

		// Ingest pass.
		item, _ := nd.next.popMin()
		rec := item.rec

		repl, err := nd.sources[item.source].Next()
		if err != nil {
			return nil, err
		}
		if repl != nil {
			nd.next.put(nextItem{ts: repl.Timestamp, source: item.source, rec: repl})
		}

		pt, ok := nd.pendingTrades[rec.Trade]
		if !ok {
			pt = domain.NewPendingTrade(len(nd.sources))
			nd.pendingTrades[rec.Trade] = pt
		}
		if !pt.Set(item.source, rec) {
			return nil, fmt.Errorf("duplicate trade %q reported twice by %s", rec.Trade, nd.sourceName(item.source))
		}
		nd.pendingIdx.insert(pendingItem{ts: rec.Timestamp, source: item.source, trade: rec.Trade})

		if pt.Full() {
			disc, err := nd.reconcile(rec.Trade)
			if err != nil {
				return nil, err
			}
			if disc != nil {
				return disc, nil
			}
		}
		// Otherwise loop back to step 2.
	}
}

// flushNext reconciles whatever remains in pending_trades once every source
// is exhausted, in ascending trade-id order. The key set is snapshotted
// before iterating (§9's open question: the reference flush mutates the map
// it iterates; this implementation avoids that hazard by construction).
func (nd *NDiffer) flushNext() (*domain.DiscrepancyRecord, error) {
	if !nd.flushing {
		nd.flushing = true
		nd.flushIDs = make([]string, 0, len(nd.pendingTrades))
		for id := range nd.pendingTrades {
			nd.flushIDs = append(nd.flushIDs, id)
		}
		sort.Strings(nd.flushIDs)
	}

	for nd.flushPos < len(nd.flushIDs) {
		id := nd.flushIDs[nd.flushPos]
		nd.flushPos++
		if _, ok := nd.pendingTrades[id]; !ok {
			continue
		}
		disc, err := nd.reconcile(id)
		if err != nil {
			return nil, err
		}
		if disc != nil {
			return disc, nil
		}
	}
	return nil, nil
}

// reconcile applies §4.2's "Reconciliation of one trade" to tradeID, removes
// its pending_index triples and PendingTrade, and returns the resulting
// discrepancy or nil for a silent match.
func (nd *NDiffer) reconcile(tradeID string) (*domain.DiscrepancyRecord, error) {
	pt := nd.pendingTrades[tradeID]

	var tags []string
	var timestamps []time.Time
	for _, s := range pt.Slots {
		if s == nil {
			tags = append(tags, domain.TagMissing)
			continue
		}
		timestamps = append(timestamps, s.Timestamp)
	}

	if len(timestamps) > 0 {
		min, max := timestamps[0], timestamps[0]
		for _, t := range timestamps[1:] {
			if t.Before(min) {
				min = t
			}
			if t.After(max) {
				max = t
			}
		}
		if max.Sub(min) > nd.maxSkew {
			tags = append(tags, domain.TagTimestamp)
		}
	}

	for _, field := range nd.reconcileFields {
		seen := make(map[string]bool)
		for i, s := range pt.Slots {
			if s == nil {
				continue
			}
			v, ok := s.Get(field)
			if !ok {
				return nil, fmt.Errorf("trade %q: %s record missing reconcile field %q", tradeID, nd.sourceName(i), field)
			}
			seen[domain.Normalize(v)] = true
		}
		if len(seen) > 1 {
			tags = append(tags, field)
		}
	}

	for i, s := range pt.Slots {
		if s != nil {
			nd.pendingIdx.remove(pendingItem{ts: s.Timestamp, source: i, trade: tradeID})
		}
	}
	delete(nd.pendingTrades, tradeID)
	nd.Stats.Reconciled++

	if len(tags) == 0 {
		return nil, nil
	}
	nd.Stats.Discrepancies++
	return &domain.DiscrepancyRecord{TradeID: tradeID, Tags: tags, Slots: pt.Slots}, nil
}

// Close releases every source's resources. Safe to call after Next returns
// end-of-stream, or to abandon iteration early.
func (nd *NDiffer) Close() error {
	var first error
	for _, s := range nd.sources {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
