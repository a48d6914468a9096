package reconcile

import (
	"time"

	"github.com/google/btree"

	"tradediff/internal/domain"
)

// nextItem is one entry of NDiffer's next_records: the lookahead record held
// for one source, ordered primarily by timestamp. Since next_records holds
// at most one entry per source at a time, source alone already disambiguates
// equal timestamps; the full (source_index, trade_id) tie-break from §4.2
// only matters for pendingItem below.
type nextItem struct {
	ts     time.Time
	source int
	rec    *domain.Record
}

func (a nextItem) Less(than btree.Item) bool {
	b := than.(nextItem)
	if !a.ts.Equal(b.ts) {
		return a.ts.Before(b.ts)
	}
	return a.source < b.source
}

// nextRecords is NDiffer's lookahead multiset, backed by the same ordered
// btree.BTree the retrieval pack uses for an end-block index
// (shekhirin-erigon-lib's aggregator keys a btree.BTree by Less-comparable
// items); here the ordering key is (timestamp, source) instead of end block.
type nextRecords struct {
	t *btree.BTree
}

func newNextRecords() *nextRecords {
	return &nextRecords{t: btree.New(32)}
}

func (n *nextRecords) put(it nextItem) {
	n.t.ReplaceOrInsert(it)
}

func (n *nextRecords) min() (nextItem, bool) {
	it := n.t.Min()
	if it == nil {
		return nextItem{}, false
	}
	return it.(nextItem), true
}

func (n *nextRecords) popMin() (nextItem, bool) {
	it := n.t.DeleteMin()
	if it == nil {
		return nextItem{}, false
	}
	return it.(nextItem), true
}

func (n *nextRecords) len() int { return n.t.Len() }

// pendingItem is one entry of NDiffer's pending_index: a triple mirroring a
// filled PendingTrade slot. Unlike nextRecords, many entries can share a
// timestamp and even a source (two different pending trades happening to
// arrive at the same instant from the same source), so the full
// (source_index, trade_id) tie-break applies.
type pendingItem struct {
	ts     time.Time
	source int
	trade  string
}

func (a pendingItem) Less(than btree.Item) bool {
	b := than.(pendingItem)
	if !a.ts.Equal(b.ts) {
		return a.ts.Before(b.ts)
	}
	if a.source != b.source {
		return a.source < b.source
	}
	return a.trade < b.trade
}

// pendingIndex is the ordered set of (timestamp, source_index, trade_id)
// triples from §3: it must support O(log n) retrieval of the globally oldest
// entry and O(log n) deletion of an arbitrary entry (reconciliation removes
// every triple belonging to a trade, which is almost never the current
// minimum) — the reason a plain heap without tombstones won't do, per §9.
type pendingIndex struct {
	t *btree.BTree
}

func newPendingIndex() *pendingIndex {
	return &pendingIndex{t: btree.New(32)}
}

func (p *pendingIndex) insert(it pendingItem) {
	p.t.ReplaceOrInsert(it)
}

func (p *pendingIndex) remove(it pendingItem) {
	p.t.Delete(it)
}

func (p *pendingIndex) min() (pendingItem, bool) {
	it := p.t.Min()
	if it == nil {
		return pendingItem{}, false
	}
	return it.(pendingItem), true
}

func (p *pendingIndex) len() int { return p.t.Len() }
