package domain

// Discrepancy tags.
const (
	TagMissing   = "_missing"
	TagTimestamp = "timestamp"
)

// PendingTrade is the fixed-size slot array for one trade id, one slot per
// source. A nil slot means that source has not yet reported the trade.
type PendingTrade struct {
	Slots []*Record
}

// NewPendingTrade allocates an empty slot array of the given width.
func NewPendingTrade(n int) *PendingTrade {
	return &PendingTrade{Slots: make([]*Record, n)}
}

// Filled reports the number of non-nil slots.
func (p *PendingTrade) Filled() int {
	n := 0
	for _, s := range p.Slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Full reports whether every slot holds a record.
func (p *PendingTrade) Full() bool {
	return p.Filled() == len(p.Slots)
}

// Set writes rec into slot i. It returns false if the slot was already
// filled — callers must treat that as the fatal "duplicate trade within one
// source" condition.
func (p *PendingTrade) Set(i int, rec *Record) bool {
	if p.Slots[i] != nil {
		return false
	}
	p.Slots[i] = rec
	return true
}

// DiscrepancyRecord is the product of reconciling one trade id: the id, the
// tags describing every way the copies disagreed or were missing, and the
// per-source slot array (nil entries mean "missing from this source").
type DiscrepancyRecord struct {
	TradeID string
	Tags    []string
	Slots   []*Record
}
