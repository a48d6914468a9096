package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"tradediff/internal/domain"
)

// TextWriter renders discrepancy records in the wire format documented in
// §6: one summary line per discrepancy, optionally followed by one indented
// line per source when IncludeDetails is set. The misspelling "discrepencies"
// is preserved verbatim for behavioural parity with the documented contract.
type TextWriter struct {
	w              *bufio.Writer
	sourceNames    []string
	includeDetails bool
}

// NewTextWriter wraps w, labeling each slot position with the corresponding
// entry of sourceNames (typically the logdir paths, in CLI argument order).
func NewTextWriter(w io.Writer, sourceNames []string, includeDetails bool) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w), sourceNames: sourceNames, includeDetails: includeDetails}
}

// Write renders one discrepancy record and, if IncludeDetails is set, its
// per-source detail lines.
func (t *TextWriter) Write(d *domain.DiscrepancyRecord) error {
	if _, err := fmt.Fprintf(t.w, "%s, discrepencies [%s]\n", d.TradeID, joinTags(d.Tags)); err != nil {
		return err
	}
	if !t.includeDetails {
		return nil
	}
	for i, rec := range d.Slots {
		name := t.sourceName(i)
		if rec == nil {
			if _, err := fmt.Fprintf(t.w, "  [%s] [missing]\n", name); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(t.w, "  [%s] timestamp=%s %s\n", name, rec.Timestamp.Format("2006-01-02T15:04:05"), fieldsLine(rec)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered output. Call once after the last Write.
func (t *TextWriter) Flush() error {
	return t.w.Flush()
}

func (t *TextWriter) sourceName(i int) string {
	if i < len(t.sourceNames) {
		return t.sourceNames[i]
	}
	return fmt.Sprintf("source[%d]", i)
}

func joinTags(tags []string) string {
	var b []byte
	for i, tag := range tags {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, tag...)
	}
	return string(b)
}

// fieldsLine renders a record's non-bookkeeping fields in deterministic,
// sorted-by-name order so output is reproducible across runs.
func fieldsLine(rec *domain.Record) string {
	names := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		if name == domain.FieldTrade || name == domain.FieldTimestamp {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b []byte
	for i, name := range names {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, name...)
		b = append(b, '=')
		b = append(b, rec.Fields[name]...)
	}
	return string(b)
}
