package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"tradediff/internal/domain"
)

// ArchiveRow is the on-disk Parquet schema for one discrepancy. Per-source
// fields are flattened to a single pipe-delimited string per slot since the
// field set is dynamic (driven by --reconcile_fields); the wire text output
// remains the structured, human-facing form.
type ArchiveRow struct {
	TradeID string `parquet:"trade_id"`
	Tags    string `parquet:"tags"`
	Slots   string `parquet:"slots"`
}

// ArchiveSink buffers a run's discrepancies and writes them to a single
// Parquet file on Close. Optional: enabled with --archive-dir.
type ArchiveSink struct {
	path string
	rows []ArchiveRow
}

// NewArchiveSink creates an ArchiveSink that will write one file at
// <dir>/discrepancies.parquet on Close.
func NewArchiveSink(dir string) (*ArchiveSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ArchiveSink{path: filepath.Join(dir, "discrepancies.parquet")}, nil
}

// Write appends one discrepancy to the in-memory buffer.
func (a *ArchiveSink) Write(d *domain.DiscrepancyRecord) error {
	a.rows = append(a.rows, ArchiveRow{
		TradeID: d.TradeID,
		Tags:    strings.Join(d.Tags, ","),
		Slots:   formatSlots(d.Slots),
	})
	return nil
}

// Close flushes the buffered rows to disk. A run with zero discrepancies
// writes no file.
func (a *ArchiveSink) Close() error {
	if len(a.rows) == 0 {
		return nil
	}
	return parquet.WriteFile(a.path, a.rows)
}

func formatSlots(slots []*domain.Record) string {
	parts := make([]string, len(slots))
	for i, rec := range slots {
		if rec == nil {
			parts[i] = "missing"
			continue
		}
		parts[i] = fmt.Sprintf("timestamp=%s %s", rec.Timestamp.Format("2006-01-02T15:04:05"), fieldsLine(rec))
	}
	return strings.Join(parts, "|")
}
