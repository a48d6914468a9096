package output

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"tradediff/internal/domain"
)

// AuditSink persists every discrepancy to a SQLite table, in addition to the
// mandatory stdout stream, so a run can be queried after the fact without
// re-parsing logs. Optional: enabled with --audit-db.
type AuditSink struct {
	db *sql.DB
}

const createAuditTable = `
CREATE TABLE IF NOT EXISTS discrepancies (
	trade_id   TEXT NOT NULL,
	tags       TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);`

// NewAuditSink opens (or creates) a SQLite database at dbPath and ensures its
// schema exists.
func NewAuditSink(dbPath string) (*AuditSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(context.Background(), createAuditTable); err != nil {
		db.Close()
		return nil, err
	}
	return &AuditSink{db: db}, nil
}

// Write inserts one discrepancy row.
func (a *AuditSink) Write(ctx context.Context, d *domain.DiscrepancyRecord) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO discrepancies (trade_id, tags, recorded_at) VALUES (?, ?, ?)`,
		d.TradeID, strings.Join(d.Tags, ","), time.Now().UTC().Format(time.RFC3339))
	return err
}

// Close closes the underlying database connection.
func (a *AuditSink) Close() error {
	return a.db.Close()
}
