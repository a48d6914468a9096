// Package output renders discrepancy records to the mandatory stdout wire
// format and to the optional durable sinks (SQLite audit table, Parquet
// archive, terminal dashboard).
package output

import "github.com/dustin/go-humanize"

// FormatInt formats an integer with comma separators for the end-of-run
// summary (§10.1).
func FormatInt(n int) string {
	return humanize.Comma(int64(n))
}
