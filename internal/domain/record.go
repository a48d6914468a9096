// Package domain holds the core types shared by the log-directory reader and
// the reconciliation engine: records, dated files, pending trades, and
// discrepancies.
package domain

import (
	"strings"
	"time"
)

// Mandatory field names every Record carries.
const (
	FieldTrade     = "trade"
	FieldTimestamp = "timestamp"
)

// DefaultReconcileFields is used when the caller does not override the set
// of fields compared across sources.
var DefaultReconcileFields = []string{"symbol", "price", "quantity"}

// Record is one row of a source log, promoted to carry a full date-time in
// its timestamp field. Values are kept as opaque strings; only the fields
// named in a reconciliation's reconcile_fields are ever compared, and then
// only after normalisation.
type Record struct {
	Trade     string
	Timestamp time.Time
	Fields    map[string]string
}

// Get returns the raw value of a named field, and whether it was present.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Normalize lower-cases s and strips a single leading '-', matching the
// reference reconciler's field-comparison rule exactly: no whitespace
// trimming, no handling of multi-character signs.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	return s
}

// DatedFile is a single regular file paired with the calendar date extracted
// from its basename by one of the three filename patterns in §4.1.
type DatedFile struct {
	Path string
	Date time.Time // Midnight UTC on the file's calendar date.
}
