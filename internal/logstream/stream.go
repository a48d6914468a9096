// Package logstream presents a directory of dated CSV log files as a single
// lazy, finite, date-then-time ordered record stream (§4.1).
package logstream

import (
	"container/heap"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"tradediff/internal/domain"
)

// LogdirStream wraps one directory of CSV log files. Call Next repeatedly
// until it returns a nil record with a nil error; always call Close, even
// after an error or an early abandon, to release any file handles still
// open for the in-progress date.
type LogdirStream struct {
	ID    string
	dates []time.Time
	files map[int64][]string // keyed by dates[i].Unix(), to avoid time.Time as a map key pitfall
	idx   int
	cur   *dateMerger
	log   *slog.Logger
}

// Open scans dir once for regular files, classifies each by basename via
// dateFromBasename, groups them by date, and returns a stream ready to merge
// dates in ascending order. id is used only for logging; it defaults to dir
// when empty.
func Open(dir, id string, log *slog.Logger) (*LogdirStream, error) {
	if id == "" {
		id = dir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading logdir %s: %w", dir, err)
	}

	grouped := make(map[int64][]string)
	keyDates := make(map[int64]time.Time)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		d, ok := dateFromBasename(e.Name())
		if !ok {
			log.Warn("skipping file with unrecognised name", "source", id, "file", e.Name())
			continue
		}
		key := d.Unix()
		grouped[key] = append(grouped[key], filepath.Join(dir, e.Name()))
		keyDates[key] = d
	}

	dates := make([]time.Time, 0, len(keyDates))
	for _, d := range keyDates {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return &LogdirStream{ID: id, dates: dates, files: grouped, log: log}, nil
}

// Next returns the next record in full date-time order, or (nil, nil) once
// the stream is exhausted.
func (s *LogdirStream) Next() (*domain.Record, error) {
	for {
		if s.cur == nil {
			if s.idx >= len(s.dates) {
				return nil, nil
			}
			date := s.dates[s.idx]
			paths := s.files[date.Unix()]
			s.idx++

			m, err := newDateMerger(paths, date, s.ID, s.log)
			if err != nil {
				return nil, err
			}
			s.cur = m
		}

		rec, err := s.cur.next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			s.cur.close()
			s.cur = nil
			continue
		}
		return rec, nil
	}
}

// Close releases any file handles held by the in-progress date's merge. It
// is safe to call multiple times and after Next has already been exhausted.
func (s *LogdirStream) Close() error {
	if s.cur == nil {
		return nil
	}
	err := s.cur.close()
	s.cur = nil
	return err
}

// fileCursor tracks one open file within a date's merge.
type fileCursor struct {
	path     string
	f        *os.File
	r        *csv.Reader
	header   []string
	rowCount int
	next     map[string]string // nil once exhausted
	nextTime time.Duration
}

func openFileCursor(path string) (*fileCursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	fc := &fileCursor{path: path, f: f, r: r, header: header}
	if err := fc.advance(); err != nil {
		f.Close()
		return nil, err
	}
	return fc, nil
}

// advance reads the next row into fc.next/fc.nextTime, or sets fc.next to
// nil at EOF.
func (fc *fileCursor) advance() error {
	row, err := fc.r.Read()
	if err == io.EOF {
		fc.next = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", fc.path, err)
	}

	m := make(map[string]string, len(fc.header))
	for i, col := range fc.header {
		if i < len(row) {
			m[col] = row[i]
		}
	}

	ts, ok := m[domain.FieldTimestamp]
	if !ok {
		return fmt.Errorf("%s: row %d missing mandatory column %q", fc.path, fc.rowCount+1, domain.FieldTimestamp)
	}
	d, err := parseIntraday(ts)
	if err != nil {
		return fmt.Errorf("%s: row %d: parsing timestamp %q: %w", fc.path, fc.rowCount+1, ts, err)
	}

	fc.next = m
	fc.nextTime = d
	fc.rowCount++
	return nil
}

// intradayLayouts are tried in order; the first that parses s wins.
var intradayLayouts = []string{
	"15:04:05.999999999",
	"15:04:05",
	"15:04",
}

// parseIntraday parses an ISO-8601 time-of-day string into a duration since
// midnight. Second precision is all the spec requires; sub-second digits are
// accepted but not required.
func parseIntraday(s string) (time.Duration, error) {
	var lastErr error
	for _, layout := range intradayLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second +
				time.Duration(t.Nanosecond()), nil
		}
		lastErr = err
	}
	return 0, lastErr
}

// dateMerger merges every file belonging to one calendar date into a single
// ascending-by-intraday-time stream, via a small priority queue over the
// currently-open files. All files for the date are opened up front and
// closed (one at a time, as each is exhausted, and all of them on close)
// before the stream advances to the next date.
type dateMerger struct {
	sourceID string
	date     time.Time
	cursors  []*fileCursor
	pq       cursorHeap
	log      *slog.Logger
}

func newDateMerger(paths []string, date time.Time, sourceID string, log *slog.Logger) (*dateMerger, error) {
	dm := &dateMerger{sourceID: sourceID, date: date, log: log}
	for _, p := range paths {
		fc, err := openFileCursor(p)
		if err != nil {
			dm.close()
			return nil, err
		}
		dm.cursors = append(dm.cursors, fc)
		if fc.next != nil {
			heap.Push(&dm.pq, fc.index(len(dm.cursors)-1))
		}
	}
	return dm, nil
}

// next pops the globally-next row for this date, rewrites its timestamp
// field to the full date-time, and returns it. It returns (nil, nil) once
// every file for the date is exhausted.
func (dm *dateMerger) next() (*domain.Record, error) {
	for dm.pq.Len() > 0 {
		item := heap.Pop(&dm.pq).(cursorItem)
		fc := dm.cursors[item.idx]
		row := fc.next
		full := dm.date.Add(fc.nextTime)

		if err := fc.advance(); err != nil {
			return nil, err
		}
		if fc.next != nil {
			heap.Push(&dm.pq, fc.index(item.idx))
		} else {
			dm.log.Info("exhausted log file", "source", dm.sourceID, "file", fc.path, "rows", fc.rowCount)
			fc.f.Close()
			fc.f = nil
		}

		trade, ok := row[domain.FieldTrade]
		if !ok || trade == "" {
			return nil, fmt.Errorf("%s: row missing mandatory non-empty column %q", fc.path, domain.FieldTrade)
		}

		row[domain.FieldTimestamp] = full.Format(time.RFC3339Nano)

		return &domain.Record{
			Trade:     trade,
			Timestamp: full,
			Fields:    row,
		}, nil
	}
	return nil, nil
}

// close releases any file handles still open (used both for normal date
// rollover and for an abandoned-mid-stream iterator).
func (dm *dateMerger) close() error {
	var first error
	for _, fc := range dm.cursors {
		if fc.f == nil {
			continue
		}
		if err := fc.f.Close(); err != nil && first == nil {
			first = err
		}
		fc.f = nil
	}
	return first
}

// cursorItem/cursorHeap implement a plain container/heap priority queue over
// currently-open file cursors for one date. Unlike NDiffer's pending_index,
// nothing here is ever deleted except by popping the minimum, so neither a
// tombstone table nor an ordered tree (as used for NDiffer's ordered sets) is
// needed.
type cursorItem struct {
	t   time.Duration
	idx int // index into dateMerger.cursors
}

func (fc *fileCursor) index(idx int) cursorItem {
	return cursorItem{t: fc.nextTime, idx: idx}
}

type cursorHeap []cursorItem

func (h cursorHeap) Len() int { return len(h) }
func (h cursorHeap) Less(i, j int) bool {
	if h[i].t != h[j].t {
		return h[i].t < h[j].t
	}
	return h[i].idx < h[j].idx // deterministic tie-break among files of the same date
}
func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x any)   { *h = append(*h, x.(cursorItem)) }
func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
