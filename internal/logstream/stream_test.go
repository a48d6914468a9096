package logstream

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func drain(t *testing.T, s *LogdirStream) []string {
	t.Helper()
	var trades []string
	for {
		rec, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if rec == nil {
			break
		}
		trades = append(trades, rec.Trade)
	}
	return trades
}

func TestLogdirStreamOrdersByDateThenTime(t *testing.T) {
	dir := t.TempDir()

	// Two files on the same date (20240101), merged by intraday time.
	writeCSV(t, dir, "20240101_a.csv", "timestamp,trade,symbol,price,quantity\n10:00:00,T2,AAPL,100,10\n11:00:00,T4,AAPL,101,10\n")
	writeCSV(t, dir, "20240101_b.csv", "timestamp,trade,symbol,price,quantity\n09:00:00,T1,AAPL,100,10\n10:30:00,T3,AAPL,100,10\n")
	// A later date, should come after all of 20240101 regardless of its own intraday times.
	writeCSV(t, dir, "20240102_a.csv", "timestamp,trade,symbol,price,quantity\n00:00:01,T5,AAPL,100,10\n")
	// Unparseable name: skipped with a warning, not an error.
	writeCSV(t, dir, "README.txt", "not a log file")

	s, err := Open(dir, "srcA", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := drain(t, s)
	want := []string{"T1", "T2", "T3", "T4", "T5"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trade[%d] = %s, want %s (full sequence: %v)", i, got[i], want[i], got)
		}
	}
}

func TestLogdirStreamRewritesTimestampToFullDateTime(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "20240615_a.csv", "timestamp,trade,symbol,price,quantity\n14:30:00,T1,AAPL,100,10\n")

	s, err := Open(dir, "srcA", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rec, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Timestamp.Year() != 2024 || rec.Timestamp.Month() != 6 || rec.Timestamp.Day() != 15 {
		t.Errorf("timestamp date = %v, want 2024-06-15", rec.Timestamp)
	}
	if rec.Timestamp.Hour() != 14 || rec.Timestamp.Minute() != 30 {
		t.Errorf("timestamp time = %v, want 14:30:00", rec.Timestamp)
	}
}

func TestLogdirStreamMissingTradeColumnIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "20240615_a.csv", "timestamp,symbol,price,quantity\n14:30:00,AAPL,100,10\n")

	s, err := Open(dir, "srcA", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.Next(); err == nil {
		t.Error("expected a fatal error for a row with no trade column")
	}
}

func TestLogdirStreamEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "srcA", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rec, err := s.Next()
	if err != nil || rec != nil {
		t.Errorf("Next() on empty dir = (%v, %v), want (nil, nil)", rec, err)
	}
}
