package logstream

import (
	"testing"
	"time"
)

func TestDateFromBasename(t *testing.T) {
	cases := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{"19000101foo.csv", time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"01012023foo.csv", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"23-01-01foo.csv", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"20240615_exchangeA.csv", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"06152024_exchangeB.csv", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"99-12-31.csv", time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"18991231foo.csv", time.Time{}, false}, // year<1900 falls through to pattern 2, which fails (month=18)
		{"notadate.csv", time.Time{}, false},
		{"2024-06-15.csv", time.Time{}, false}, // four-digit year doesn't match the two-digit dashed pattern
	}

	for _, c := range cases {
		got, ok := dateFromBasename(c.name)
		if ok != c.ok {
			t.Errorf("dateFromBasename(%q) ok = %v, want %v", c.name, ok, c.ok)
			continue
		}
		if ok && !got.Equal(c.want) {
			t.Errorf("dateFromBasename(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
