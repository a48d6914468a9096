package logstream

import (
	"regexp"
	"strconv"
	"time"
)

// reEightDigits matches an 8-digit prefix, ambiguous between the YYYYMMDD
// and MMDDYYYY patterns; reEightDigits.FindString never matches dashes, so
// it never collides with the YY-MM-DD pattern below.
var reEightDigits = regexp.MustCompile(`^\d{8}`)

// reYYMMDD matches the dashed two-digit-year pattern.
var reYYMMDD = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{2})`)

// yearFloor is the minimum year that lets an 8-digit prefix be read as
// YYYYMMDD (pattern 1) instead of falling through to MMDDYYYY (pattern 2).
const yearFloor = 1900

// dateFromBasename extracts the calendar date encoded in a log file's
// basename, trying the three patterns from §4.1 in order and returning the
// first one that both matches and names a valid calendar date. It returns
// ok=false for any basename none of the three patterns resolve to a valid
// date — the caller logs this at warning level and skips the file.
func dateFromBasename(basename string) (date time.Time, ok bool) {
	if digits := reEightDigits.FindString(basename); digits != "" {
		year := atoi(digits[0:4])
		if year >= yearFloor {
			month, day := atoi(digits[4:6]), atoi(digits[6:8])
			if d, valid := validDate(year, month, day); valid {
				return d, true
			}
			// Pattern 1 claimed this prefix (year >= 1900) but the month/day
			// it names is not a real calendar date; pattern 2 cannot also
			// claim the same 8 digits, so this basename is unparseable.
			return time.Time{}, false
		}

		month, day, year := atoi(digits[0:2]), atoi(digits[2:4]), atoi(digits[4:8])
		return validDate(year, month, day)
	}

	if m := reYYMMDD.FindStringSubmatch(basename); m != nil {
		year := 2000 + atoi(m[1])
		month, day := atoi(m[2]), atoi(m[3])
		return validDate(year, month, day)
	}

	return time.Time{}, false
}

// validDate builds a UTC midnight time.Time for (year, month, day) and
// rejects any combination time.Date would silently normalise (e.g. month 13,
// Feb 30) by checking the result round-trips to the same fields.
func validDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(d.Month()) != month || d.Day() != day || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
