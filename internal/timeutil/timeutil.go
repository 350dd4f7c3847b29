package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Clock returns the current time. Tests inject fixed clocks.
type Clock func() time.Time

// Now calls c, falling back to time.Now for a nil clock.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Month is a calendar month that can be read from "7", "07", "jul" or "July".
type Month time.Month

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(text []byte) error {
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = Month(parsed)
	return nil
}

// String returns the English month name.
func (m Month) String() string {
	return time.Month(m).String()
}

// ParseMonth accepts a month number (1-12) or an English month name or its
// three-letter abbreviation, case-insensitively.
func ParseMonth(value string) (time.Month, error) {
	raw := strings.TrimSpace(value)
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range 1-12", n)
		}
		return time.Month(n), nil
	}
	lower := strings.ToLower(raw)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if lower == name || (len(lower) == 3 && strings.HasPrefix(name, lower)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", value)
}
