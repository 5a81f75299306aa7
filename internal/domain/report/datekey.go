package report

import (
	"fmt"
	"time"

	"github.com/pinshop/backend/internal/domain/shared"
)

const dateKeyLayout = "2006-01-02"

// DateKey identifies a local calendar day as YYYY-MM-DD
type DateKey string

// TotalKey is the key carried by the synthetic total row
const TotalKey DateKey = "total"

// KeyOf returns the calendar day of t as seen in loc. The key is built from
// the local year, month and day fields, never from a UTC timestamp, so a sale
// at 00:30 local time lands on its own day even when UTC is still on the
// previous one.
func KeyOf(t time.Time, loc *time.Location) DateKey {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", y, int(m), d))
}

// ParseDateKey validates a YYYY-MM-DD string
func ParseDateKey(s string) (DateKey, error) {
	if _, err := time.Parse(dateKeyLayout, s); err != nil {
		return "", shared.Invalidf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return DateKey(s), nil
}

// Start returns local midnight of the day
func (k DateKey) Start(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateKeyLayout, string(k), loc)
	if err != nil {
		return time.Time{}, shared.Invalidf("invalid date key %q", k)
	}
	return t, nil
}

// Range returns [midnight, end of day] for the key
func (k DateKey) Range(loc *time.Location) (DateRange, error) {
	start, err := k.Start(loc)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: start, End: endOfDay(start)}, nil
}

// Formatted renders the key the way the shop reads dates (dd/mm/yyyy)
func (k DateKey) Formatted() string {
	t, err := time.Parse(dateKeyLayout, string(k))
	if err != nil {
		return string(k)
	}
	return t.Format("02/01/2006")
}

// String returns the string representation of DateKey
func (k DateKey) String() string {
	return string(k)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
