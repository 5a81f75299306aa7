package report

import (
	"strings"
	"time"

	"github.com/pinshop/backend/internal/domain/shared"
)

// MaxCustomDays bounds a custom range, in local calendar days
const MaxCustomDays = 366

// PeriodFilter selects the report period
type PeriodFilter string

const (
	PeriodToday   PeriodFilter = "today"
	Period7Days   PeriodFilter = "7days"
	PeriodMonth   PeriodFilter = "month"
	PeriodQuarter PeriodFilter = "quarter"
	PeriodYear    PeriodFilter = "year"
	PeriodCustom  PeriodFilter = "custom"
)

// IsValid checks if the filter is a known PeriodFilter
func (p PeriodFilter) IsValid() bool {
	switch p {
	case PeriodToday, Period7Days, PeriodMonth, PeriodQuarter, PeriodYear, PeriodCustom:
		return true
	}
	return false
}

// String returns the string representation of PeriodFilter
func (p PeriodFilter) String() string {
	return string(p)
}

// PeriodRequest is the user's period selection. Month and Year anchor the
// month, quarter and year filters; zero means "current". CustomStart and
// CustomEnd are YYYY-MM-DD strings used by the custom filter.
type PeriodRequest struct {
	Filter      PeriodFilter
	Month       int
	Year        int
	CustomStart string
	CustomEnd   string
}

// DateRange is an inclusive instant range
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsEmpty is true when End precedes Start, e.g. a month entirely in the future
func (r DateRange) IsEmpty() bool {
	return r.End.Before(r.Start)
}

// Contains reports start <= t <= end
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days lists every local calendar day touched by the range, in order.
// An empty range has no days.
func (r DateRange) Days(loc *time.Location) []DateKey {
	if r.IsEmpty() {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	first := startOfDay(r.Start.In(loc))
	last := KeyOf(r.End, loc)

	var days []DateKey
	y, m, d := first.Date()
	for i := 0; ; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		key := KeyOf(day, loc)
		days = append(days, key)
		if key >= last {
			break
		}
	}
	return days
}

// ResolvePeriod turns a period selection into a concrete range in now's
// location. Month, quarter and year ranges are clamped to the end of today.
func ResolvePeriod(req PeriodRequest, now time.Time) (DateRange, error) {
	filter := PeriodFilter(strings.ToLower(strings.TrimSpace(string(req.Filter))))
	if filter == "" {
		filter = PeriodMonth
	}
	if !filter.IsValid() {
		return DateRange{}, shared.Invalidf("unknown period %q", req.Filter)
	}

	loc := now.Location()
	year, month := req.Year, req.Month
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return DateRange{}, shared.Invalidf("month must be between 1 and 12, got %d", month)
	}
	if year < 1900 || year > 9999 {
		return DateRange{}, shared.Invalidf("year %d is out of range", year)
	}

	today := endOfDay(now)

	switch filter {
	case PeriodToday:
		return DateRange{Start: startOfDay(now), End: today}, nil
	case Period7Days:
		return DateRange{Start: startOfDay(now.AddDate(0, 0, -6)), End: today}, nil
	case PeriodMonth:
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		end := endOfDay(time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc))
		return clamp(start, end, today), nil
	case PeriodQuarter:
		q := (month - 1) / 3
		start := time.Date(year, time.Month(q*3+1), 1, 0, 0, 0, 0, loc)
		end := endOfDay(time.Date(year, time.Month(q*3+4), 0, 0, 0, 0, 0, loc))
		return clamp(start, end, today), nil
	case PeriodYear:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		end := endOfDay(time.Date(year, time.December, 31, 0, 0, 0, 0, loc))
		return clamp(start, end, today), nil
	default:
		return resolveCustom(req, now)
	}
}

func resolveCustom(req PeriodRequest, now time.Time) (DateRange, error) {
	loc := now.Location()

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	if s := strings.TrimSpace(req.CustomStart); s != "" {
		t, err := time.ParseInLocation(dateKeyLayout, s, loc)
		if err != nil {
			return DateRange{}, shared.Invalidf("invalid start date %q, expected YYYY-MM-DD", s)
		}
		start = t
	}

	end := now
	if s := strings.TrimSpace(req.CustomEnd); s != "" {
		t, err := time.ParseInLocation(dateKeyLayout, s, loc)
		if err != nil {
			return DateRange{}, shared.Invalidf("invalid end date %q, expected YYYY-MM-DD", s)
		}
		end = endOfDay(t)
	}
	if n := calendarDays(start, end); n > MaxCustomDays {
		return DateRange{}, shared.Invalidf("custom range spans %d days, at most %d allowed", n, MaxCustomDays)
	}
	return DateRange{Start: start, End: end}, nil
}

// calendarDays counts the local days from start to end inclusive, 0 when end
// precedes start. Calendar fields are compared in UTC so DST shifts don't
// change the count.
func calendarDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	first := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	last := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(last.Sub(first).Hours()/24) + 1
}

func clamp(start, end, limit time.Time) DateRange {
	if end.After(limit) {
		end = limit
	}
	return DateRange{Start: start, End: end}
}
