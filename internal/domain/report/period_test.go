package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshop/backend/internal/domain/shared"
)

func TestResolvePeriod(t *testing.T) {
	now := at(2024, time.March, 15, 14, 20)
	endOfToday := time.Date(2024, time.March, 15, 23, 59, 59, 999999999, ict)

	tests := []struct {
		name      string
		req       PeriodRequest
		wantStart time.Time
		wantEnd   time.Time
		wantDays  int
	}{
		{
			name:      "today",
			req:       PeriodRequest{Filter: PeriodToday},
			wantStart: at(2024, time.March, 15, 0, 0),
			wantEnd:   endOfToday,
			wantDays:  1,
		},
		{
			name:      "7 days includes today",
			req:       PeriodRequest{Filter: Period7Days},
			wantStart: at(2024, time.March, 9, 0, 0),
			wantEnd:   endOfToday,
			wantDays:  7,
		},
		{
			name:      "current month clamped to today",
			req:       PeriodRequest{Filter: PeriodMonth, Month: 3, Year: 2024},
			wantStart: at(2024, time.March, 1, 0, 0),
			wantEnd:   endOfToday,
			wantDays:  15,
		},
		{
			name:      "past leap february",
			req:       PeriodRequest{Filter: PeriodMonth, Month: 2, Year: 2024},
			wantStart: at(2024, time.February, 1, 0, 0),
			wantEnd:   time.Date(2024, time.February, 29, 23, 59, 59, 999999999, ict),
			wantDays:  29,
		},
		{
			name:      "zero month and year mean current",
			req:       PeriodRequest{Filter: PeriodMonth},
			wantStart: at(2024, time.March, 1, 0, 0),
			wantEnd:   endOfToday,
			wantDays:  15,
		},
		{
			name:      "current quarter clamped",
			req:       PeriodRequest{Filter: PeriodQuarter, Month: 2, Year: 2024},
			wantStart: at(2024, time.January, 1, 0, 0),
			wantEnd:   endOfToday,
			wantDays:  75,
		},
		{
			name:      "past quarter",
			req:       PeriodRequest{Filter: PeriodQuarter, Month: 11, Year: 2023},
			wantStart: at(2023, time.October, 1, 0, 0),
			wantEnd:   time.Date(2023, time.December, 31, 23, 59, 59, 999999999, ict),
			wantDays:  92,
		},
		{
			name:      "past year",
			req:       PeriodRequest{Filter: PeriodYear, Year: 2023},
			wantStart: at(2023, time.January, 1, 0, 0),
			wantEnd:   time.Date(2023, time.December, 31, 23, 59, 59, 999999999, ict),
			wantDays:  365,
		},
		{
			name:      "custom range",
			req:       PeriodRequest{Filter: PeriodCustom, CustomStart: "2024-03-01", CustomEnd: "2024-03-10"},
			wantStart: at(2024, time.March, 1, 0, 0),
			wantEnd:   time.Date(2024, time.March, 10, 23, 59, 59, 999999999, ict),
			wantDays:  10,
		},
		{
			name:      "custom defaults to month start and now",
			req:       PeriodRequest{Filter: PeriodCustom},
			wantStart: at(2024, time.March, 1, 0, 0),
			wantEnd:   now,
			wantDays:  15,
		},
		{
			name:      "filter is case insensitive",
			req:       PeriodRequest{Filter: " TODAY "},
			wantStart: at(2024, time.March, 15, 0, 0),
			wantEnd:   endOfToday,
			wantDays:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := ResolvePeriod(tt.req, now)
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(rng.Start), "start %s", rng.Start)
			assert.True(t, tt.wantEnd.Equal(rng.End), "end %s", rng.End)
			assert.False(t, rng.IsEmpty())
			assert.Len(t, rng.Days(ict), tt.wantDays)
		})
	}
}

func TestResolvePeriod_FutureMonthIsEmpty(t *testing.T) {
	now := at(2024, time.March, 15, 14, 20)

	rng, err := ResolvePeriod(PeriodRequest{Filter: PeriodMonth, Month: 5, Year: 2024}, now)
	require.NoError(t, err)
	assert.True(t, rng.IsEmpty())
	assert.Empty(t, rng.Days(ict))

	rng, err = ResolvePeriod(PeriodRequest{Filter: PeriodYear, Year: 2025}, now)
	require.NoError(t, err)
	assert.True(t, rng.IsEmpty())
}

func TestResolvePeriod_Errors(t *testing.T) {
	now := at(2024, time.March, 15, 14, 20)
	bad := []PeriodRequest{
		{Filter: "decade"},
		{Filter: PeriodMonth, Month: 13},
		{Filter: PeriodMonth, Month: -1},
		{Filter: PeriodYear, Year: 20245},
		{Filter: PeriodCustom, CustomStart: "01/03/2024"},
		{Filter: PeriodCustom, CustomEnd: "2024-13-01"},
		{Filter: PeriodCustom, CustomStart: "0001-01-01", CustomEnd: "9999-12-31"},
		{Filter: PeriodCustom, CustomStart: "2023-01-01", CustomEnd: "2024-01-02"},
		{Filter: PeriodCustom, CustomStart: "2020-01-01"},
	}
	for _, req := range bad {
		_, err := ResolvePeriod(req, now)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput), "%+v", req)
	}
}

func TestResolvePeriod_CustomLengthLimit(t *testing.T) {
	now := at(2024, time.March, 15, 14, 20)

	rng, err := ResolvePeriod(PeriodRequest{Filter: PeriodCustom, CustomStart: "2024-01-01", CustomEnd: "2024-12-31"}, now)
	require.NoError(t, err)
	assert.Len(t, rng.Days(ict), MaxCustomDays)

	_, err = ResolvePeriod(PeriodRequest{Filter: PeriodCustom, CustomStart: "2023-01-01", CustomEnd: "2024-01-01"}, now)
	require.NoError(t, err)

	// reversed ranges stay empty rather than invalid
	rng, err = ResolvePeriod(PeriodRequest{Filter: PeriodCustom, CustomStart: "9999-12-31", CustomEnd: "0001-01-01"}, now)
	require.NoError(t, err)
	assert.True(t, rng.IsEmpty())
}

func TestDateRange_DaysAcrossMonthEnd(t *testing.T) {
	rng := DateRange{Start: at(2024, time.January, 30, 8, 0), End: at(2024, time.February, 2, 1, 0)}
	assert.Equal(t, []DateKey{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}, rng.Days(ict))
}
