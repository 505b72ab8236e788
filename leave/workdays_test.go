package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-service/leave"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := leave.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestWorkingDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"monday to friday", "2024-01-01", "2024-01-05", 5},
		{"weekend only", "2024-01-06", "2024-01-07", 0},
		{"single monday", "2024-01-01", "2024-01-01", 1},
		{"single saturday", "2024-01-06", "2024-01-06", 0},
		{"friday to monday", "2024-01-05", "2024-01-08", 2},
		{"two full weeks", "2024-01-01", "2024-01-14", 10},
		{"wednesday to next tuesday", "2024-01-03", "2024-01-09", 5},
		{"across a month end", "2024-01-29", "2024-02-02", 5},
		{"leap day week", "2024-02-26", "2024-03-01", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := leave.WorkingDays(day(t, tt.start), day(t, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkingDays_EndBeforeStart(t *testing.T) {
	_, err := leave.WorkingDays(day(t, "2024-01-05"), day(t, "2024-01-01"))
	assert.ErrorIs(t, err, leave.ErrInvalidRange)
}

func TestWorkingDays_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 15, 0, 0, time.UTC)

	got, err := leave.WorkingDays(start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestWorkingDays_MatchesDayByDayCount(t *testing.T) {
	start := day(t, "2024-01-01")
	for span := 0; span < 60; span++ {
		end := start.AddDate(0, 0, span)

		want := 0
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
				want++
			}
		}

		got, err := leave.WorkingDays(start, end)
		require.NoError(t, err)
		assert.Equal(t, want, got, "span %d", span)
	}
}

func TestWorkingDays_CenturiesLongRange(t *testing.T) {
	tests := []struct{ start, end string }{
		{"1900-01-01", "2300-01-01"},
		{"0001-01-01", "9999-12-31"},
	}
	for _, tt := range tests {
		start, end := day(t, tt.start), day(t, tt.end)

		want := 0
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
				want++
			}
		}

		got, err := leave.WorkingDays(start, end)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%s..%s", tt.start, tt.end)
	}
}

func TestParseDate(t *testing.T) {
	d, err := leave.ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2024-13-01", "01/02/2024", "2023-02-29"} {
		_, err := leave.ParseDate(bad)
		assert.ErrorIs(t, err, leave.ErrValidation, bad)
	}
}
