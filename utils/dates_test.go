package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeekIsMonday(t *testing.T) {
	loc := time.UTC

	// Wednesday 2026-08-19 → Monday 2026-08-17
	wed := time.Date(2026, 8, 19, 14, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 8, 17, 0, 0, 0, 0, loc), StartOfWeek(wed, loc))

	// Sunday belongs to the week started the previous Monday.
	sun := time.Date(2026, 8, 23, 1, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 8, 17, 0, 0, 0, 0, loc), StartOfWeek(sun, loc))

	// Monday maps to itself.
	mon := time.Date(2026, 8, 17, 23, 59, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 8, 17, 0, 0, 0, 0, loc), StartOfWeek(mon, loc))
}

func TestStartOfDayAndMonth(t *testing.T) {
	loc := time.UTC
	at := time.Date(2026, 8, 19, 18, 45, 12, 0, loc)

	assert.Equal(t, time.Date(2026, 8, 19, 0, 0, 0, 0, loc), StartOfDay(at, loc))
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, loc), StartOfMonth(at, loc))
}

func TestISOWeekday(t *testing.T) {
	loc := time.UTC

	assert.Equal(t, 1, ISOWeekday(time.Date(2026, 8, 17, 12, 0, 0, 0, loc), loc)) // Monday
	assert.Equal(t, 3, ISOWeekday(time.Date(2026, 8, 19, 12, 0, 0, 0, loc), loc)) // Wednesday
	assert.Equal(t, 7, ISOWeekday(time.Date(2026, 8, 23, 12, 0, 0, 0, loc), loc)) // Sunday
}

func TestCombineDateTime(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 8, 19, 0, 0, 0, 0, loc)

	at, err := CombineDateTime(day, "15:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 19, 15, 30, 0, 0, loc), at)

	at, err = CombineDateTime(day, "00:05", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 19, 0, 5, 0, 0, loc), at)
}

func TestCombineDateTimeInvalid(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 8, 19, 0, 0, 0, 0, loc)

	for _, bad := range []string{"", "15", "25:00", "12:60", "ab:cd"} {
		_, err := CombineDateTime(day, bad, loc)
		assert.Error(t, err, "time %q should be rejected", bad)
	}
}
