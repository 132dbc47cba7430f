package models

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(570), c)
	assert.Equal(t, "09:30", c.String())

	c, err = ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, Clock(1440), c)

	for _, bad := range []string{"", "9:30", "25:00", "12:60", "24:30", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestStore_BusinessHours(t *testing.T) {
	store := Store{
		WeeklySchedule: WeeklySchedule{
			"monday": {Open: "10:00", Close: "22:00"},
			"sunday": {Closed: true},
			"friday": {Open: "22:00", Close: "10:00"},
		},
		SpecialDates: []SpecialDate{
			{Date: "2026-10-19", Closed: true, Description: "holiday"},
			{Date: "2026-10-25", Open: "12:00", Close: "16:00"},
			{Date: "2026-10-26", Description: "note only"},
		},
	}

	day := func(s string) time.Time {
		d, err := time.Parse(DateLayout, s)
		require.NoError(t, err)
		return d
	}

	_, _, ok := store.BusinessHours(day("2026-10-19")) // monday, special closed
	assert.False(t, ok)

	open, close, ok := store.BusinessHours(day("2026-10-25")) // sunday with special hours
	require.True(t, ok)
	assert.Equal(t, "12:00", open.String())
	assert.Equal(t, "16:00", close.String())

	open, _, ok = store.BusinessHours(day("2026-10-26")) // monday, override without hours
	require.True(t, ok)
	assert.Equal(t, "10:00", open.String())

	_, _, ok = store.BusinessHours(day("2026-10-23")) // friday, open >= close
	assert.False(t, ok)

	_, _, ok = store.BusinessHours(day("2026-10-20")) // tuesday, missing entry
	assert.False(t, ok)
}

func TestClockOn_DaylightSavingDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks jump from 02:00 to 03:00 on 2026-03-08.
	day := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	got := Clock(10 * 60).On(day, loc)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 0, got.Minute())
	assert.Equal(t, "2026-03-08", got.Format(DateLayout))
}
