package groups

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())

	loc, err = LoadLocation("Mars/Olympus_Mons")
	assert.Error(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestInSummarySlot(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2024-01-07 is a Sunday; Berlin is UTC+1 in January
	sundayMorningUTC := time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC)

	assert.True(t, InSummarySlot(time.UTC, sundayMorningUTC, DefaultSummarySlot))
	assert.True(t, InSummarySlot(time.UTC, sundayMorningUTC.Add(59*time.Minute), DefaultSummarySlot))
	assert.False(t, InSummarySlot(time.UTC, sundayMorningUTC.Add(time.Hour), DefaultSummarySlot))
	assert.False(t, InSummarySlot(berlin, sundayMorningUTC, DefaultSummarySlot))
	assert.True(t, InSummarySlot(berlin, sundayMorningUTC.Add(-time.Hour), DefaultSummarySlot))
	assert.False(t, InSummarySlot(time.UTC, sundayMorningUTC.AddDate(0, 0, 1), DefaultSummarySlot))
}

func TestSummaryWindowEndIsIdempotentWithinDay(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	first := time.Date(2024, 1, 6, 23, 5, 0, 0, time.UTC) // Sunday 08:05 in Tokyo
	second := first.Add(40 * time.Minute)

	end := SummaryWindowEnd(tokyo, first)
	assert.Equal(t, end, SummaryWindowEnd(tokyo, second))
	assert.True(t, end.Equal(time.Date(2024, 1, 7, 0, 0, 0, 0, tokyo)))
	assert.True(t, end.Equal(time.Date(2024, 1, 6, 15, 0, 0, 0, time.UTC)))
}

func TestSummaryWindow(t *testing.T) {
	now := time.Date(2024, 1, 7, 8, 30, 0, 0, time.UTC)
	midnight := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	from, to := SummaryWindow(time.UTC, now, nil)
	assert.True(t, from.Equal(time.Unix(0, 0)))
	assert.Equal(t, midnight, to)

	cursor := midnight.AddDate(0, 0, -7)
	from, to = SummaryWindow(time.UTC, now, &cursor)
	assert.Equal(t, cursor, from)
	assert.Equal(t, midnight, to)
}
