package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunStrictlyFuture(t *testing.T) {
	spec := Spec{FrequencyHours: 3, FirstRunHour: 6, FirstRunMinute: 30, Location: time.UTC}

	cases := []time.Time{
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),   // before anchor
		time.Date(2026, 9, 1, 6, 30, 0, 0, time.UTC),  // exactly on anchor
		time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC), // after last slot of the day
	}
	for _, now := range cases {
		next := NextRun(spec, now)
		assert.True(t, next.After(now), "now=%s next=%s", now, next)
		assert.Equal(t, 30, next.Minute())
	}
}

func TestNextRunBeforeAnchorIsToday(t *testing.T) {
	spec := Spec{FrequencyHours: 1, FirstRunHour: 8, FirstRunMinute: 15, Location: time.UTC}
	now := time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC)

	next := NextRun(spec, now)
	assert.Equal(t, time.Date(2026, 9, 1, 8, 15, 0, 0, time.UTC), next)
}

func TestNextRunAdvancesOnGrid(t *testing.T) {
	spec := Spec{FrequencyHours: 6, FirstRunHour: 2, FirstRunMinute: 0, Location: time.UTC}
	now := time.Date(2026, 9, 1, 9, 41, 12, 0, time.UTC)

	// Grid for the day: 02:00, 08:00, 14:00, 20:00.
	next := NextRun(spec, now)
	assert.Equal(t, time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC), next)
}

// Re-feeding each result as "now" must step exactly one interval at a time:
// the anchor recomputation cannot accumulate drift.
func TestNextRunNoDrift(t *testing.T) {
	spec := Spec{FrequencyHours: 2, FirstRunHour: 7, FirstRunMinute: 45, Location: time.UTC}

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	prev := NextRun(spec, now)
	for i := 0; i < 50; i++ {
		next := NextRun(spec, prev)
		assert.Equal(t, spec.Interval(), next.Sub(prev))
		assert.Equal(t, 45, next.Minute())
		prev = next
	}
}

func TestNextRunHonorsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	spec := Spec{FrequencyHours: 24, FirstRunHour: 9, FirstRunMinute: 0, Location: loc}
	// 13:00 UTC on 2026-09-01 is 09:00 in New York (EDT); the local anchor
	// has just passed, so the next run is tomorrow local time.
	now := time.Date(2026, 9, 1, 13, 0, 1, 0, time.UTC)

	next := NextRun(spec, now)
	local := next.In(loc)
	assert.Equal(t, 9, local.Hour())
	assert.Equal(t, 0, local.Minute())
	assert.Equal(t, 2, local.Day())
}

func TestNextRunNilLocationDefaultsUTC(t *testing.T) {
	spec := Spec{FrequencyHours: 1, FirstRunHour: 0, FirstRunMinute: 0}
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	next := NextRun(spec, now)
	assert.Equal(t, time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC), next.UTC())
}

func TestSpecValidate(t *testing.T) {
	ok := Spec{FrequencyHours: 6, FirstRunHour: 23, FirstRunMinute: 59}
	assert.NoError(t, ok.Validate())

	assert.Error(t, Spec{FrequencyHours: 5}.Validate())
	assert.Error(t, Spec{FrequencyHours: 1, FirstRunHour: 24}.Validate())
	assert.Error(t, Spec{FrequencyHours: 1, FirstRunMinute: 60}.Validate())
	assert.Error(t, Spec{FrequencyHours: 1, FirstRunHour: -1}.Validate())
}
