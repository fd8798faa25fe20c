package services_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oseikb/bookline/internal/application/services"
	"github.com/oseikb/bookline/internal/domain/entities"
)

// monday is 2026-03-02, a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func weekdaySchedule(windows map[string]*entities.DayWindow) entities.WeeklySchedule {
	s := entities.WeeklySchedule{}
	for day, w := range windows {
		s[day] = w
	}
	return s
}

func TestSlotGenerator_MorningWindowWithBookedSlot(t *testing.T) {
	// One Monday 09:00-10:00, 09:30 already booked, now at midnight:
	// only 09:00 remains.
	gen := services.NewSlotGenerator()
	schedule := weekdaySchedule(map[string]*entities.DayWindow{
		"mon": {Start: "09:00", End: "10:00"},
	})

	booked := []time.Time{monday.Add(9*time.Hour + 30*time.Minute)}
	slots := gen.Generate(schedule, monday, monday.AddDate(0, 0, 1), booked, monday)

	require.Len(t, slots, 1)
	assert.Equal(t, monday.Add(9*time.Hour).Format(time.RFC3339), slots[0])
}

func TestSlotGenerator_ChronologicalAndDuplicateFree(t *testing.T) {
	gen := services.NewSlotGenerator()
	schedule := weekdaySchedule(map[string]*entities.DayWindow{
		"mon": {Start: "09:00", End: "12:00"},
		"tue": {Start: "08:00", End: "18:30"},
		"wed": {Start: "10:00", End: "11:00"},
	})

	slots := gen.Generate(schedule, monday, monday.AddDate(0, 0, 7), nil, monday)
	require.NotEmpty(t, slots)

	assert.True(t, sort.StringsAreSorted(slots), "slots must be chronological")

	seen := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		_, dup := seen[s]
		require.False(t, dup, "duplicate slot %s", s)
		seen[s] = struct{}{}
	}

	// mon 6 + tue 21 + wed 2
	assert.Len(t, slots, 29)
}

func TestSlotGenerator_NowFiltering(t *testing.T) {
	gen := services.NewSlotGenerator()
	schedule := weekdaySchedule(map[string]*entities.DayWindow{
		"mon": {Start: "09:00", End: "11:00"},
	})

	t.Run("slot starting exactly now is kept", func(t *testing.T) {
		now := monday.Add(10 * time.Hour)
		slots := gen.Generate(schedule, monday, monday.AddDate(0, 0, 1), nil, now)
		require.Len(t, slots, 2)
		assert.Equal(t, now.Format(time.RFC3339), slots[0])
	})

	t.Run("day entirely in the past yields nothing", func(t *testing.T) {
		now := monday.AddDate(0, 0, 2)
		slots := gen.Generate(schedule, monday, monday.AddDate(0, 0, 1), nil, now)
		assert.Empty(t, slots)
	})
}

func TestSlotGenerator_SkipsClosedAndMalformedDays(t *testing.T) {
	gen := services.NewSlotGenerator()

	cases := map[string]entities.WeeklySchedule{
		"absent weekday": weekdaySchedule(map[string]*entities.DayWindow{
			"tue": {Start: "09:00", End: "17:00"},
		}),
		"nil window": weekdaySchedule(map[string]*entities.DayWindow{
			"mon": nil,
		}),
		"start equals end": weekdaySchedule(map[string]*entities.DayWindow{
			"mon": {Start: "09:00", End: "09:00"},
		}),
		"start after end": weekdaySchedule(map[string]*entities.DayWindow{
			"mon": {Start: "17:00", End: "09:00"},
		}),
		"unparseable": weekdaySchedule(map[string]*entities.DayWindow{
			"mon": {Start: "morning", End: "17:00"},
		}),
	}

	for name, schedule := range cases {
		t.Run(name, func(t *testing.T) {
			slots := gen.Generate(schedule, monday, monday.AddDate(0, 0, 1), nil, monday)
			assert.Empty(t, slots)
		})
	}
}

func TestSlotGenerator_BookedComparisonAtMinuteGranularity(t *testing.T) {
	gen := services.NewSlotGenerator()
	schedule := weekdaySchedule(map[string]*entities.DayWindow{
		"mon": {Start: "09:00", End: "10:00"},
	})

	// Seconds and offset artifacts on the booked instant must not defeat
	// the conflict check.
	offset := time.FixedZone("X", 2*3600)
	booked := []time.Time{
		time.Date(2026, 3, 2, 11, 0, 42, 0, offset), // 09:00:42 UTC
	}

	slots := gen.Generate(schedule, monday, monday.AddDate(0, 0, 1), booked, monday)
	require.Len(t, slots, 1)
	assert.Equal(t, monday.Add(9*time.Hour+30*time.Minute).Format(time.RFC3339), slots[0])
}

func TestSlotGenerator_BookedSetKeyedByFullDate(t *testing.T) {
	// A booking at 09:00 next Monday must not block 09:00 this Monday.
	gen := services.NewSlotGenerator()
	schedule := weekdaySchedule(map[string]*entities.DayWindow{
		"mon": {Start: "09:00", End: "09:30"},
	})

	booked := []time.Time{monday.AddDate(0, 0, 7).Add(9 * time.Hour)}
	slots := gen.Generate(schedule, monday, monday.AddDate(0, 0, 1), booked, monday)

	require.Len(t, slots, 1)
	assert.Equal(t, monday.Add(9*time.Hour).Format(time.RFC3339), slots[0])
}

func TestSlotGenerator_MultiWeekRange(t *testing.T) {
	gen := services.NewSlotGenerator()
	schedule := weekdaySchedule(map[string]*entities.DayWindow{
		"fri": {Start: "14:00", End: "15:00"},
	})

	slots := gen.Generate(schedule, monday, monday.AddDate(0, 0, 14), nil, monday)
	// Two Fridays, two slots each.
	assert.Len(t, slots, 4)
}

func TestCanonicalSlot(t *testing.T) {
	// Same instant expressed with a different offset and stray seconds
	// canonicalizes to the emitted form.
	offset := time.FixedZone("X", 2*3600)
	in := time.Date(2026, 3, 2, 11, 0, 59, 0, offset)

	got := services.CanonicalSlot(in, time.UTC)
	assert.Equal(t, "2026-03-02T09:00:00Z", got)
}
