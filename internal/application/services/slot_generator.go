package services

import (
	"time"

	"github.com/oseikb/bookline/internal/domain/entities"
)

const (
	// SlotStep is the fixed slot grid; service duration does not change it.
	SlotStep = 30 * time.Minute

	// slotKeyLayout normalizes instants to minute granularity for booked-set
	// comparisons, discarding seconds and offset artifacts.
	slotKeyLayout = "2006-01-02 15:04"
)

// SlotGenerator computes bookable start times from a provider's weekly
// schedule and the set of already-occupied instants. It holds no state and is
// safe for concurrent use.
type SlotGenerator struct{}

// NewSlotGenerator creates a new slot generator
func NewSlotGenerator() *SlotGenerator {
	return &SlotGenerator{}
}

// Generate walks calendar days from `from` up to but excluding `to` and
// emits every free 30-minute slot start as an RFC 3339 string, in
// chronological order. A slot is free when it starts at or after `now`, and
// its minute-truncated key does not appear in `booked`. Days whose schedule
// entry is absent, malformed, or inverted contribute no slots.
func (g *SlotGenerator) Generate(schedule entities.WeeklySchedule, from, to time.Time, booked []time.Time, now time.Time) []string {
	occupied := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		occupied[t.In(from.Location()).Format(slotKeyLayout)] = struct{}{}
	}

	var slots []string
	for day := from; day.Before(to); day = nextMidnight(day) {
		window := schedule.WindowFor(day)
		start, end, ok := window.Bounds(day)
		if !ok {
			continue
		}

		for slot := start; slot.Before(end); slot = slot.Add(SlotStep) {
			if slot.Before(now) {
				continue
			}
			if _, taken := occupied[slot.Format(slotKeyLayout)]; taken {
				continue
			}
			slots = append(slots, slot.Format(time.RFC3339))
		}
	}

	return slots
}

// CanonicalSlot normalizes an instant to the exact string form Generate
// emits, so requested start times compare by string equality against the
// generated slot list.
func CanonicalSlot(t time.Time, loc *time.Location) string {
	return t.In(loc).Truncate(time.Minute).Format(time.RFC3339)
}

func nextMidnight(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
}
