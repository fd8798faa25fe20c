package entities

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Weekday keys used in a WeeklySchedule, matching time.Weekday order.
var weekdayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// WeekdayKey returns the schedule key for a weekday ("mon" .. "sun").
func WeekdayKey(d time.Weekday) string {
	return weekdayKeys[d]
}

// DayWindow is a single day's open/close window, clock values in "15:04"
// form. A valid window has Start strictly before End.
type DayWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Bounds parses the window against the given date. It returns ok=false for a
// missing, malformed, or inverted window; such days contribute no slots.
func (w *DayWindow) Bounds(date time.Time) (start, end time.Time, ok bool) {
	if w == nil {
		return time.Time{}, time.Time{}, false
	}

	start, err := atClock(date, w.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = atClock(date, w.End)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func atClock(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

// WeeklySchedule maps weekday keys ("mon" .. "sun") to an optional working
// window. A nil or absent entry means the provider is closed that day.
// Stored as a JSON column on the provider row.
type WeeklySchedule map[string]*DayWindow

// WindowFor returns the window for the weekday of the given date, or nil.
func (s WeeklySchedule) WindowFor(date time.Time) *DayWindow {
	return s[WeekdayKey(date.Weekday())]
}

// Value implements driver.Valuer for the JSON column.
func (s WeeklySchedule) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for the JSON column.
func (s *WeeklySchedule) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, s)
}

// Provider is a bookable resource with a weekly working-hours schedule. The
// schedule is immutable during a single slot computation; bookings reference
// providers but never own them.
type Provider struct {
	ID           int64          `json:"id" db:"id"`
	Name         string         `json:"name" db:"name"`
	WorkingHours WeeklySchedule `json:"workingHours" db:"working_hours"`
}
