// Package practitioners holds per-practitioner configuration consumed by
// the booking subsystem, most importantly the weekly working hours.
package practitioners

import (
	"fmt"
	"time"
)

// DayHours is an enabled interval for a single weekday, wall-clock,
// 24-hour "15:04" format. Nil means the practitioner does not consult
// that day.
type DayHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeeklyHours maps weekdays to their consulting interval.
type WeeklyHours struct {
	Monday    *DayHours `json:"monday,omitempty"`
	Tuesday   *DayHours `json:"tuesday,omitempty"`
	Wednesday *DayHours `json:"wednesday,omitempty"`
	Thursday  *DayHours `json:"thursday,omitempty"`
	Friday    *DayHours `json:"friday,omitempty"`
	Saturday  *DayHours `json:"saturday,omitempty"`
	Sunday    *DayHours `json:"sunday,omitempty"`
}

// Day returns the hours for the given weekday, nil when disabled.
func (w *WeeklyHours) Day(d time.Weekday) *DayHours {
	if w == nil {
		return nil
	}
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

// Contains reports whether the wall-clock time of t falls inside the
// day's interval, inclusive of both bounds.
func (d *DayHours) Contains(t time.Time) (bool, error) {
	if d == nil {
		return false, nil
	}
	start, err := parseWallClock(d.Start)
	if err != nil {
		return false, fmt.Errorf("practitioners: bad start time %q: %w", d.Start, err)
	}
	end, err := parseWallClock(d.End)
	if err != nil {
		return false, fmt.Errorf("practitioners: bad end time %q: %w", d.End, err)
	}
	minute := t.Hour()*60 + t.Minute()
	return minute >= start && minute <= end, nil
}

func parseWallClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Profile is the practitioner record this subsystem cares about. The
// wider profile (name, credentials, billing) lives elsewhere.
type Profile struct {
	PractitionerID string       `json:"practitioner_id"`
	DisplayName    string       `json:"display_name,omitempty"`
	Specialization string       `json:"specialization,omitempty"`
	Email          string       `json:"email,omitempty"`
	WorkingHours   *WeeklyHours `json:"working_hours,omitempty"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
