// Package availability decides whether a candidate consultation slot can
// be booked without colliding with a practitioner's existing commitments.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/internal/practitioners"
)

// ActiveLister supplies the practitioner's active appointments.
type ActiveLister interface {
	List(ctx context.Context, f appointments.Filter) ([]appointments.Appointment, error)
}

// ScheduleSource supplies the practitioner's published working hours.
// A nil schedule means no restriction.
type ScheduleSource interface {
	WorkingHours(ctx context.Context, practitionerID string) (*practitioners.WeeklyHours, error)
}

// Checker answers slot availability questions. It has no side effects.
type Checker struct {
	appts     ActiveLister
	schedules ScheduleSource
	window    time.Duration
}

// NewChecker builds a checker with the given conflict window. A zero
// window falls back to the default 30 minutes.
func NewChecker(appts ActiveLister, schedules ScheduleSource, window time.Duration) *Checker {
	if appts == nil {
		panic("availability: appointment lister required")
	}
	if window <= 0 {
		window = appointments.DefaultConflictWindow
	}
	return &Checker{appts: appts, schedules: schedules, window: window}
}

// IsAvailable reports whether the candidate time can be booked.
// A candidate conflicts when any active appointment lies strictly closer
// than the window; a gap of exactly the window is free. When working
// hours are published the candidate must also fall on an enabled weekday
// inside the day's interval, bounds inclusive.
func (c *Checker) IsAvailable(ctx context.Context, practitionerID string, candidate time.Time) (bool, error) {
	if practitionerID == "" {
		return false, fmt.Errorf("availability: practitioner id required")
	}

	active, err := c.appts.List(ctx, appointments.Filter{
		PractitionerID: practitionerID,
		Statuses:       appointments.ActiveStatuses,
	})
	if err != nil {
		return false, fmt.Errorf("availability: list active appointments: %w", err)
	}
	for i := range active {
		diff := candidate.Sub(active[i].ScheduledAt)
		if diff < 0 {
			diff = -diff
		}
		if diff < c.window {
			return false, nil
		}
	}

	if c.schedules == nil {
		return true, nil
	}
	hours, err := c.schedules.WorkingHours(ctx, practitionerID)
	if err != nil {
		return false, fmt.Errorf("availability: load working hours: %w", err)
	}
	if hours == nil {
		return true, nil
	}
	day := hours.Day(candidate.Weekday())
	if day == nil {
		return false, nil
	}
	ok, err := day.Contains(candidate)
	if err != nil {
		return false, fmt.Errorf("availability: %w", err)
	}
	return ok, nil
}

// Window returns the configured conflict window.
func (c *Checker) Window() time.Duration { return c.window }
