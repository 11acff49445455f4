// Package recurrence holds the pure scheduling logic: deciding when a
// reminder is due, advancing it after a firing, and computing the
// first fire time for each recurrence kind. Nothing here touches the
// store or the transport.
package recurrence

import (
	"time"

	"github.com/ansemenov/remindbot/internal/models"
)

// IsDue reports whether the reminder should fire at now. A reminder
// is due once its scheduled time has arrived, unless the current
// cycle is already completed or (for once reminders) it has fired.
func IsDue(r models.Reminder, now time.Time) bool {
	if r.Completed || r.RemindAt.After(now) {
		return false
	}
	switch r.Recurrence.Kind {
	case models.Once:
		return !r.Triggered
	case models.Weekly:
		// RemindAt normally lands on the right weekday already; the
		// gate keeps a drifted row from firing on the wrong day.
		return now.Weekday() == r.Recurrence.Weekday
	default:
		return true
	}
}

// Advance returns the reminder's state after a firing. Once reminders
// keep their fire time and become triggered; recurring ones move to
// the next cycle and get a fresh completion state. This is the only
// place recurrence state transitions.
func Advance(r models.Reminder) models.Reminder {
	switch r.Recurrence.Kind {
	case models.Daily:
		r.RemindAt = r.RemindAt.AddDate(0, 0, 1)
		r.Completed = false
		r.CompletionDate = nil
	case models.Weekly:
		r.RemindAt = r.RemindAt.AddDate(0, 0, 7)
		r.Completed = false
		r.CompletionDate = nil
	default:
		r.Triggered = true
	}
	return r
}

// InitialOnce validates a one-off fire time. Instants before now are
// rejected; now itself is allowed.
func InitialOnce(now, at time.Time) (time.Time, bool) {
	if at.Before(now) {
		return time.Time{}, false
	}
	return at, true
}

// InitialDaily returns today at hh:mm, or tomorrow if that instant
// has already passed. The result is always within 24h of now.
func InitialDaily(now time.Time, hour, min int) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if t.Before(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// InitialWeekly returns the next instant strictly after now that
// falls on day at hh:mm. A same-weekday submission at a past
// time-of-day rolls to next week, not today.
func InitialWeekly(now time.Time, day time.Weekday, hour, min int) time.Time {
	delta := (int(day) - int(now.Weekday()) + 7) % 7
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location()).AddDate(0, 0, delta)
	if !t.After(now) {
		t = t.AddDate(0, 0, 7)
	}
	return t
}

// DateOf truncates t to midnight of its calendar day.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
