package recurrence

import (
	"time"

	"github.com/ansemenov/remindbot/internal/models"
)

// OccursOn reports whether the reminder is logically scheduled on the
// given calendar day, independent of whether it has actually fired.
// Used for statistics only.
func OccursOn(r models.Reminder, day time.Time) bool {
	day = DateOf(day)
	switch r.Recurrence.Kind {
	case models.Once:
		return DateOf(r.RemindAt).Equal(day)
	case models.Daily:
		return !DateOf(r.CreationDate).After(day)
	case models.Weekly:
		return !DateOf(r.CreationDate).After(day) && day.Weekday() == r.Recurrence.Weekday
	}
	return false
}

// CountedCompleted reports whether the reminder counts as completed
// for the given day. A once reminder's completion flag is global; a
// recurring one only counts if the completion was stamped on that
// very day, so stale flags from a prior cycle never leak.
func CountedCompleted(r models.Reminder, day time.Time) bool {
	if !r.Completed {
		return false
	}
	if r.Recurrence.Kind == models.Once {
		return true
	}
	return r.CompletionDate != nil && DateOf(*r.CompletionDate).Equal(DateOf(day))
}
