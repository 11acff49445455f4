package recurrence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ansemenov/remindbot/internal/models"
	"github.com/ansemenov/remindbot/internal/recurrence"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestOccursOnOnce(t *testing.T) {
	r := onceReminder(time.Date(2024, time.December, 20, 14, 30, 0, 0, time.Local))

	assert.True(t, recurrence.OccursOn(r, date(2024, time.December, 20)))
	assert.False(t, recurrence.OccursOn(r, date(2024, time.December, 19)))
	assert.False(t, recurrence.OccursOn(r, date(2024, time.December, 21)))
}

func TestOccursOnDaily(t *testing.T) {
	r := models.Reminder{
		CreationDate: date(2024, time.December, 10),
		Recurrence:   models.Recurrence{Kind: models.Daily},
	}

	assert.False(t, recurrence.OccursOn(r, date(2024, time.December, 9)), "before creation")
	assert.True(t, recurrence.OccursOn(r, date(2024, time.December, 10)), "creation day itself")
	assert.True(t, recurrence.OccursOn(r, date(2025, time.June, 1)))
}

func TestOccursOnWeekly(t *testing.T) {
	// 2024-12-10 is a Tuesday.
	r := models.Reminder{
		CreationDate: date(2024, time.December, 10),
		Recurrence:   models.Recurrence{Kind: models.Weekly, Weekday: time.Wednesday},
	}

	assert.True(t, recurrence.OccursOn(r, date(2024, time.December, 11)), "first Wednesday")
	assert.False(t, recurrence.OccursOn(r, date(2024, time.December, 12)), "a Thursday")
	assert.False(t, recurrence.OccursOn(r, date(2024, time.December, 4)), "Wednesday before creation")
	assert.True(t, recurrence.OccursOn(r, date(2024, time.December, 18)))
}

func TestCountedCompletedOnceIsGlobal(t *testing.T) {
	r := onceReminder(time.Date(2024, time.December, 20, 14, 30, 0, 0, time.Local))
	r.Completed = true

	assert.True(t, recurrence.CountedCompleted(r, date(2024, time.December, 20)))
}

func TestCountedCompletedRecurringScopedToDay(t *testing.T) {
	d1 := date(2024, time.December, 11)
	d2 := date(2024, time.December, 12)

	r := models.Reminder{
		CreationDate:   date(2024, time.December, 10),
		Recurrence:     models.Recurrence{Kind: models.Daily},
		Completed:      true,
		CompletionDate: &d1,
	}

	assert.True(t, recurrence.CountedCompleted(r, d1))
	assert.False(t, recurrence.CountedCompleted(r, d2), "completion on d1 must not count for d2")
}

func TestCountedCompletedRequiresFlag(t *testing.T) {
	d := date(2024, time.December, 11)
	r := models.Reminder{
		CreationDate:   date(2024, time.December, 10),
		Recurrence:     models.Recurrence{Kind: models.Daily},
		CompletionDate: &d,
	}
	assert.False(t, recurrence.CountedCompleted(r, d))
}

func TestCountedCompletedStaleDateIgnored(t *testing.T) {
	// Flag still set but the stamp is from a prior cycle.
	stale := date(2024, time.December, 5)
	r := models.Reminder{
		CreationDate:   date(2024, time.December, 1),
		Recurrence:     models.Recurrence{Kind: models.Weekly, Weekday: time.Thursday},
		Completed:      true,
		CompletionDate: &stale,
	}
	assert.False(t, recurrence.CountedCompleted(r, date(2024, time.December, 12)))
}
