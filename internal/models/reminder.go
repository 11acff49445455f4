package models

import "time"

type RecurrenceKind int

const (
	Once RecurrenceKind = iota
	Daily
	Weekly
)

func (k RecurrenceKind) String() string {
	switch k {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	default:
		return "once"
	}
}

// Recurrence is a tagged variant: exactly one of the three kinds is
// active, and Weekday is meaningful only for Weekly.
type Recurrence struct {
	Kind    RecurrenceKind
	Weekday time.Weekday
}

type Reminder struct {
	// OwnerID is the chat the reminder belongs to. Reminders of
	// different owners are fully independent namespaces.
	OwnerID int64

	// LocalID is the user-facing handle, dense 1..N within an owner.
	// Deletion renumbers the survivors synchronously.
	LocalID int

	Text         string
	RemindAt     time.Time
	CreationDate time.Time // date only, lower bound for recurrence occurrence

	Recurrence Recurrence

	// Completed and CompletionDate track the current occurrence cycle.
	// Advancing a recurring reminder resets both.
	Completed      bool
	CompletionDate *time.Time

	// Triggered marks a once reminder that has fired. Recurring
	// reminders never set it; their state lives in RemindAt.
	Triggered bool
}

// StatRecord is a per-owner per-day firing counter, upserted by the
// scheduler once per delivered reminder.
type StatRecord struct {
	OwnerID   int64
	Day       time.Time
	Total     int
	Completed int
}
