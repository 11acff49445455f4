// Package service exposes the reminder operations the command layer
// calls: creation per recurrence kind, listing, deletion with
// renumbering, completion toggling and occurrence statistics.
package service

import (
	"context"
	"time"

	"github.com/ansemenov/remindbot/internal/clock"
	"github.com/ansemenov/remindbot/internal/models"
	"github.com/ansemenov/remindbot/internal/recurrence"
)

// Store is the persistence the service needs. Implemented by
// repository.ReminderRepository and repository.Memory.
type Store interface {
	Create(ctx context.Context, r *models.Reminder) error
	ListByOwner(ctx context.Context, owner int64) ([]models.Reminder, error)
	Delete(ctx context.Context, owner int64, localID int) (bool, error)
	SetCompleted(ctx context.Context, owner int64, localID int, completed bool, completionDate *time.Time) (bool, error)
}

type Service struct {
	store Store
	clock clock.Clock
}

func New(store Store, clk clock.Clock) *Service {
	return &Service{store: store, clock: clk}
}

// CreateOnce registers a one-off reminder at the literal instant the
// user gave. Instants before now are rejected.
func (s *Service) CreateOnce(ctx context.Context, owner int64, at time.Time, text string) (*models.Reminder, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	fireAt, ok := recurrence.InitialOnce(now, at)
	if !ok {
		return nil, ErrPastTime
	}

	return s.create(ctx, owner, fireAt, now, text, models.Recurrence{Kind: models.Once})
}

// CreateDaily registers a reminder firing every day at hh:mm,
// starting today or tomorrow depending on whether hh:mm has passed.
func (s *Service) CreateDaily(ctx context.Context, owner int64, hour, min int, text string) (*models.Reminder, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	if err := validateClock(hour, min); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return s.create(ctx, owner, recurrence.InitialDaily(now, hour, min), now, text, models.Recurrence{Kind: models.Daily})
}

// CreateWeekly registers a reminder firing every week on the given
// weekday at hh:mm, starting at the next strictly-future match.
func (s *Service) CreateWeekly(ctx context.Context, owner int64, day time.Weekday, hour, min int, text string) (*models.Reminder, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	if err := validateClock(hour, min); err != nil {
		return nil, err
	}
	if day < time.Sunday || day > time.Saturday {
		return nil, &ValidationError{Field: "weekday", Reason: "must be between 0 and 6"}
	}

	now := s.clock.Now()
	rec := models.Recurrence{Kind: models.Weekly, Weekday: day}
	return s.create(ctx, owner, recurrence.InitialWeekly(now, day, hour, min), now, text, rec)
}

func (s *Service) create(ctx context.Context, owner int64, fireAt, now time.Time, text string, rec models.Recurrence) (*models.Reminder, error) {
	r := &models.Reminder{
		OwnerID:      owner,
		Text:         text,
		RemindAt:     fireAt,
		CreationDate: recurrence.DateOf(now),
		Recurrence:   rec,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// List returns the owner's reminders ordered by local id.
func (s *Service) List(ctx context.Context, owner int64) ([]models.Reminder, error) {
	return s.store.ListByOwner(ctx, owner)
}

// Delete removes a reminder; the store renumbers the survivors as
// part of the same operation.
func (s *Service) Delete(ctx context.Context, owner int64, localID int) error {
	ok, err := s.store.Delete(ctx, owner, localID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SetCompleted marks or unmarks the current cycle as done. Completing
// stamps today's date so recurring completions stay scoped to the
// occurrence day; unmarking erases the stamp.
func (s *Service) SetCompleted(ctx context.Context, owner int64, localID int, completed bool) error {
	var completionDate *time.Time
	if completed {
		d := recurrence.DateOf(s.clock.Now())
		completionDate = &d
	}

	ok, err := s.store.SetCompleted(ctx, owner, localID, completed, completionDate)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Stats summarizes one calendar day. Total == 0 is the "no reminders"
// sentinel; CompletedPct is only meaningful when Total > 0.
type Stats struct {
	Total        int
	CompletedPct float64
}

// StatsFor counts the reminders logically occurring on the given day
// and how many of those count as completed for it.
func (s *Service) StatsFor(ctx context.Context, owner int64, day time.Time) (Stats, error) {
	reminders, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return Stats{}, err
	}

	var total, completed int
	for _, r := range reminders {
		if !recurrence.OccursOn(r, day) {
			continue
		}
		total++
		if recurrence.CountedCompleted(r, day) {
			completed++
		}
	}

	if total == 0 {
		return Stats{}, nil
	}
	return Stats{
		Total:        total,
		CompletedPct: 100 * float64(completed) / float64(total),
	}, nil
}

func validateText(text string) error {
	if text == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return nil
}

func validateClock(hour, min int) error {
	if hour < 0 || hour > 23 {
		return &ValidationError{Field: "hour", Reason: "must be between 0 and 23"}
	}
	if min < 0 || min > 59 {
		return &ValidationError{Field: "minute", Reason: "must be between 0 and 59"}
	}
	return nil
}
