// Package scheduler runs the background poll loop that delivers due
// reminders and moves recurring ones to their next cycle.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ansemenov/remindbot/internal/clock"
	"github.com/ansemenov/remindbot/internal/models"
	"github.com/ansemenov/remindbot/internal/recurrence"
)

// Store is the reminder persistence the loop needs: the due scan and
// the conditional post-firing update.
type Store interface {
	ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error)
	Advance(ctx context.Context, prev, next models.Reminder) (bool, error)
}

// StatStore records firing counters.
type StatStore interface {
	RecordFiring(ctx context.Context, owner int64, day time.Time) error
}

// Notifier delivers reminder text to an owner. Failures are retryable
// on the next poll, never fatal.
type Notifier interface {
	Send(owner int64, text string) error
}

type Scheduler struct {
	store    Store
	stats    StatStore
	notifier Notifier
	clock    clock.Clock
	interval time.Duration
	notifyCh chan struct{}
}

func New(store Store, stats StatStore, notifier Notifier, clk clock.Clock, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		store:    store,
		stats:    stats,
		notifier: notifier,
		clock:    clk,
		interval: interval,
		notifyCh: make(chan struct{}, 1),
	}
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Start runs the poll loop until ctx is cancelled. The batch in
// flight when cancellation arrives is allowed to finish; no new batch
// starts afterwards.
func (s *Scheduler) Start(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("scheduler started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			s.check(ctx)
		}
	}
}

// check runs one poll cycle: re-derive the due set from the store and
// fire each record. Store outages skip the cycle instead of killing
// the loop.
func (s *Scheduler) check(ctx context.Context) {
	now := s.clock.Now()
	due, err := s.store.ListDue(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to scan due reminders")
		return
	}

	for _, r := range due {
		if !recurrence.IsDue(r, now) {
			continue
		}
		s.fire(ctx, r, now)
	}
}

// fire delivers one reminder. On success the recurrence engine's next
// state is persisted and the firing counter bumped; on delivery
// failure the record is left untouched so the next poll retries it.
// One record's failure never blocks the rest of the batch.
func (s *Scheduler) fire(ctx context.Context, r models.Reminder, now time.Time) {
	if err := s.notifier.Send(r.OwnerID, deliveryText(r)); err != nil {
		log.Error().Err(err).Int64("chat", r.OwnerID).Int("id", r.LocalID).Msg("failed to deliver reminder")
		return
	}

	advanced, err := s.store.Advance(ctx, r, recurrence.Advance(r))
	if err != nil {
		log.Error().Err(err).Int64("chat", r.OwnerID).Int("id", r.LocalID).Msg("failed to advance reminder")
		return
	}
	if !advanced {
		// Someone else advanced it between our scan and update.
		log.Debug().Int64("chat", r.OwnerID).Int("id", r.LocalID).Msg("reminder already advanced")
		return
	}

	if err := s.stats.RecordFiring(ctx, r.OwnerID, recurrence.DateOf(now)); err != nil {
		log.Error().Err(err).Int64("chat", r.OwnerID).Msg("failed to record firing")
	}

	log.Info().Int64("chat", r.OwnerID).Int("id", r.LocalID).Stringer("kind", r.Recurrence.Kind).Msg("reminder fired")
}

func deliveryText(r models.Reminder) string {
	return fmt.Sprintf("Reminder: %s\nMark it:\n/complete %d\n/notcomplete %d", r.Text, r.LocalID, r.LocalID)
}
