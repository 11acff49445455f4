package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ansemenov/remindbot/internal/database"
	"github.com/ansemenov/remindbot/internal/models"
)

const reminderColumns = "chat_id, local_id, text, remind_at, creation_date, daily, weekday, completed, completion_date, triggered"

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create inserts the reminder and assigns the next dense local id for
// its owner. The max-id read and the insert run in one transaction
// under a per-owner advisory lock, so an insert racing a delete's
// reindex can never pick up a stale id.
func (r *ReminderRepository) Create(ctx context.Context, rem *models.Reminder) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", rem.OwnerID); err != nil {
		return fmt.Errorf("failed to lock owner %d: %w", rem.OwnerID, err)
	}

	daily, weekday := encodeRecurrence(rem.Recurrence)
	err = tx.QueryRow(ctx,
		`INSERT INTO reminders (chat_id, local_id, text, remind_at, creation_date, daily, weekday)
		 SELECT $1, COALESCE(MAX(local_id), 0) + 1, $2, $3, $4, $5, $6
		 FROM reminders WHERE chat_id = $1
		 RETURNING local_id`,
		rem.OwnerID, rem.Text, rem.RemindAt, rem.CreationDate, daily, weekday,
	).Scan(&rem.LocalID)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ReminderRepository) ListByOwner(ctx context.Context, owner int64) ([]models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE chat_id = $1 ORDER BY local_id",
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

// Delete removes the reminder and renumbers the owner's survivors so
// local ids stay dense. Both happen in one transaction under the same
// advisory lock Create takes. Returns false when the id is unknown.
func (r *ReminderRepository) Delete(ctx context.Context, owner int64, localID int) (bool, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", owner); err != nil {
		return false, fmt.Errorf("failed to lock owner %d: %w", owner, err)
	}

	tag, err := tx.Exec(ctx,
		"DELETE FROM reminders WHERE chat_id = $1 AND local_id = $2",
		owner, localID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := reindex(ctx, tx, owner); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// reindex reassigns local_id = 1..N ordered by creation date, fire
// time and insertion order. Ids are negated first so the renumbering
// never trips the primary key mid-statement.
func reindex(ctx context.Context, tx pgx.Tx, owner int64) error {
	if _, err := tx.Exec(ctx,
		"UPDATE reminders SET local_id = -local_id WHERE chat_id = $1",
		owner,
	); err != nil {
		return fmt.Errorf("failed to stage reindex: %w", err)
	}

	_, err := tx.Exec(ctx,
		`UPDATE reminders r SET local_id = o.rn
		 FROM (
			SELECT seq, ROW_NUMBER() OVER (ORDER BY creation_date, remind_at, seq) AS rn
			FROM reminders WHERE chat_id = $1
		 ) o
		 WHERE r.chat_id = $1 AND r.seq = o.seq`,
		owner,
	)
	if err != nil {
		return fmt.Errorf("failed to reindex reminders: %w", err)
	}
	return nil
}

// SetCompleted flips the completion flag for the current cycle.
// Returns false when the id is unknown.
func (r *ReminderRepository) SetCompleted(ctx context.Context, owner int64, localID int, completed bool, completionDate *time.Time) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		"UPDATE reminders SET completed = $3, completion_date = $4 WHERE chat_id = $1 AND local_id = $2",
		owner, localID, completed, completionDate,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListDue returns the reminders whose fire time has arrived, across
// all owners. Weekly reminders are additionally gated on the current
// weekday, mirroring the engine's due check.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT "+reminderColumns+` FROM reminders
		 WHERE remind_at <= $1 AND NOT completed AND NOT triggered
		   AND (weekday IS NULL OR weekday = $2)
		 ORDER BY chat_id, local_id`,
		now, int16(now.Weekday()),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

// Advance persists the post-firing state computed by the recurrence
// engine, but only if the row still looks due exactly as observed. A
// concurrent advance makes this a no-op instead of a double shift.
func (r *ReminderRepository) Advance(ctx context.Context, prev, next models.Reminder) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders
		 SET remind_at = $3, completed = $4, completion_date = $5, triggered = $6
		 WHERE chat_id = $1 AND local_id = $2
		   AND remind_at = $7 AND NOT completed AND NOT triggered`,
		prev.OwnerID, prev.LocalID,
		next.RemindAt, next.Completed, next.CompletionDate, next.Triggered,
		prev.RemindAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func encodeRecurrence(rec models.Recurrence) (daily bool, weekday *int16) {
	switch rec.Kind {
	case models.Daily:
		daily = true
	case models.Weekly:
		wd := int16(rec.Weekday)
		weekday = &wd
	}
	return daily, weekday
}

func decodeRecurrence(daily bool, weekday *int16) models.Recurrence {
	switch {
	case daily:
		return models.Recurrence{Kind: models.Daily}
	case weekday != nil:
		return models.Recurrence{Kind: models.Weekly, Weekday: time.Weekday(*weekday)}
	default:
		return models.Recurrence{Kind: models.Once}
	}
}

func scanReminders(rows pgx.Rows) ([]models.Reminder, error) {
	var reminders []models.Reminder
	for rows.Next() {
		var (
			rem     models.Reminder
			daily   bool
			weekday *int16
		)
		if err := rows.Scan(&rem.OwnerID, &rem.LocalID, &rem.Text, &rem.RemindAt, &rem.CreationDate,
			&daily, &weekday, &rem.Completed, &rem.CompletionDate, &rem.Triggered); err != nil {
			return nil, err
		}
		rem.Recurrence = decodeRecurrence(daily, weekday)
		rem.RemindAt = localWallClock(rem.RemindAt)
		rem.CreationDate = localWallClock(rem.CreationDate)
		if rem.CompletionDate != nil {
			d := localWallClock(*rem.CompletionDate)
			rem.CompletionDate = &d
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// localWallClock rebuilds a scanned time in the local zone. pgx hands
// back timestamp and date columns as UTC-flagged wall clock; the rest
// of the system compares instants in time.Local, so a raw scanned
// value would skew every comparison by the zone offset.
func localWallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}
