package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ansemenov/remindbot/internal/models"
	"github.com/ansemenov/remindbot/internal/recurrence"
)

type memoryRow struct {
	models.Reminder
	seq int64
}

type statKey struct {
	owner int64
	day   time.Time
}

// Memory is a map-backed store with the same contract as the Postgres
// repositories. It backs the service and scheduler tests and works as
// a throwaway store when no database is configured.
type Memory struct {
	mu    sync.Mutex
	seq   int64
	rows  map[int64][]*memoryRow
	stats map[statKey]*models.StatRecord
}

func NewMemory() *Memory {
	return &Memory{
		rows:  make(map[int64][]*memoryRow),
		stats: make(map[statKey]*models.StatRecord),
	}
}

func (m *Memory) Create(_ context.Context, rem *models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := 1
	for _, row := range m.rows[rem.OwnerID] {
		if row.LocalID >= next {
			next = row.LocalID + 1
		}
	}
	rem.LocalID = next

	m.seq++
	m.rows[rem.OwnerID] = append(m.rows[rem.OwnerID], &memoryRow{Reminder: *rem, seq: m.seq})
	return nil
}

func (m *Memory) ListByOwner(_ context.Context, owner int64) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := append([]*memoryRow(nil), m.rows[owner]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].LocalID < rows[j].LocalID })

	out := make([]models.Reminder, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Reminder)
	}
	return out, nil
}

// Get returns a copy of one reminder, or false if the id is unknown.
func (m *Memory) Get(owner int64, localID int) (models.Reminder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row := m.find(owner, localID); row != nil {
		return row.Reminder, true
	}
	return models.Reminder{}, false
}

func (m *Memory) Delete(_ context.Context, owner int64, localID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.rows[owner]
	for i, row := range rows {
		if row.LocalID == localID {
			m.rows[owner] = append(rows[:i], rows[i+1:]...)
			m.reindex(owner)
			return true, nil
		}
	}
	return false, nil
}

// reindex mirrors the SQL renumbering: survivors get local ids 1..N
// ordered by creation date, fire time and insertion order.
func (m *Memory) reindex(owner int64) {
	rows := m.rows[owner]
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreationDate.Equal(rows[j].CreationDate) {
			return rows[i].CreationDate.Before(rows[j].CreationDate)
		}
		if !rows[i].RemindAt.Equal(rows[j].RemindAt) {
			return rows[i].RemindAt.Before(rows[j].RemindAt)
		}
		return rows[i].seq < rows[j].seq
	})
	for i, row := range rows {
		row.LocalID = i + 1
	}
}

func (m *Memory) SetCompleted(_ context.Context, owner int64, localID int, completed bool, completionDate *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.find(owner, localID)
	if row == nil {
		return false, nil
	}
	row.Completed = completed
	row.CompletionDate = completionDate
	return true, nil
}

func (m *Memory) ListDue(_ context.Context, now time.Time) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []models.Reminder
	for _, rows := range m.rows {
		for _, row := range rows {
			if recurrence.IsDue(row.Reminder, now) {
				due = append(due, row.Reminder)
			}
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].OwnerID != due[j].OwnerID {
			return due[i].OwnerID < due[j].OwnerID
		}
		return due[i].LocalID < due[j].LocalID
	})
	return due, nil
}

func (m *Memory) Advance(_ context.Context, prev, next models.Reminder) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.find(prev.OwnerID, prev.LocalID)
	if row == nil || !row.RemindAt.Equal(prev.RemindAt) || row.Completed || row.Triggered {
		return false, nil
	}
	row.RemindAt = next.RemindAt
	row.Completed = next.Completed
	row.CompletionDate = next.CompletionDate
	row.Triggered = next.Triggered
	return true, nil
}

func (m *Memory) RecordFiring(_ context.Context, owner int64, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := statKey{owner: owner, day: day}
	rec, ok := m.stats[key]
	if !ok {
		rec = &models.StatRecord{OwnerID: owner, Day: day}
		m.stats[key] = rec
	}
	rec.Total++
	return nil
}

// Stat returns the firing counters for one owner and day.
func (m *Memory) Stat(owner int64, day time.Time) (models.StatRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.stats[statKey{owner: owner, day: day}]
	if !ok {
		return models.StatRecord{}, false
	}
	return *rec, true
}

func (m *Memory) find(owner int64, localID int) *memoryRow {
	for _, row := range m.rows[owner] {
		if row.LocalID == localID {
			return row
		}
	}
	return nil
}
