package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansemenov/remindbot/internal/models"
	"github.com/ansemenov/remindbot/internal/recurrence"
	"github.com/ansemenov/remindbot/internal/repository"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type sentMessage struct {
	owner int64
	text  string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[int64]bool)}
}

func (n *fakeNotifier) Send(owner int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[owner] {
		return errors.New("transport down")
	}
	n.sent = append(n.sent, sentMessage{owner: owner, text: text})
	return nil
}

func (n *fakeNotifier) sentTo(owner int64) []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentMessage
	for _, m := range n.sent {
		if m.owner == owner {
			out = append(out, m)
		}
	}
	return out
}

// Monday 2024-12-16, 10:00 local.
var testNow = time.Date(2024, time.December, 16, 10, 0, 0, 0, time.Local)

func newFixture(t *testing.T) (*Scheduler, *repository.Memory, *fakeNotifier, *fakeClock) {
	t.Helper()
	store := repository.NewMemory()
	notifier := newFakeNotifier()
	clk := &fakeClock{now: testNow}
	sched := New(store, store, notifier, clk, time.Minute)
	return sched, store, notifier, clk
}

func seed(t *testing.T, store *repository.Memory, owner int64, rec models.Recurrence, remindAt time.Time, text string) models.Reminder {
	t.Helper()
	r := &models.Reminder{
		OwnerID:      owner,
		Text:         text,
		RemindAt:     remindAt,
		CreationDate: recurrence.DateOf(remindAt),
		Recurrence:   rec,
	}
	require.NoError(t, store.Create(context.Background(), r))
	return *r
}

func TestFiresDueOnceReminder(t *testing.T) {
	sched, store, notifier, _ := newFixture(t)
	r := seed(t, store, 1, models.Recurrence{Kind: models.Once}, testNow.Add(-time.Minute), "dentist")

	sched.check(context.Background())

	sent := notifier.sentTo(1)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].text, "dentist")
	assert.Contains(t, sent[0].text, "/complete 1")
	assert.Contains(t, sent[0].text, "/notcomplete 1")

	got, ok := store.Get(1, r.LocalID)
	require.True(t, ok)
	assert.True(t, got.Triggered)
	assert.Equal(t, r.RemindAt, got.RemindAt)

	stat, ok := store.Stat(1, recurrence.DateOf(testNow))
	require.True(t, ok)
	assert.Equal(t, 1, stat.Total)
}

func TestOnceNotRefired(t *testing.T) {
	sched, store, notifier, clk := newFixture(t)
	seed(t, store, 1, models.Recurrence{Kind: models.Once}, testNow.Add(-time.Minute), "dentist")

	sched.check(context.Background())
	clk.now = clk.now.Add(time.Minute)
	sched.check(context.Background())

	assert.Len(t, notifier.sentTo(1), 1)
}

func TestDailyAdvancesOnFire(t *testing.T) {
	sched, store, notifier, _ := newFixture(t)
	done := recurrence.DateOf(testNow)
	r := seed(t, store, 1, models.Recurrence{Kind: models.Daily}, testNow.Add(-time.Minute), "standup")
	// Simulate a leftover completion from the prior cycle being reset.
	_, err := store.SetCompleted(context.Background(), 1, r.LocalID, false, &done)
	require.NoError(t, err)

	sched.check(context.Background())

	require.Len(t, notifier.sentTo(1), 1)
	got, ok := store.Get(1, r.LocalID)
	require.True(t, ok)
	assert.Equal(t, r.RemindAt.AddDate(0, 0, 1), got.RemindAt)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletionDate)
	assert.False(t, got.Triggered)
}

func TestWeeklyAdvancesOneWeek(t *testing.T) {
	sched, store, notifier, _ := newFixture(t)
	r := seed(t, store, 1,
		models.Recurrence{Kind: models.Weekly, Weekday: testNow.Weekday()},
		testNow.Add(-time.Minute), "laundry")

	sched.check(context.Background())

	require.Len(t, notifier.sentTo(1), 1)
	got, ok := store.Get(1, r.LocalID)
	require.True(t, ok)
	assert.Equal(t, r.RemindAt.AddDate(0, 0, 7), got.RemindAt)
}

func TestWeeklyNotFiredOnWrongWeekday(t *testing.T) {
	sched, store, notifier, _ := newFixture(t)
	// testNow is a Monday; a Tuesday reminder with a stale past
	// remind_at must wait.
	seed(t, store, 1,
		models.Recurrence{Kind: models.Weekly, Weekday: time.Tuesday},
		testNow.Add(-48*time.Hour), "stale")

	sched.check(context.Background())

	assert.Empty(t, notifier.sentTo(1))
}

func TestFutureReminderNotFired(t *testing.T) {
	sched, store, notifier, _ := newFixture(t)
	seed(t, store, 1, models.Recurrence{Kind: models.Once}, testNow.Add(time.Hour), "later")

	sched.check(context.Background())

	assert.Empty(t, notifier.sentTo(1))
}

func TestDeliveryFailureRetriedNextPoll(t *testing.T) {
	sched, store, notifier, _ := newFixture(t)
	r := seed(t, store, 1, models.Recurrence{Kind: models.Daily}, testNow.Add(-time.Minute), "standup")
	notifier.failFor[1] = true

	sched.check(context.Background())

	// Failed delivery leaves the record untouched: no advance, no stats.
	got, ok := store.Get(1, r.LocalID)
	require.True(t, ok)
	assert.Equal(t, r.RemindAt, got.RemindAt)
	_, ok = store.Stat(1, recurrence.DateOf(testNow))
	assert.False(t, ok)

	// Transport recovers; next poll delivers and advances.
	notifier.failFor[1] = false
	sched.check(context.Background())

	require.Len(t, notifier.sentTo(1), 1)
	got, ok = store.Get(1, r.LocalID)
	require.True(t, ok)
	assert.Equal(t, r.RemindAt.AddDate(0, 0, 1), got.RemindAt)
}

func TestPartialFailureIsolation(t *testing.T) {
	sched, store, notifier, _ := newFixture(t)
	seed(t, store, 1, models.Recurrence{Kind: models.Once}, testNow.Add(-time.Minute), "broken chat")
	seed(t, store, 2, models.Recurrence{Kind: models.Once}, testNow.Add(-time.Minute), "healthy chat")
	notifier.failFor[1] = true

	sched.check(context.Background())

	assert.Empty(t, notifier.sentTo(1))
	require.Len(t, notifier.sentTo(2), 1, "one owner's failure must not block the batch")
}

func TestStatsCountFiringEvents(t *testing.T) {
	sched, store, notifier, clk := newFixture(t)
	seed(t, store, 1, models.Recurrence{Kind: models.Daily}, testNow.Add(-time.Minute), "a")
	seed(t, store, 1, models.Recurrence{Kind: models.Daily}, testNow.Add(-time.Minute), "b")

	sched.check(context.Background())
	// Second poll the same day: nothing newly due, counter unchanged.
	clk.now = clk.now.Add(time.Minute)
	sched.check(context.Background())

	assert.Len(t, notifier.sentTo(1), 2)
	stat, ok := store.Stat(1, recurrence.DateOf(testNow))
	require.True(t, ok)
	assert.Equal(t, 2, stat.Total)
	assert.Zero(t, stat.Completed, "the firing counter never tracks completions")
}

func TestStartStopsOnCancel(t *testing.T) {
	sched, _, _, _ := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}

func TestNotifyTriggersImmediateCheck(t *testing.T) {
	sched, store, notifier, _ := newFixture(t)
	sched.interval = time.Hour // make sure the ticker can't be the trigger
	seed(t, store, 1, models.Recurrence{Kind: models.Once}, testNow.Add(-time.Minute), "poked")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Start(ctx)

	sched.Notify()
	require.Eventually(t, func() bool {
		return len(notifier.sentTo(1)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
