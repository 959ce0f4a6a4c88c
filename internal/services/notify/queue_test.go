package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestEnqueuePreservesOrder(t *testing.T) {
	q := NewQueue(time.Minute)
	defer q.Close()

	q.Enqueue(models.NotificationInfo, "first")
	q.Enqueue(models.NotificationError, "second")
	q.Enqueue(models.NotificationInfo, "first")

	list := q.List()
	require.Len(t, list, 3, "duplicates are not collapsed")
	assert.Equal(t, "first", list[0].Text)
	assert.Equal(t, "second", list[1].Text)
	assert.Equal(t, models.NotificationError, list[1].Kind)
	assert.NotEqual(t, list[0].ID, list[2].ID)
}

func TestNotificationExpires(t *testing.T) {
	q := NewQueue(30 * time.Millisecond)
	defer q.Close()

	rec := &recorder{}
	q.Subscribe(rec.observe)

	q.Enqueue(models.NotificationSuccess, "done")
	assert.Equal(t, 1, q.Len())

	assert.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []EventType{EventAdded, EventExpired}, rec.types())
}

func TestDismissPreventsExpiry(t *testing.T) {
	q := NewQueue(40 * time.Millisecond)
	defer q.Close()

	rec := &recorder{}
	q.Subscribe(rec.observe)

	keep := q.Enqueue(models.NotificationInfo, "keep")
	drop := q.Enqueue(models.NotificationInfo, "drop")

	assert.True(t, q.Dismiss(drop))
	assert.False(t, q.Dismiss(drop), "second dismissal is a no-op")
	assert.False(t, q.Dismiss("does-not-exist"))

	list := q.List()
	require.Len(t, list, 1)
	assert.Equal(t, keep, list[0].ID)

	assert.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)

	// the dismissed entry must never produce an expiry event
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []EventType{EventAdded, EventAdded, EventDismissed, EventExpired}, rec.types())
}

func TestCloseStopsTimers(t *testing.T) {
	q := NewQueue(20 * time.Millisecond)

	rec := &recorder{}
	q.Subscribe(rec.observe)
	q.Enqueue(models.NotificationInfo, "a")
	q.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, q.List())
	assert.Equal(t, []EventType{EventAdded}, rec.types())

	q.Enqueue(models.NotificationInfo, "after close")
	assert.Empty(t, q.List())
}
