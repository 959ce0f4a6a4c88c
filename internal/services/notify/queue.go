package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

// DefaultTTL is how long a notification stays visible unless dismissed
const DefaultTTL = 5000 * time.Millisecond

type EventType string

const (
	EventAdded     EventType = "added"
	EventDismissed EventType = "dismissed"
	EventExpired   EventType = "expired"
)

// Event is delivered to observers whenever the visible set changes
type Event struct {
	Type         EventType           `json:"type"`
	Notification models.Notification `json:"notification"`
}

// Observer must not block; it is called outside the queue lock
type Observer func(Event)

type entry struct {
	notification models.Notification
	timer        *time.Timer
}

// Queue holds the visible notifications in insertion order. Each entry
// expires on its own timer.
type Queue struct {
	mu        sync.Mutex
	entries   []*entry
	ttl       time.Duration
	observers []Observer
	closed    bool

	now   func() time.Time
	newID func() string
}

func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		ttl:   ttl,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Subscribe registers an observer for add/dismiss/expire events
func (q *Queue) Subscribe(o Observer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.observers = append(q.observers, o)
}

// Enqueue appends a notification and arms its expiry timer. Returns the new ID.
func (q *Queue) Enqueue(kind models.NotificationKind, text string) string {
	n := models.Notification{
		ID:        q.newID(),
		Kind:      kind,
		Text:      text,
		CreatedAt: q.now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		log.Debug().Str("kind", string(kind)).Msg("Dropping notification on closed queue")
		return n.ID
	}
	e := &entry{notification: n}
	e.timer = time.AfterFunc(q.ttl, func() { q.expire(n.ID) })
	q.entries = append(q.entries, e)
	observers := q.snapshotObservers()
	q.mu.Unlock()

	notifyAll(observers, Event{Type: EventAdded, Notification: n})
	return n.ID
}

// Dismiss removes the notification and stops its timer. Unknown IDs are a no-op.
func (q *Queue) Dismiss(id string) bool {
	n, ok := q.remove(id)
	if !ok {
		return false
	}
	q.mu.Lock()
	observers := q.snapshotObservers()
	q.mu.Unlock()

	notifyAll(observers, Event{Type: EventDismissed, Notification: n})
	return true
}

// List returns the visible notifications, oldest first
func (q *Queue) List() []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.Notification, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e.notification)
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Close stops every pending timer and drops all entries
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		e.timer.Stop()
	}
	q.entries = nil
	q.observers = nil
	q.closed = true
}

func (q *Queue) expire(id string) {
	n, ok := q.remove(id)
	if !ok {
		return
	}
	q.mu.Lock()
	observers := q.snapshotObservers()
	q.mu.Unlock()

	notifyAll(observers, Event{Type: EventExpired, Notification: n})
}

func (q *Queue) remove(id string) (models.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.notification.ID == id {
			e.timer.Stop()
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return e.notification, true
		}
	}
	return models.Notification{}, false
}

// snapshotObservers must be called with mu held
func (q *Queue) snapshotObservers() []Observer {
	if len(q.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(q.observers))
	copy(out, q.observers)
	return out
}

func notifyAll(observers []Observer, ev Event) {
	for _, o := range observers {
		o(ev)
	}
}
