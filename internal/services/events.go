package services

import (
	"sync"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

// Event is a lifecycle notification published to external observers (the
// reader UI, logging). Delivery is best-effort and unacknowledged.
type Event interface {
	isEvent()
}

// SyncStarted marks the beginning of a remote fetch for an account.
type SyncStarted struct {
	Account models.AccountID
}

// SyncFinished marks the end of a remote fetch, successful or not.
type SyncFinished struct {
	Account models.AccountID
}

// BookmarkSaved reports that a bookmark landed in local storage.
type BookmarkSaved struct {
	Account  models.AccountID
	Bookmark models.Bookmark
}

func (SyncStarted) isEvent()   {}
func (SyncFinished) isEvent()  {}
func (BookmarkSaved) isEvent() {}

const subscriberBuffer = 64

// broadcaster fans events out to subscribers. A slow subscriber loses
// events rather than stalling the sync worker.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: map[int]chan Event{}}
}

// Subscribe returns a receive channel and its cancel function. Cancel is
// idempotent and closes the channel.
func (b *broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (b *broadcaster) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Subscriber is not keeping up; drop.
		}
	}
}

func (b *broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
