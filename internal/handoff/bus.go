// Package handoff carries "open chat with this user" requests from any
// producer (a notification click, a booking contact button) to the chat
// window. The record itself is persisted through the session store and
// consumed exactly once; the bus only signals subscribers that a record
// is waiting. A signal that arrives while no window is mounted is not
// lost: the window checks for a leftover record at mount time.
package handoff

import (
	"sync"

	"servio/internal/domain"
)

// PendingStore is the persistence half of the handoff. In production it
// is *session.Store.
type PendingStore interface {
	PutPendingChat(domain.PendingChat) error
	TakePendingChat() (*domain.PendingChat, error)
}

type Bus struct {
	store PendingStore

	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func NewBus(store PendingStore) *Bus {
	return &Bus{
		store: store,
		subs:  make(map[int]chan struct{}),
	}
}

// Request persists the record and wakes every subscriber. Persisting
// first means a subscriber woken by an earlier request that grabs the
// newer record is fine: records replace each other, they do not queue.
func (b *Bus) Request(rec domain.PendingChat) error {
	if err := b.store.PutPendingChat(rec); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
			// Subscriber already has a wakeup pending.
		}
	}
	return nil
}

// Subscribe returns a wakeup channel and a cancel func. The channel has a
// one-slot buffer: coalesced wakeups are enough because the record is
// fetched separately via Take.
func (b *Bus) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Take consumes the pending record, if any.
func (b *Bus) Take() (*domain.PendingChat, error) {
	return b.store.TakePendingChat()
}
