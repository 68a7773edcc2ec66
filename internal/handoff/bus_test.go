package handoff

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servio/internal/domain"
)

type memStore struct {
	mu  sync.Mutex
	rec *domain.PendingChat
}

func (m *memStore) PutPendingChat(r domain.PendingChat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = &r
	return nil
}

func (m *memStore) TakePendingChat() (*domain.PendingChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.rec
	m.rec = nil
	return rec, nil
}

func TestRequestPersistsAndWakesSubscriber(t *testing.T) {
	bus := NewBus(&memStore{})
	ch, cancel := bus.Subscribe()
	defer cancel()

	require.NoError(t, bus.Request(domain.PendingChat{Name: "B", UserID: 20}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("subscriber was not woken")
	}

	rec, err := bus.Take()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(20), rec.UserID)

	rec, err = bus.Take()
	require.NoError(t, err)
	assert.Nil(t, rec, "a handoff is consumed exactly once")
}

func TestRequestsCoalesceToLatestRecord(t *testing.T) {
	bus := NewBus(&memStore{})
	ch, cancel := bus.Subscribe()
	defer cancel()

	require.NoError(t, bus.Request(domain.PendingChat{Name: "first", UserID: 1}))
	require.NoError(t, bus.Request(domain.PendingChat{Name: "second", UserID: 2}))

	<-ch
	rec, err := bus.Take()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(2), rec.UserID, "records replace each other, they do not queue")
}

func TestCancelledSubscriberGetsNoWakeups(t *testing.T) {
	bus := NewBus(&memStore{})
	ch, cancel := bus.Subscribe()
	cancel()

	require.NoError(t, bus.Request(domain.PendingChat{UserID: 3}))

	select {
	case <-ch:
		t.Fatal("cancelled subscriber was woken")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRequestWithNoSubscribersStillPersists(t *testing.T) {
	store := &memStore{}
	bus := NewBus(store)

	require.NoError(t, bus.Request(domain.PendingChat{UserID: 7}))

	rec, err := bus.Take()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(7), rec.UserID)
}
