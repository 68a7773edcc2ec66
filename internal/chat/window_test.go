package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servio/internal/domain"
	"servio/internal/handoff"
)

// memPending is an in-memory handoff.PendingStore.
type memPending struct {
	mu  sync.Mutex
	rec *domain.PendingChat
}

func (m *memPending) PutPendingChat(r domain.PendingChat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = &r
	return nil
}

func (m *memPending) TakePendingChat() (*domain.PendingChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.rec
	m.rec = nil
	return rec, nil
}

func TestWindowStartsOnListView(t *testing.T) {
	b := newBackend()
	svc := newTestService(t, b, fakeIdentity{id: 10})
	w := NewWindow(svc, handoff.NewBus(&memPending{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Mount(ctx)

	assert.Equal(t, StateList, w.State())
	assert.Nil(t, w.Active())
}

func TestHandoffOpensConversationByUserID(t *testing.T) {
	b := newBackend()
	b.customers = []domain.User{{UserID: 10, UserName: "alice"}}
	b.providers = []domain.User{{UserID: 20, UserName: "b", FirstName: "B"}}
	svc := newTestService(t, b, fakeIdentity{id: 10})

	store := &memPending{}
	bus := handoff.NewBus(store)
	w := NewWindow(svc, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Mount(ctx)

	require.NoError(t, bus.Request(domain.PendingChat{Name: "B", UserID: 20}))

	require.Eventually(t, func() bool {
		return w.State() == StateConversation
	}, time.Second, 5*time.Millisecond)

	conv := w.Active()
	require.NotNil(t, conv)
	assert.Equal(t, int64(20), conv.Other().UserID)

	// Record is consumed: nothing left to replay.
	rec, err := store.TakePendingChat()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestHandoffLeftoverConsumedAtMount(t *testing.T) {
	b := newBackend()
	b.providers = []domain.User{{UserID: 20, UserName: "b"}}
	svc := newTestService(t, b, fakeIdentity{id: 10})

	store := &memPending{}
	bus := handoff.NewBus(store)

	// Handoff requested before any window exists, e.g. navigation from
	// the notifications page.
	require.NoError(t, bus.Request(domain.PendingChat{Name: "B", UserID: 20}))

	w := NewWindow(svc, bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Mount(ctx)

	assert.Equal(t, StateConversation, w.State())
	require.NotNil(t, w.Active())
	assert.Equal(t, int64(20), w.Active().Other().UserID)
}

func TestHandoffResolvesTargetThroughMessage(t *testing.T) {
	self := domain.User{UserID: 10}
	sender := domain.User{UserID: 30, UserName: "carol"}

	b := newBackend()
	b.messages = []domain.Message{
		msgBetween("m9", sender, self, "hi", time.Now(), domain.StatusRead),
	}
	svc := newTestService(t, b, fakeIdentity{id: 10})

	store := &memPending{}
	bus := handoff.NewBus(store)
	require.NoError(t, bus.Request(domain.PendingChat{Name: "carol", ReferenceID: "m9"}))

	w := NewWindow(svc, bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Mount(ctx)

	require.Equal(t, StateConversation, w.State())
	assert.Equal(t, int64(30), w.Active().Other().UserID)
}

func TestDuplicateSignalWithoutRecordIsNoOp(t *testing.T) {
	b := newBackend()
	b.providers = []domain.User{{UserID: 20, UserName: "b"}}
	svc := newTestService(t, b, fakeIdentity{id: 10})

	store := &memPending{}
	bus := handoff.NewBus(store)
	require.NoError(t, bus.Request(domain.PendingChat{Name: "B", UserID: 20}))

	w := NewWindow(svc, bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Mount(ctx)
	require.Equal(t, StateConversation, w.State())

	// The window went back to the list; a stray wakeup with no record
	// behind it must not reopen anything.
	w.OpenList()
	w.consumePending(ctx)
	assert.Equal(t, StateList, w.State())
}
