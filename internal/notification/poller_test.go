package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servio/internal/domain"
)

func TestRefreshDebounceSkipsRecentFetch(t *testing.T) {
	b := &backend{notifs: []domain.Notification{
		messageNotif("n1", 1, 5, "bob", "m1", time.Now()),
	}}
	svc := newTestService(t, b, fakeIdentity{id: 1})

	delivered := 0
	p := NewPoller(svc, func(Update) { delivered++ })
	p.Debounce = time.Hour

	ctx := context.Background()
	p.Refresh(ctx, true)
	p.Refresh(ctx, false) // inside the debounce window: skipped
	p.Refresh(ctx, true)  // forced: goes through

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 2, b.fetches)
	assert.Equal(t, 2, delivered)
}

func TestRefreshDeliversGroupedFeedAndCount(t *testing.T) {
	base := time.Now()
	b := &backend{notifs: []domain.Notification{
		messageNotif("bob-old", 1, 5, "bob", "m1", base),
		messageNotif("bob-new", 1, 5, "bob", "m2", base.Add(time.Minute)),
		messageNotif("elsewhere", 2, 5, "bob", "m3", base),
	}}
	svc := newTestService(t, b, fakeIdentity{id: 1})

	var got Update
	p := NewPoller(svc, func(u Update) { got = u })
	p.Refresh(context.Background(), true)

	require.Len(t, got.Notifications, 1)
	assert.Equal(t, "bob-new", got.Notifications[0].NotificationID)
	assert.Equal(t, 1, got.Unread)
}

func TestRefreshSwallowsFetchFailure(t *testing.T) {
	b := &backend{failFetch: true}
	svc := newTestService(t, b, fakeIdentity{id: 1})

	delivered := false
	p := NewPoller(svc, func(Update) { delivered = true })
	p.Refresh(context.Background(), true)

	assert.False(t, delivered, "a failed tick delivers nothing and waits for the next one")
}

func TestRunPollsUntilCancelled(t *testing.T) {
	b := &backend{notifs: []domain.Notification{
		messageNotif("n1", 1, 5, "bob", "m1", time.Now()),
	}}
	svc := newTestService(t, b, fakeIdentity{id: 1})

	var mu sync.Mutex
	updates := 0
	p := NewPoller(svc, func(Update) {
		mu.Lock()
		updates++
		mu.Unlock()
	})
	p.Interval = 10 * time.Millisecond
	p.Debounce = time.Nanosecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return updates >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancellation")
	}
}
