package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"servio/internal/domain"
)

const (
	defaultInterval = 30 * time.Second
	defaultDebounce = 10 * time.Second
)

// Update is one delivery to the badge/dropdown: the grouped feed plus
// the unread count.
type Update struct {
	Notifications []domain.Notification
	Unread        int
}

// Poller refreshes the feed on a fixed cadence. Each tick is an
// independent best-effort attempt: failures are logged and the next tick
// tries again, with no backoff. The debounce guard absorbs redundant
// refreshes when the surface remounts shortly after a fetch.
type Poller struct {
	svc      *Service
	onUpdate func(Update)

	// Overridable before Run; zero values take the defaults.
	Interval time.Duration
	Debounce time.Duration

	mu          sync.Mutex
	lastAttempt time.Time
}

func NewPoller(svc *Service, onUpdate func(Update)) *Poller {
	return &Poller{svc: svc, onUpdate: onUpdate}
}

// Run polls until ctx is done, starting with an immediate forced
// refresh.
func (p *Poller) Run(ctx context.Context) {
	p.Refresh(ctx, true)

	ticker := time.NewTicker(p.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx, false)
		}
	}
}

// Refresh fetches once. Unforced refreshes are skipped when the last
// attempt was within the debounce window. A result that lands after ctx
// is cancelled is discarded, not delivered.
func (p *Poller) Refresh(ctx context.Context, force bool) {
	p.mu.Lock()
	if !force && time.Since(p.lastAttempt) < p.debounce() {
		p.mu.Unlock()
		return
	}
	p.lastAttempt = time.Now()
	p.mu.Unlock()

	items, err := p.svc.Fetch(ctx)
	if err != nil {
		log.Printf("notification: poll failed: %v", err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	p.onUpdate(Update{
		Notifications: Process(items),
		Unread:        ProcessForCount(items),
	})
}

func (p *Poller) interval() time.Duration {
	if p.Interval > 0 {
		return p.Interval
	}
	return defaultInterval
}

func (p *Poller) debounce() time.Duration {
	if p.Debounce > 0 {
		return p.Debounce
	}
	return defaultDebounce
}
