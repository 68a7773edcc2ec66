package chat

import (
	"context"
	"errors"
	"log"
	"sync"

	"servio/internal/domain"
	"servio/internal/handoff"
)

type ViewState string

const (
	StateList         ViewState = "list"
	StateSearch       ViewState = "search"
	StateConversation ViewState = "conversation"
)

// Window is the chat surface controller: it tracks which of the three
// views is showing and reacts to handoff requests asking it to jump
// straight into a conversation with a specific user.
type Window struct {
	svc *Service
	bus *handoff.Bus

	mu       sync.Mutex
	state    ViewState
	active   *Conversation
	handling bool
}

func NewWindow(svc *Service, bus *handoff.Bus) *Window {
	return &Window{svc: svc, bus: bus, state: StateList}
}

// Mount performs the one-time check for a handoff record left behind
// before the window existed, then listens for live handoff signals until
// ctx is done.
func (w *Window) Mount(ctx context.Context) {
	w.consumePending(ctx)

	ch, cancel := w.bus.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				w.consumePending(ctx)
			}
		}
	}()
}

// consumePending takes the pending record, resolves its target user and
// opens the conversation. The handling flag keeps a second signal from
// overlapping a resolution already in flight; the record itself is
// deleted by Take before anything slow happens, so a handoff is never
// replayed.
func (w *Window) consumePending(ctx context.Context) {
	w.mu.Lock()
	if w.handling {
		w.mu.Unlock()
		return
	}
	w.handling = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.handling = false
		w.mu.Unlock()
	}()

	rec, err := w.bus.Take()
	if err != nil {
		log.Printf("chat: failed to read handoff record: %v", err)
		return
	}
	if rec == nil {
		return
	}

	target, err := w.resolveTarget(ctx, *rec)
	if err != nil {
		log.Printf("chat: failed to resolve handoff target: %v", err)
		return
	}
	if err := w.OpenConversation(ctx, target); err != nil {
		log.Printf("chat: failed to open handoff conversation: %v", err)
	}
}

// resolveTarget finds the user the record points at: directly by user id,
// or through the sender of a referenced message.
func (w *Window) resolveTarget(ctx context.Context, rec domain.PendingChat) (domain.User, error) {
	if rec.UserID != 0 {
		for _, u := range w.svc.AllUsers(ctx) {
			if u.UserID == rec.UserID {
				return u, nil
			}
		}
		// Directory may be degraded; the id and name are enough to
		// open the thread.
		return domain.User{UserID: rec.UserID, UserName: rec.Name, FirstName: rec.Name}, nil
	}

	if mid := rec.TargetMessageID(); mid != "" {
		msg, err := w.svc.FindMessage(ctx, mid)
		if err != nil {
			return domain.User{}, err
		}
		self, err := w.svc.CurrentUserID()
		if err != nil {
			return domain.User{}, err
		}
		if msg.Sender.UserID == self {
			return msg.Receiver, nil
		}
		return msg.Sender, nil
	}

	return domain.User{}, errors.New("handoff record has no target")
}

// OpenConversation switches to the conversation view for the given user,
// fetching history and sweeping read receipts.
func (w *Window) OpenConversation(ctx context.Context, other domain.User) error {
	conv, err := w.svc.NewConversation(other)
	if err != nil {
		return err
	}
	conv.Open(ctx)

	w.mu.Lock()
	w.state = StateConversation
	w.active = conv
	w.mu.Unlock()
	return nil
}

func (w *Window) OpenList() {
	w.mu.Lock()
	w.state = StateList
	w.active = nil
	w.mu.Unlock()
}

func (w *Window) OpenSearch() {
	w.mu.Lock()
	w.state = StateSearch
	w.active = nil
	w.mu.Unlock()
}

func (w *Window) State() ViewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Active returns the open conversation, nil outside the conversation view.
func (w *Window) Active() *Conversation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}
