package chat

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"servio/internal/domain"
)

// ErrNotRetryable is returned by Resend for ids that do not point at a
// message stuck in the ERROR state.
var ErrNotRetryable = errors.New("message is not in an error state")

// Conversation holds the visible message sequence of one open two-party
// thread and drives the per-message send state machine:
//
//	SENDING -> DELIVERED | READ   (server echo replaces the temp entry)
//	SENDING -> ERROR              (send failed, entry kept for resend)
//	ERROR   -> SENDING            (explicit resend under a fresh temp id)
//
// Display order is insertion order; entries are never re-sorted after an
// optimistic insert.
type Conversation struct {
	svc   *Service
	self  int64
	other domain.User

	mu      sync.Mutex
	entries []domain.Message
	sendErr string
}

// NewConversation prepares a thread with the given user. Fails only when
// nobody is signed in.
func (s *Service) NewConversation(other domain.User) (*Conversation, error) {
	self, err := s.identity.CurrentUserID()
	if err != nil {
		return nil, err
	}
	return &Conversation{svc: s, self: self, other: other}, nil
}

func (c *Conversation) Other() domain.User { return c.other }

// Open fetches the full history and then sweeps read receipts: every
// message authored by the other party that is not yet READ gets a
// best-effort mark-read call, one by one. A failing id is logged and does
// not block the rest of the sweep.
func (c *Conversation) Open(ctx context.Context) {
	history, err := c.svc.History(ctx, c.other.UserID)
	if err != nil {
		log.Printf("chat: cannot open conversation with user %d: %v", c.other.UserID, err)
		return
	}

	c.mu.Lock()
	c.entries = history
	c.mu.Unlock()

	var unread []string
	c.mu.Lock()
	for _, m := range c.entries {
		if m.Sender.UserID == c.other.UserID && m.Status != domain.StatusRead {
			unread = append(unread, m.MessageID)
		}
	}
	c.mu.Unlock()

	for _, id := range unread {
		if err := c.svc.MarkMessageRead(ctx, id); err != nil {
			log.Printf("chat: failed to mark message %s read: %v", id, err)
			continue
		}
		c.mu.Lock()
		if i := c.indexOf(id); i >= 0 {
			c.entries[i].Status = domain.StatusRead
		}
		c.mu.Unlock()
	}
}

// Send appends an optimistic SENDING entry, then issues the request. On
// acknowledgment the temp entry is replaced in place by the server
// message, preserving its position; on failure it flips to ERROR in
// place and stays visible for a manual resend. Either way a logical
// message is exactly one entry.
func (c *Conversation) Send(ctx context.Context, text string) error {
	temp := domain.Message{
		MessageID:   tempID(),
		Sender:      domain.User{UserID: c.self},
		Receiver:    c.other,
		MessageText: text,
		SentAt:      time.Now(),
		Status:      domain.StatusSending,
	}

	c.mu.Lock()
	c.entries = append(c.entries, temp)
	c.mu.Unlock()

	sent, err := c.svc.Send(ctx, c.other.UserID, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(temp.MessageID)
	if err != nil {
		if i >= 0 {
			c.entries[i].Status = domain.StatusError
		}
		c.sendErr = "Message could not be sent. Tap to retry."
		return err
	}
	if i >= 0 {
		c.entries[i] = *sent
	}
	return nil
}

// Resend removes an errored entry and re-enters Send with the same text
// under a fresh temp id. The removed entry never reappears.
func (c *Conversation) Resend(ctx context.Context, messageID string) error {
	c.mu.Lock()
	i := c.indexOf(messageID)
	if i < 0 || c.entries[i].Status != domain.StatusError {
		c.mu.Unlock()
		return ErrNotRetryable
	}
	text := c.entries[i].MessageText
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.sendErr = ""
	c.mu.Unlock()

	return c.Send(ctx, text)
}

// Messages returns a snapshot of the visible sequence.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.entries))
	copy(out, c.entries)
	return out
}

// LastError is the dismissable inline banner text, empty when none.
func (c *Conversation) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendErr
}

func (c *Conversation) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = ""
}

// indexOf must be called with c.mu held.
func (c *Conversation) indexOf(messageID string) int {
	for i := range c.entries {
		if c.entries[i].MessageID == messageID {
			return i
		}
	}
	return -1
}

func tempID() string {
	return "temp-" + strconv.FormatInt(time.Now().UnixNano(), 10)
}
