// Package notification is the client side of the transient alert feed:
// fetching, grouping for display, and the read-and-delete lifecycle.
package notification

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"

	"servio/internal/api"
	"servio/internal/chat"
	"servio/internal/domain"
)

// legacySenderRe recovers the sender name from the old free-text body
// convention. Structured senderId/senderName fields are authoritative
// when present; the regex only covers rows written before they existed.
var legacySenderRe = regexp.MustCompile(`^(.+?) sent you a message`)

type Identity interface {
	CurrentUserID() (int64, error)
}

type Service struct {
	api      *api.Client
	identity Identity
	chat     *chat.Service
}

func NewService(client *api.Client, identity Identity, chatSvc *chat.Service) *Service {
	return &Service{api: client, identity: identity, chat: chatSvc}
}

// Fetch returns the signed-in user's notifications. The feed endpoint
// returns rows for everyone; filtering to the addressee happens here.
func (s *Service) Fetch(ctx context.Context) ([]domain.Notification, error) {
	self, err := s.identity.CurrentUserID()
	if err != nil {
		return nil, err
	}

	var all []domain.Notification
	if err := s.api.Get(ctx, "/api/notifications/getAll", &all); err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	mine := make([]domain.Notification, 0, len(all))
	for _, n := range all {
		if n.UserID == self {
			mine = append(mine, n)
		}
	}
	return mine, nil
}

// SenderKey identifies the sender of a message-type notification:
// structured id first, then structured name, then the legacy text parse.
// Empty means the sender cannot be determined.
func SenderKey(n domain.Notification) string {
	if n.SenderID != 0 {
		return "id:" + strconv.FormatInt(n.SenderID, 10)
	}
	if n.SenderName != "" {
		return "name:" + n.SenderName
	}
	if m := legacySenderRe.FindStringSubmatch(n.Message); m != nil {
		return "name:" + m[1]
	}
	return ""
}

// Process collapses message-type notifications to the newest one per
// sender, keeps every other type as is, and orders the combined set by
// createdAt descending.
func Process(items []domain.Notification) []domain.Notification {
	newestPerSender := make(map[string]domain.Notification)
	var out []domain.Notification

	for _, n := range items {
		if n.Type != domain.NotificationMessage {
			out = append(out, n)
			continue
		}
		key := SenderKey(n)
		if key == "" {
			// No recoverable sender: show the row ungrouped.
			out = append(out, n)
			continue
		}
		if prev, ok := newestPerSender[key]; !ok || n.CreatedAt.After(prev.CreatedAt) {
			newestPerSender[key] = n
		}
	}

	for _, n := range newestPerSender {
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ProcessForCount is the badge number: unread entries remaining after
// grouping.
func ProcessForCount(items []domain.Notification) int {
	count := 0
	for _, n := range Process(items) {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkAsRead clears one notification. For a message-type row the whole
// thread is cleared, not just the clicked entry: every unread message
// from that sender to the current user is marked read and each
// corresponding notification row is deleted. Other types simply flip
// read and delete the row.
func (s *Service) MarkAsRead(ctx context.Context, n domain.Notification) error {
	if n.Type != domain.NotificationMessage {
		return s.markOne(ctx, n)
	}

	senderID, err := s.resolveSender(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to resolve notification sender: %w", err)
	}

	// Read receipts for the whole thread, one call per message; a bad
	// id is logged and does not block the rest.
	thread, err := s.chat.History(ctx, senderID)
	if err != nil {
		return err
	}
	self, _ := s.identity.CurrentUserID()
	for _, m := range thread {
		if m.Sender.UserID == senderID && m.Receiver.UserID == self && m.Status != domain.StatusRead {
			if err := s.chat.MarkMessageRead(ctx, m.MessageID); err != nil {
				log.Printf("notification: failed to mark message %s read: %v", m.MessageID, err)
			}
		}
	}

	// Drop every notification row from this sender, the clicked one
	// included.
	key := senderKeyForID(senderID, n)
	mine, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, other := range mine {
		if other.Type != domain.NotificationMessage {
			continue
		}
		if SenderKey(other) == key || other.NotificationID == n.NotificationID {
			if err := s.deleteRow(ctx, other); err != nil {
				log.Printf("notification: failed to clear %s: %v", other.NotificationID, err)
			}
		}
	}
	return nil
}

// MarkAllAsRead rebuilds the full unread set and clears it serially.
// Per-item failures are swallowed so one bad row never aborts the batch;
// a second call sees an empty unread set and does nothing.
func (s *Service) MarkAllAsRead(ctx context.Context) error {
	mine, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, n := range mine {
		if n.Read {
			continue
		}
		if err := s.markOne(ctx, n); err != nil {
			log.Printf("notification: failed to clear %s: %v", n.NotificationID, err)
		}
	}
	return nil
}

// markOne performs the read-then-delete lifecycle for a single row, with
// the message-type side effect of flipping the underlying message read.
func (s *Service) markOne(ctx context.Context, n domain.Notification) error {
	if n.Type == domain.NotificationMessage && n.ReferenceID != "" {
		if err := s.chat.MarkMessageRead(ctx, n.ReferenceID); err != nil {
			log.Printf("notification: failed to mark message %s read: %v", n.ReferenceID, err)
		}
	}
	return s.deleteRow(ctx, n)
}

// deleteRow flips read then deletes. Notifications are transient alerts,
// not an inbox: read rows are not retained.
func (s *Service) deleteRow(ctx context.Context, n domain.Notification) error {
	body := struct {
		Read bool `json:"read"`
	}{Read: true}
	if err := s.api.Put(ctx, "/api/notifications/update/"+n.NotificationID, body, nil); err != nil {
		return err
	}
	return s.api.Delete(ctx, "/api/notifications/delete/"+n.NotificationID)
}

// resolveSender returns the sender user id for a message-type row, going
// through the referenced message when the row lacks the structured field.
func (s *Service) resolveSender(ctx context.Context, n domain.Notification) (int64, error) {
	if n.SenderID != 0 {
		return n.SenderID, nil
	}
	if n.ReferenceID == "" {
		return 0, fmt.Errorf("notification %s has no sender reference", n.NotificationID)
	}
	msg, err := s.chat.FindMessage(ctx, n.ReferenceID)
	if err != nil {
		return 0, err
	}
	return msg.Sender.UserID, nil
}

func senderKeyForID(senderID int64, n domain.Notification) string {
	if senderID != 0 {
		return "id:" + strconv.FormatInt(senderID, 10)
	}
	return SenderKey(n)
}
