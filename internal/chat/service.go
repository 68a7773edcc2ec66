// Package chat is the client side of two-party messaging: directory
// lookups, conversation history, optimistic sends and read receipts.
package chat

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"servio/internal/api"
	"servio/internal/domain"
)

// Identity supplies the signed-in user. In production it is
// *session.Store.
type Identity interface {
	CurrentUserID() (int64, error)
}

type Service struct {
	api      *api.Client
	identity Identity
}

func NewService(client *api.Client, identity Identity) *Service {
	return &Service{api: client, identity: identity}
}

func (s *Service) CurrentUserID() (int64, error) {
	return s.identity.CurrentUserID()
}

// AllUsers merges the customer and provider directories into one list.
// Read path: a partial outage degrades to whichever directory answered,
// and a total outage degrades to a built-in fallback list. Never fails.
func (s *Service) AllUsers(ctx context.Context) []domain.User {
	var customers, providers []domain.User
	errCustomers := s.api.Get(ctx, "/api/customers/getAll", &customers)
	errProviders := s.api.Get(ctx, "/api/service-providers/getAll", &providers)

	if errCustomers != nil && errProviders != nil {
		log.Printf("chat: user directories unavailable, serving fallback list: %v", errCustomers)
		return fallbackUsers()
	}
	if errCustomers != nil {
		log.Printf("chat: customer directory unavailable: %v", errCustomers)
	}
	if errProviders != nil {
		log.Printf("chat: provider directory unavailable: %v", errProviders)
	}

	users := make([]domain.User, 0, len(customers)+len(providers))
	for _, u := range customers {
		if u.Role == "" {
			u.Role = domain.RoleCustomer
		}
		users = append(users, u)
	}
	for _, u := range providers {
		if u.Role == "" {
			u.Role = domain.RoleServiceProvider
		}
		users = append(users, u)
	}
	return users
}

// SearchUsers filters the merged directory by a case-insensitive
// substring over the visible name fields.
func (s *Service) SearchUsers(ctx context.Context, query string) []domain.User {
	query = strings.ToLower(strings.TrimSpace(query))
	users := s.AllUsers(ctx)
	if query == "" {
		return users
	}

	matched := users[:0]
	for _, u := range users {
		haystack := strings.ToLower(strings.Join([]string{
			u.UserName, u.FirstName, u.LastName, u.BusinessName,
		}, " "))
		if strings.Contains(haystack, query) {
			matched = append(matched, u)
		}
	}
	return matched
}

// History returns the two-party thread with otherUserID sorted by sentAt
// ascending. Network failures degrade to an empty thread; only a missing
// identity is an error.
func (s *Service) History(ctx context.Context, otherUserID int64) ([]domain.Message, error) {
	self, err := s.identity.CurrentUserID()
	if err != nil {
		return nil, err
	}

	all, err := s.allMessages(ctx)
	if err != nil {
		log.Printf("chat: failed to load conversation with user %d: %v", otherUserID, err)
		return []domain.Message{}, nil
	}

	thread := make([]domain.Message, 0, len(all))
	for _, m := range all {
		if m.Between(self, otherUserID) {
			thread = append(thread, m)
		}
	}
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].SentAt.Before(thread[j].SentAt)
	})
	return thread, nil
}

// Send posts one message. Write path: errors are returned, the caller
// owns the optimistic rollback.
func (s *Service) Send(ctx context.Context, receiverID int64, text string) (*domain.Message, error) {
	if _, err := s.identity.CurrentUserID(); err != nil {
		return nil, err
	}

	body := struct {
		ReceiverID  int64  `json:"receiverId"`
		MessageText string `json:"messageText"`
	}{ReceiverID: receiverID, MessageText: text}

	var sent domain.Message
	if err := s.api.Post(ctx, "/api/messages/postMessage", body, &sent); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &sent, nil
}

// MarkMessageRead flips one message to READ. The caller decides whether a
// failure matters; the conversation sweep logs and moves on.
func (s *Service) MarkMessageRead(ctx context.Context, messageID string) error {
	body := struct {
		Status domain.MessageStatus `json:"status"`
	}{Status: domain.StatusRead}
	return s.api.Put(ctx, "/api/messages/update/"+messageID, body, nil)
}

// FindMessage scans the message feed for one id. There is no dedicated
// lookup endpoint.
func (s *Service) FindMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	all, err := s.allMessages(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].MessageID == messageID {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("message %s not found", messageID)
}

// ConversationPartners derives the chat list by scanning every message
// involving the signed-in user, newest thread first. There is no partner
// endpoint; the scan is the contract.
func (s *Service) ConversationPartners(ctx context.Context) ([]domain.User, error) {
	self, err := s.identity.CurrentUserID()
	if err != nil {
		return nil, err
	}

	all, err := s.allMessages(ctx)
	if err != nil {
		log.Printf("chat: failed to derive conversation partners: %v", err)
		return []domain.User{}, nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].SentAt.After(all[j].SentAt)
	})

	seen := make(map[int64]bool)
	var partners []domain.User
	for _, m := range all {
		var other domain.User
		switch {
		case m.Sender.UserID == self:
			other = m.Receiver
		case m.Receiver.UserID == self:
			other = m.Sender
		default:
			continue
		}
		if !seen[other.UserID] {
			seen[other.UserID] = true
			partners = append(partners, other)
		}
	}
	return partners, nil
}

func (s *Service) allMessages(ctx context.Context) ([]domain.Message, error) {
	var all []domain.Message
	if err := s.api.Get(ctx, "/api/messages/getAll", &all); err != nil {
		return nil, err
	}
	return all, nil
}

// fallbackUsers keeps the directory view usable through a transient
// outage of both directory endpoints.
func fallbackUsers() []domain.User {
	return []domain.User{
		{UserID: 1, UserName: "support", FirstName: "Marketplace", LastName: "Support", Role: domain.RoleServiceProvider, BusinessName: "Marketplace Support"},
	}
}
