package domain

import "time"

type MessageStatus string

const (
	StatusSending   MessageStatus = "SENDING"
	StatusSent      MessageStatus = "SENT"
	StatusDelivered MessageStatus = "DELIVERED"
	StatusRead      MessageStatus = "READ"
	StatusError     MessageStatus = "ERROR"
)

// Message is one chat message between two users. Server-assigned ids are
// opaque strings; before the backend acknowledges a send the client uses a
// temporary "temp-<nanos>" id, which is replaced in place by the server
// echo once the send resolves.
type Message struct {
	MessageID   string        `json:"messageId"`
	Sender      User          `json:"sender"`
	Receiver    User          `json:"receiver"`
	MessageText string        `json:"messageText"`
	SentAt      time.Time     `json:"sentAt"`
	Status      MessageStatus `json:"status"`
}

// IsTemp reports whether the message still carries a client-generated id.
func (m Message) IsTemp() bool {
	return len(m.MessageID) > 5 && m.MessageID[:5] == "temp-"
}

// Between reports whether the message belongs to the two-party thread of
// users a and b, in either direction.
func (m Message) Between(a, b int64) bool {
	return (m.Sender.UserID == a && m.Receiver.UserID == b) ||
		(m.Sender.UserID == b && m.Receiver.UserID == a)
}
