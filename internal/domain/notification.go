package domain

import "time"

const (
	NotificationMessage     = "message"
	NotificationBooking     = "booking"
	NotificationTransaction = "transaction"
	NotificationReview      = "review"
	NotificationSystem      = "system"
)

// Notification is a transient alert addressed to one user. Read
// notifications are not retained: marking one read deletes the row.
//
// SenderID/SenderName are set by the backend on message-type rows; older
// rows may carry only the free-text body, from which a sender name can
// still be recovered (see notification.SenderKey).
type Notification struct {
	NotificationID string    `json:"notificationId"`
	UserID         int64     `json:"userId"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	SenderID       int64     `json:"senderId,omitempty"`
	SenderName     string    `json:"senderName,omitempty"`
	ReferenceID    string    `json:"referenceId,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}
