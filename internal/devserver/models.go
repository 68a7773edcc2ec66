package devserver

import (
	"time"

	"servio/internal/domain"
)

// Account is a marketplace user row. Customers and providers share the
// table; the two directory endpoints filter by role.
type Account struct {
	ID           int64  `gorm:"primaryKey"`
	UserName     string `gorm:"uniqueIndex"`
	FirstName    string
	LastName     string
	Role         string `gorm:"index"`
	BusinessName string
	ProfileImage string
	PasswordHash string
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Account) TableName() string { return "accounts" }

func (a Account) toUser() domain.User {
	return domain.User{
		UserID:       a.ID,
		UserName:     a.UserName,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Role:         a.Role,
		BusinessName: a.BusinessName,
		ProfileImage: a.ProfileImage,
	}
}

type Message struct {
	ID         string `gorm:"primaryKey"`
	SenderID   int64  `gorm:"index"`
	ReceiverID int64  `gorm:"index"`
	Text       string
	Status     string
	SentAt     time.Time
}

func (Message) TableName() string { return "messages" }

type Notification struct {
	ID          string `gorm:"primaryKey"`
	UserID      int64  `gorm:"index"`
	Type        string
	Text        string
	SenderID    int64
	SenderName  string
	ReferenceID string
	Read        bool
	CreatedAt   time.Time
}

func (Notification) TableName() string { return "notifications" }

func (n Notification) toDomain() domain.Notification {
	return domain.Notification{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Message:        n.Text,
		SenderID:       n.SenderID,
		SenderName:     n.SenderName,
		ReferenceID:    n.ReferenceID,
		Read:           n.Read,
		CreatedAt:      n.CreatedAt,
	}
}

type Booking struct {
	ID          int64 `gorm:"primaryKey"`
	CustomerID  int64 `gorm:"index"`
	ProviderID  int64 `gorm:"index"`
	ServiceName string
	Status      string
	Price       float64
	ScheduledAt time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Booking) TableName() string { return "bookings" }

func (b Booking) toDomain() domain.Booking {
	return domain.Booking{
		BookingID:   b.ID,
		CustomerID:  b.CustomerID,
		ProviderID:  b.ProviderID,
		ServiceName: b.ServiceName,
		Status:      b.Status,
		Price:       b.Price,
		ScheduledAt: b.ScheduledAt,
		CreatedAt:   b.CreatedAt,
	}
}
