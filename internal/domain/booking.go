package domain

import "time"

const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"
)

type Booking struct {
	BookingID   int64     `json:"bookingId"`
	CustomerID  int64     `json:"customerId"`
	ProviderID  int64     `json:"providerId"`
	ServiceName string    `json:"serviceName"`
	Status      string    `json:"status"`
	Price       float64   `json:"price"`
	ScheduledAt time.Time `json:"scheduledAt"`
	CreatedAt   time.Time `json:"createdAt"`
}
