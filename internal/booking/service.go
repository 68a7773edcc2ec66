// Package booking is the client side of the booking views. Unlike the
// chat read paths, booking fetches are primary views: errors surface to
// the caller instead of degrading to empty data.
package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"servio/internal/api"
	"servio/internal/domain"
)

// providerFetchTimeout bounds the provider bookings fetch; the schedule
// view is useless if it hangs, so it aborts rather than waits.
const providerFetchTimeout = 10 * time.Second

type Identity interface {
	CurrentUserID() (int64, error)
}

type Service struct {
	api      *api.Client
	identity Identity

	// Timeout overrides providerFetchTimeout in tests.
	Timeout time.Duration
}

func NewService(client *api.Client, identity Identity) *Service {
	return &Service{api: client, identity: identity}
}

// ProviderBookings lists a provider's bookings, aborting after the fetch
// timeout.
func (s *Service) ProviderBookings(ctx context.Context, providerID int64) ([]domain.Booking, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = providerFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bookings []domain.Booking
	path := "/api/bookings/provider/" + strconv.FormatInt(providerID, 10)
	if err := s.api.Get(ctx, path, &bookings); err != nil {
		return nil, fmt.Errorf("failed to fetch provider bookings: %w", err)
	}
	return bookings, nil
}

// CustomerBookings lists the signed-in customer's bookings.
func (s *Service) CustomerBookings(ctx context.Context) ([]domain.Booking, error) {
	if _, err := s.identity.CurrentUserID(); err != nil {
		return nil, err
	}
	var bookings []domain.Booking
	if err := s.api.Get(ctx, "/api/bookings/customer", &bookings); err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	return bookings, nil
}
