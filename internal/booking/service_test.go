package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servio/internal/api"
	"servio/internal/domain"
	"servio/internal/session"
)

type fakeIdentity struct {
	id  int64
	err error
}

func (f fakeIdentity) CurrentUserID() (int64, error) { return f.id, f.err }

func writeData(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": v})
}

func TestProviderBookings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bookings/provider/20", r.URL.Path)
		writeData(w, []domain.Booking{
			{BookingID: 1, ProviderID: 20, ServiceName: "Deep cleaning", Status: domain.BookingConfirmed},
		})
	}))
	defer srv.Close()

	svc := NewService(api.New(srv.URL, api.StaticToken("t")), fakeIdentity{id: 20})
	bookings, err := svc.ProviderBookings(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Deep cleaning", bookings[0].ServiceName)
}

func TestProviderBookingsAbortsOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	svc := NewService(api.New(srv.URL, api.StaticToken("t")), fakeIdentity{id: 20})
	svc.Timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := svc.ProviderBookings(context.Background(), 20)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "fetch must abort, not wait out the server")
}

func TestCustomerBookingsRequiresIdentity(t *testing.T) {
	svc := NewService(api.New("http://localhost:0", api.StaticToken("")), fakeIdentity{err: session.ErrNotAuthenticated})

	_, err := svc.CustomerBookings(context.Background())
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}
