package devserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servio/internal/api"
	"servio/internal/chat"
	"servio/internal/database"
	"servio/internal/devserver"
	"servio/internal/domain"
	"servio/internal/notification"
	"servio/internal/pkg/jwt"
)

type identity int64

func (i identity) CurrentUserID() (int64, error) { return int64(i), nil }

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(filepath.Join(t.TempDir(), "dev.db"))
	require.NoError(t, err)

	srv, err := devserver.New(db, jwt.New("test-secret", time.Hour))
	require.NoError(t, err)
	require.NoError(t, devserver.Seed(db))

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, baseURL, user, pass string) (string, domain.User) {
	t.Helper()
	client := api.New(baseURL, api.StaticToken(""))

	body := struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}{UserName: user, Password: pass}
	var result struct {
		AuthToken string      `json:"authToken"`
		User      domain.User `json:"user"`
	}
	require.NoError(t, client.Post(context.Background(), "/api/auth/login", body, &result))
	require.NotEmpty(t, result.AuthToken)
	return result.AuthToken, result.User
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := startServer(t)
	client := api.New(ts.URL, api.StaticToken(""))

	body := map[string]string{"userName": "alice", "password": "wrong"}
	err := client.Post(context.Background(), "/api/auth/login", body, nil)
	require.Error(t, err)

	apiErr, ok := err.(*api.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := startServer(t)
	client := api.New(ts.URL, api.StaticToken(""))

	err := client.Get(context.Background(), "/api/messages/getAll", nil)
	require.Error(t, err)
	apiErr, ok := err.(*api.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestDirectoriesSplitByRole(t *testing.T) {
	ts := startServer(t)
	token, alice := login(t, ts.URL, "alice", "password")

	svc := chat.NewService(api.New(ts.URL, api.StaticToken(token)), identity(alice.UserID))
	users := svc.AllUsers(context.Background())
	require.Len(t, users, 4)

	roles := map[string]int{}
	for _, u := range users {
		roles[u.Role]++
	}
	assert.Equal(t, 2, roles[domain.RoleCustomer])
	assert.Equal(t, 2, roles[domain.RoleServiceProvider])
}

func TestMessageAndNotificationFlow(t *testing.T) {
	ts := startServer(t)

	aliceToken, alice := login(t, ts.URL, "alice", "password")
	providerToken, provider := login(t, ts.URL, "brightclean", "password")

	aliceChat := chat.NewService(api.New(ts.URL, api.StaticToken(aliceToken)), identity(alice.UserID))
	providerClient := api.New(ts.URL, api.StaticToken(providerToken))
	providerChat := chat.NewService(providerClient, identity(provider.UserID))
	providerNotifs := notification.NewService(providerClient, identity(provider.UserID), providerChat)

	// Alice messages the provider through the optimistic state machine.
	conv, err := aliceChat.NewConversation(provider)
	require.NoError(t, err)
	conv.Open(context.Background())
	require.NoError(t, conv.Send(context.Background(), "Can you come Tuesday?"))

	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].IsTemp())
	assert.Equal(t, domain.StatusDelivered, msgs[0].Status)

	// The provider's feed has one message notification with structured
	// sender fields.
	items, err := providerNotifs.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.NotificationMessage, items[0].Type)
	assert.Equal(t, alice.UserID, items[0].SenderID)
	assert.Contains(t, items[0].Message, "sent you a message")
	assert.Equal(t, msgs[0].MessageID, items[0].ReferenceID)

	// Acting on the notification clears the thread and the feed.
	require.NoError(t, providerNotifs.MarkAsRead(context.Background(), items[0]))

	items, err = providerNotifs.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	thread, err := aliceChat.History(context.Background(), provider.UserID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, domain.StatusRead, thread[0].Status)
}

func TestProviderBookingsEndpoint(t *testing.T) {
	ts := startServer(t)
	token, provider := login(t, ts.URL, "brightclean", "password")
	client := api.New(ts.URL, api.StaticToken(token))

	var bookings []domain.Booking
	path := "/api/bookings/provider/" + strconv.FormatInt(provider.UserID, 10)
	require.NoError(t, client.Get(context.Background(), path, &bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, domain.BookingConfirmed, bookings[0].Status)
	assert.Equal(t, provider.UserID, bookings[0].ProviderID)
}
