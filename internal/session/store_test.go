package session

import (
	"path/filepath"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servio/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCredentialsRoundTrip(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetCredentials("tok-123", 42, domain.RoleCustomer))

	assert.Equal(t, "tok-123", store.Token())
	assert.Equal(t, domain.RoleCustomer, store.Role())

	id, err := store.CurrentUserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestCurrentUserIDWithoutIdentity(t *testing.T) {
	store := openTestStore(t)

	_, err := store.CurrentUserID()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, store.SetCredentials("tok", 42, ""))
	require.NoError(t, store.Clear())

	_, err = store.CurrentUserID()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, store.Token())
}

func TestCurrentUserIDFallsBackToTokenClaims(t *testing.T) {
	store := openTestStore(t)

	claims := jwtlib.MapClaims{
		"user_id": 77,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("whatever"))
	require.NoError(t, err)

	// Token stored without an explicit user id, as an older client did.
	require.NoError(t, store.SetCredentials(token, 0, ""))

	id, err := store.CurrentUserID()
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
}

func TestPendingChatConsumedExactlyOnce(t *testing.T) {
	store := openTestStore(t)

	rec, err := store.TakePendingChat()
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.PutPendingChat(domain.PendingChat{Name: "B", UserID: 20}))

	rec, err = store.TakePendingChat()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(20), rec.UserID)
	assert.Equal(t, "B", rec.Name)

	rec, err = store.TakePendingChat()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestPutPendingChatReplacesPrevious(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.PutPendingChat(domain.PendingChat{Name: "old", UserID: 1}))
	require.NoError(t, store.PutPendingChat(domain.PendingChat{Name: "new", UserID: 2}))

	rec, err := store.TakePendingChat()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(2), rec.UserID)
}
