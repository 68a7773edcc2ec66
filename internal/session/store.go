// Package session persists the signed-in identity and the ephemeral chat
// handoff record in a small bbolt file, the client-side equivalent of the
// browser's local storage.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"go.etcd.io/bbolt"

	"servio/internal/domain"
)

// ErrNotAuthenticated means no signed-in identity is stored. There is no
// fallback identity: without a current user the client cannot send or
// read anything.
var ErrNotAuthenticated = errors.New("not authenticated")

var (
	bucketAuth    = []byte("auth")
	bucketHandoff = []byte("handoff")

	keyToken       = []byte("authToken")
	keyUserID      = []byte("userId")
	keyUserRole    = []byte("userRole")
	keyPendingChat = []byte("pendingChatUser")
)

type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketAuth); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketHandoff)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetCredentials stores the bearer token and identity returned by login.
// A zero userID stores the token alone; CurrentUserID then falls back to
// the token's claims.
func (s *Store) SetCredentials(token string, userID int64, role string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAuth)
		if err := b.Put(keyToken, []byte(token)); err != nil {
			return err
		}
		if userID == 0 {
			if err := b.Delete(keyUserID); err != nil {
				return err
			}
		} else if err := b.Put(keyUserID, []byte(strconv.FormatInt(userID, 10))); err != nil {
			return err
		}
		return b.Put(keyUserRole, []byte(role))
	})
}

// Clear removes the stored identity. The handoff bucket is left alone.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAuth)
		for _, key := range [][]byte{keyToken, keyUserID, keyUserRole} {
			if err := b.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Token implements api.TokenSource. Empty when nobody is signed in.
func (s *Store) Token() string {
	var token string
	_ = s.db.View(func(tx *bbolt.Tx) error {
		token = string(tx.Bucket(bucketAuth).Get(keyToken))
		return nil
	})
	return token
}

// CurrentUserID returns the signed-in user's id. When the id key is
// missing but a token is present (store written by an older client), the
// id is recovered from the token's claims without verifying the
// signature; the backend still rejects tampered tokens.
func (s *Store) CurrentUserID() (int64, error) {
	var rawID, rawToken []byte
	_ = s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAuth)
		rawID = b.Get(keyUserID)
		rawToken = b.Get(keyToken)
		return nil
	})

	if len(rawID) > 0 {
		id, err := strconv.ParseInt(string(rawID), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt userId in session store: %w", err)
		}
		return id, nil
	}

	if len(rawToken) > 0 {
		if id, ok := userIDFromToken(string(rawToken)); ok {
			return id, nil
		}
	}

	return 0, ErrNotAuthenticated
}

func (s *Store) Role() string {
	var role string
	_ = s.db.View(func(tx *bbolt.Tx) error {
		role = string(tx.Bucket(bucketAuth).Get(keyUserRole))
		return nil
	})
	return role
}

func userIDFromToken(token string) (int64, bool) {
	claims := struct {
		UserID int64 `json:"user_id"`
		jwtlib.RegisteredClaims
	}{}
	parser := jwtlib.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return 0, false
	}
	return claims.UserID, claims.UserID != 0
}

// PutPendingChat stores the handoff record, replacing any previous one.
func (s *Store) PutPendingChat(rec domain.PendingChat) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode handoff record: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketHandoff).Put(keyPendingChat, data)
	})
}

// TakePendingChat reads and deletes the handoff record in one
// transaction, so a record is consumed at most once. Returns (nil, nil)
// when there is nothing pending.
func (s *Store) TakePendingChat() (*domain.PendingChat, error) {
	var rec *domain.PendingChat
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketHandoff)
		data := b.Get(keyPendingChat)
		if data == nil {
			return nil
		}
		var r domain.PendingChat
		if err := json.Unmarshal(data, &r); err != nil {
			// Unreadable record: drop it rather than wedge every
			// future handoff behind it.
			return b.Delete(keyPendingChat)
		}
		rec = &r
		return b.Delete(keyPendingChat)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to take handoff record: %w", err)
	}
	return rec, nil
}
