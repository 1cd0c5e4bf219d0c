package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

// sessionRecord is the stored form of a session. Profile is held as []byte,
// which encoding/json writes as base64, so the upstream bytes survive as-is.
type sessionRecord struct {
	*domain.Session
	Profile []byte `json:"profile,omitempty"`
}

// SessionStore keeps each dashboard session as a single JSON value.
// Key format: session:<id>
type SessionStore struct {
	client *redis.Client
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("session get: %w", err)
	}

	sess, err := decodeSession(raw)
	if err != nil {
		return nil, err
	}
	if err := sess.CheckInvariants(); err != nil {
		// A stored session that breaks the token/state coupling is treated as gone.
		_ = s.client.Del(ctx, sessionKey(id)).Err()
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Put writes the whole session in one SET so readers never observe a partial update.
func (s *SessionStore) Put(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	raw, err := encodeSession(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

// Replace uses SET XX, so a session deleted by sign-out stays deleted.
func (s *SessionStore) Replace(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	raw, err := encodeSession(sess)
	if err != nil {
		return err
	}
	ok, err := s.client.SetXX(ctx, sessionKey(sess.ID), raw, ttl).Result()
	if err != nil {
		return fmt.Errorf("session replace: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func encodeSession(sess *domain.Session) ([]byte, error) {
	if err := sess.CheckInvariants(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(sessionRecord{Session: sess, Profile: sess.Profile})
	if err != nil {
		return nil, fmt.Errorf("session encode: %w", err)
	}
	return raw, nil
}

func decodeSession(raw []byte) (*domain.Session, error) {
	rec := sessionRecord{Session: &domain.Session{}}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	if rec.Profile != nil {
		rec.Session.Profile = json.RawMessage(rec.Profile)
	}
	return rec.Session, nil
}

func sessionKey(id string) string {
	return "session:" + id
}
