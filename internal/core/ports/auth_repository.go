package ports

import (
	"context"
	"time"

	"github.com/saccodesk/backoffice/internal/core/domain"
)

// SessionStore persists dashboard sessions between requests.
type SessionStore interface {
	// Get returns domain.ErrSessionNotFound when no live session exists.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Put writes the whole session. Partial updates are not supported.
	Put(ctx context.Context, s *domain.Session, ttl time.Duration) error
	// Replace is Put for a session that must still exist; it returns
	// domain.ErrSessionNotFound once the session was deleted.
	Replace(ctx context.Context, s *domain.Session, ttl time.Duration) error
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}

// SubmitGuard serialises submissions that must never overlap.
type SubmitGuard interface {
	// Acquire returns domain.ErrSubmissionInFlight when key is already held.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// CredentialSealer encrypts the password retained between the two sign-in steps.
type CredentialSealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// SessionTokens issues and verifies the gateway's own session token.
type SessionTokens interface {
	Issue(sessionID string) (token string, expiresAt time.Time, err error)
	Parse(token string) (sessionID string, err error)
}

// PreferencesStore keeps per-user dashboard UI state.
type PreferencesStore interface {
	Get(ctx context.Context, username string) (*domain.Preferences, error)
	Put(ctx context.Context, username string, p domain.Preferences) error
}
