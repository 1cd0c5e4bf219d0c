package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

const defaultLockTTL = 30 * time.Second

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmitGuard is a per-key SETNX lock.
// Key format: submit:<key>
type SubmitGuard struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SubmitGuard = (*SubmitGuard)(nil)

// NewSubmitGuard creates a SubmitGuard. The TTL bounds how long a crashed
// holder can block the key.
func NewSubmitGuard(client *redis.Client, ttl time.Duration) *SubmitGuard {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &SubmitGuard{client: client, ttl: ttl}
}

func (g *SubmitGuard) Acquire(ctx context.Context, key string) (func(), error) {
	k := "submit:" + key
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, k, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("submit lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrSubmissionInFlight
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
		defer cancel()
		_ = releaseScript.Run(ctx, g.client, []string{k}, token).Err()
	}, nil
}
