package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

// PreferencesStore keeps dashboard UI state per staff user with no expiry.
// Key format: prefs:<username>
type PreferencesStore struct {
	client *redis.Client
}

var _ ports.PreferencesStore = (*PreferencesStore)(nil)

func NewPreferencesStore(client *redis.Client) *PreferencesStore {
	return &PreferencesStore{client: client}
}

// Get returns the defaults when nothing was saved yet.
func (p *PreferencesStore) Get(ctx context.Context, username string) (*domain.Preferences, error) {
	prefs := &domain.Preferences{TrackerTab: domain.DefaultTrackerTab}

	raw, err := p.client.Get(ctx, prefsKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return prefs, nil
		}
		return nil, fmt.Errorf("preferences get: %w", err)
	}
	if err := json.Unmarshal(raw, prefs); err != nil {
		return nil, fmt.Errorf("preferences decode: %w", err)
	}
	if prefs.TrackerTab == "" {
		prefs.TrackerTab = domain.DefaultTrackerTab
	}
	return prefs, nil
}

func (p *PreferencesStore) Put(ctx context.Context, username string, prefs domain.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("preferences encode: %w", err)
	}
	return p.client.Set(ctx, prefsKey(username), raw, 0).Err()
}

func prefsKey(username string) string {
	return "prefs:" + username
}
