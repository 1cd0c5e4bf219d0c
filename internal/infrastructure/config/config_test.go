package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_SECRET":     testSecret,
		"SACCO_API_BASE_URL": "https://api.example.test",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.OTPWindow)
	assert.Equal(t, "/", cfg.Session.SignInPath)
	assert.Equal(t, "Bearer", cfg.SaccoAPI.AuthScheme)
	assert.Equal(t, 20*time.Second, cfg.SaccoAPI.Timeout)
	assert.Equal(t, "sacco_backoffice", cfg.Mongo.Database)
	assert.Equal(t, 4, cfg.Audit.Workers)
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                   "production",
		"SESSION_SECRET":        testSecret,
		"SESSION_TTL":           "1h",
		"SACCO_API_BASE_URL":    "https://api.example.test",
		"SACCO_API_AUTH_SCHEME": "Token",
		"REDIS_DB":              "3",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "Token", cfg.SaccoAPI.AuthScheme)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadWith_MissingRequired(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_SECRET": testSecret,
	}))
	require.Error(t, err)
}

func TestLoadWith_ShortSecret(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_SECRET":     "short",
		"SACCO_API_BASE_URL": "https://api.example.test",
	}))
	require.ErrorContains(t, err, "SESSION_SECRET")
}
