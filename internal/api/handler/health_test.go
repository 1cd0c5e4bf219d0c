package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_Liveness(t *testing.T) {
	c, rec := newContext(t, http.MethodGet, "/health", nil, "", nil)
	require.NoError(t, (&HealthHandler{}).Liveness(c))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	h := &HealthHandler{checks: []dependencyCheck{{name: "mongodb", ping: ok}, {name: "redis", ping: ok}}}
	c, rec := newContext(t, http.MethodGet, "/health/ready", nil, "", nil)
	require.NoError(t, h.Readiness(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = &HealthHandler{checks: []dependencyCheck{{name: "mongodb", ping: ok}, {name: "redis", ping: down}}}
	c, rec = newContext(t, http.MethodGet, "/health/ready", nil, "", nil)
	require.NoError(t, h.Readiness(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","dependencies":{"mongodb":{"status":"ok"},"redis":{"status":"unhealthy","error":"connection refused"}}}`, rec.Body.String())
}
