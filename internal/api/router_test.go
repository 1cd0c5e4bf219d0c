package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
	"github.com/saccodesk/backoffice/internal/core/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeAuth struct {
	sessions map[string]*domain.Session
}

func (f *fakeAuth) SubmitPassword(_ context.Context, _ string, creds domain.Credentials) (*ports.FlowResult, error) {
	return &ports.FlowResult{Session: &domain.Session{ID: "new", State: domain.StateAwaitingOtp, Username: creds.Username}, Notice: "OTP sent"}, nil
}

func (f *fakeAuth) SubmitOtp(_ context.Context, sessionID, _ string) (*ports.FlowResult, error) {
	return &ports.FlowResult{Session: f.sessions[sessionID]}, nil
}

func (f *fakeAuth) SignOut(context.Context, string) error    { return nil }
func (f *fakeAuth) Invalidate(context.Context, string) error { return nil }

func (f *fakeAuth) Current(_ context.Context, sessionID string) (*domain.Session, error) {
	if s, ok := f.sessions[sessionID]; ok {
		return s, nil
	}
	return &domain.Session{State: domain.StateAnonymous}, nil
}

type fakeDashboard struct {
	ports.DashboardService
}

func (fakeDashboard) List(_ context.Context, _ *domain.Session, _ string, q domain.PageQuery, _ url.Values) (*domain.Page, error) {
	return &domain.Page{Items: []json.RawMessage{}, Page: q.Page, PageSize: q.PageSize}, nil
}

func newTestRouter(t *testing.T) (*echo.Echo, *service.JWTSessionTokens) {
	t.Helper()
	tokens := service.NewJWTSessionTokens(testSecret, time.Hour)
	auth := &fakeAuth{sessions: map[string]*domain.Session{
		"signed-in": {ID: "signed-in", State: domain.StateAuthenticated, AccessToken: "tok123"},
		"pending":   {ID: "pending", State: domain.StateAwaitingOtp},
	}}
	e := NewRouter(Deps{
		Log:        zerolog.Nop(),
		SignInPath: "/sign-in",
		Tokens:     tokens,
		Auth:       auth,
		Dashboard:  fakeDashboard{},
		Registerer: prometheus.NewRegistry(),
	})
	return e, tokens
}

func bearerFor(t *testing.T, tokens *service.JWTSessionTokens, sid string) string {
	t.Helper()
	tok, _, err := tokens.Issue(sid)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	e, tokens := newTestRouter(t)

	cases := []struct {
		name   string
		sid    string
		accept string
		code   int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"browser without token", "", "text/html,application/xhtml+xml", http.StatusFound},
		{"awaiting otp", "pending", "", http.StatusUnauthorized},
		{"signed in", "signed-in", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/members", nil)
			if tc.sid != "" {
				req.Header.Set(echo.HeaderAuthorization, bearerFor(t, tokens, tc.sid))
			}
			if tc.accept != "" {
				req.Header.Set(echo.HeaderAccept, tc.accept)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestRouter_OtpOnlyWhileAwaiting(t *testing.T) {
	e, tokens := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login/otp", strings.NewReader(`{"otp":"123456"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/login/otp", strings.NewReader(`{"otp":"123456"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearerFor(t, tokens, "pending"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LoginAndHealthAreOpen(t *testing.T) {
	e, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"+254700000001","password":"pw1234"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OTP sent")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
