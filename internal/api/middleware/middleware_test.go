package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
	"github.com/saccodesk/backoffice/internal/core/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubAuth struct {
	ports.AuthService
	sessions map[string]*domain.Session
}

func (s *stubAuth) Current(_ context.Context, id string) (*domain.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return domain.NewAnonymousSession("", time.Now()), nil
}

func run(t *testing.T, req *http.Request, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, *domain.Session, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.Session
	called := false
	h := func(c echo.Context) error {
		called = true
		seen = SessionFrom(c)
		return c.NoContent(http.StatusOK)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, seen, called
}

func TestSession_ResolvesBearerToken(t *testing.T) {
	tokens := service.NewJWTSessionTokens(testSecret, time.Hour)
	auth := &stubAuth{sessions: map[string]*domain.Session{
		"s1": {ID: "s1", State: domain.StateAuthenticated, AccessToken: "tok123"},
	}}
	tok, _, err := tokens.Issue("s1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	_, sess, called := run(t, req, Session(tokens, auth))

	if !called {
		t.Fatalf("next not called")
	}
	if sess.ID != "s1" || !sess.Authenticated() {
		t.Fatalf("expected authenticated s1, got %+v", sess)
	}
}

func TestSession_BadTokenIsAnonymous(t *testing.T) {
	tokens := service.NewJWTSessionTokens(testSecret, time.Hour)
	auth := &stubAuth{sessions: map[string]*domain.Session{}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	_, sess, called := run(t, req, Session(tokens, auth))

	if !called {
		t.Fatalf("next not called")
	}
	if sess.State != domain.StateAnonymous {
		t.Fatalf("expected anonymous, got %s", sess.State)
	}
}

func TestRequireState(t *testing.T) {
	tokens := service.NewJWTSessionTokens(testSecret, time.Hour)
	auth := &stubAuth{sessions: map[string]*domain.Session{
		"authed":  {ID: "authed", State: domain.StateAuthenticated, AccessToken: "tok"},
		"pending": {ID: "pending", State: domain.StateAwaitingOtp, SealedPassword: []byte("x")},
	}}
	bearerFor := func(id string) string {
		tok, _, err := tokens.Issue(id)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		return "Bearer " + tok
	}

	cases := []struct {
		name     string
		sid      string
		accept   string
		allowed  []domain.AuthState
		wantCode int
		wantNext bool
	}{
		{"authenticated reaches dashboard", "authed", "", []domain.AuthState{domain.StateAuthenticated}, http.StatusOK, true},
		{"anonymous api call gets 401", "", "application/json", []domain.AuthState{domain.StateAuthenticated}, http.StatusUnauthorized, false},
		{"anonymous browser is redirected", "", "text/html,application/xhtml+xml", []domain.AuthState{domain.StateAuthenticated}, http.StatusFound, false},
		{"awaiting otp cannot reach dashboard", "pending", "", []domain.AuthState{domain.StateAuthenticated}, http.StatusUnauthorized, false},
		{"awaiting otp reaches otp step", "pending", "", []domain.AuthState{domain.StateAwaitingOtp}, http.StatusOK, true},
		{"authenticated cannot submit otp", "authed", "", []domain.AuthState{domain.StateAwaitingOtp}, http.StatusUnauthorized, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.sid != "" {
				req.Header.Set("Authorization", bearerFor(tc.sid))
			}
			if tc.accept != "" {
				req.Header.Set("Accept", tc.accept)
			}

			rec, _, called := run(t, req, Session(tokens, auth), RequireState("/sign-in", tc.allowed...))
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if called != tc.wantNext {
				t.Fatalf("next called = %v, want %v", called, tc.wantNext)
			}
			if tc.wantCode == http.StatusFound && rec.Header().Get("Location") != "/sign-in" {
				t.Fatalf("unexpected redirect target %q", rec.Header().Get("Location"))
			}
		})
	}
}
