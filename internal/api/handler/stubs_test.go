package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/api/middleware"
	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

func signedIn() *domain.Session {
	return &domain.Session{ID: "sid-1", State: domain.StateAuthenticated, Username: "+254700000001", AccessToken: "tok123"}
}

// newContext builds an echo context carrying sess, as the Session middleware would.
func newContext(t *testing.T, method, target string, body io.Reader, contentType string, sess *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		middleware.SetSession(c, sess)
	}
	return c, rec
}

func withParams(c echo.Context, kv ...string) echo.Context {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

type stubDashboard struct {
	listPath    string
	listQuery   domain.PageQuery
	listFilters url.Values
	page        *domain.Page

	detailPath  string
	detailQuery url.Values
	data        json.RawMessage

	writeAction string
	writePath   string
	writeBody   any

	uploadAction string
	uploadPath   string
	upload       *ports.MultipartForm

	env *domain.Envelope
	err error
}

func (s *stubDashboard) List(_ context.Context, _ *domain.Session, path string, q domain.PageQuery, filters url.Values) (*domain.Page, error) {
	s.listPath, s.listQuery, s.listFilters = path, q, filters
	if s.err != nil {
		return nil, s.err
	}
	if s.page == nil {
		return &domain.Page{Items: []json.RawMessage{}, Page: q.Page, PageSize: q.PageSize}, nil
	}
	return s.page, nil
}

func (s *stubDashboard) Detail(_ context.Context, _ *domain.Session, path string, query url.Values) (json.RawMessage, error) {
	s.detailPath, s.detailQuery = path, query
	if s.err != nil {
		return nil, s.err
	}
	if s.data == nil {
		return json.RawMessage(`{}`), nil
	}
	return s.data, nil
}

func (s *stubDashboard) Write(_ context.Context, _ *domain.Session, action, path string, body any) (*domain.Envelope, error) {
	s.writeAction, s.writePath, s.writeBody = action, path, body
	return s.reply()
}

func (s *stubDashboard) Upload(_ context.Context, _ *domain.Session, action, path string, form *ports.MultipartForm) (*domain.Envelope, error) {
	s.uploadAction, s.uploadPath, s.upload = action, path, form
	return s.reply()
}

func (s *stubDashboard) Submit(_ context.Context, _ *domain.Session, _ domain.SubmissionKind, _ string, _ json.RawMessage) (*domain.Envelope, error) {
	return s.reply()
}

func (s *stubDashboard) reply() (*domain.Envelope, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.env == nil {
		return &domain.Envelope{Message: "ok"}, nil
	}
	return s.env, nil
}

type stubDrafts struct {
	kind    domain.SubmissionKind
	target  string
	payload json.RawMessage
	id      string
	draft   *domain.Draft
	err     error
}

func (s *stubDrafts) Create(_ context.Context, sess *domain.Session, kind domain.SubmissionKind, target string, payload json.RawMessage) (*domain.Draft, error) {
	s.kind, s.target, s.payload = kind, target, payload
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Draft{ID: "d-1", Username: sess.Username, Kind: kind, Target: target, Payload: payload, Status: domain.DraftPending}, nil
}

func (s *stubDrafts) Get(_ context.Context, _ *domain.Session, id string) (*domain.Draft, error) {
	s.id = id
	return s.draft, s.err
}

func (s *stubDrafts) Confirm(_ context.Context, _ *domain.Session, id string) (*domain.Draft, error) {
	s.id = id
	return s.draft, s.err
}

func (s *stubDrafts) Discard(_ context.Context, _ *domain.Session, id string) error {
	s.id = id
	return s.err
}

type stubPrefs struct {
	saved map[string]domain.Preferences
}

func (s *stubPrefs) Get(_ context.Context, username string) (*domain.Preferences, error) {
	if p, ok := s.saved[username]; ok {
		return &p, nil
	}
	return &domain.Preferences{TrackerTab: domain.DefaultTrackerTab}, nil
}

func (s *stubPrefs) Put(_ context.Context, username string, p domain.Preferences) error {
	if s.saved == nil {
		s.saved = map[string]domain.Preferences{}
	}
	s.saved[username] = p
	return nil
}

type stubAuthService struct {
	submitPasswordFn func(ctx context.Context, sessionID string, creds domain.Credentials) (*ports.FlowResult, error)
	submitOtpFn      func(ctx context.Context, sessionID, otp string) (*ports.FlowResult, error)
	signedOut        []string
}

func (s *stubAuthService) SubmitPassword(ctx context.Context, sessionID string, creds domain.Credentials) (*ports.FlowResult, error) {
	return s.submitPasswordFn(ctx, sessionID, creds)
}

func (s *stubAuthService) SubmitOtp(ctx context.Context, sessionID, otp string) (*ports.FlowResult, error) {
	return s.submitOtpFn(ctx, sessionID, otp)
}

func (s *stubAuthService) SignOut(_ context.Context, sessionID string) error {
	s.signedOut = append(s.signedOut, sessionID)
	return nil
}

func (s *stubAuthService) Invalidate(ctx context.Context, sessionID string) error {
	return s.SignOut(ctx, sessionID)
}

func (s *stubAuthService) Current(_ context.Context, sessionID string) (*domain.Session, error) {
	return &domain.Session{ID: sessionID, State: domain.StateAnonymous}, nil
}
