package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/saccodesk/backoffice/internal/api/metrics"
	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

const (
	bookingCurrency = "KES"
	saccoChannel    = "SACCO"
)

// submissionFields are set on the upstream body of money-moving submissions,
// replacing whatever the draft carried.
var submissionFields = map[domain.SubmissionKind]map[string]string{
	domain.KindGLDeposit:     {"currency_code": bookingCurrency},
	domain.KindGLTransfer:    {"currency_code": bookingCurrency, "channel": saccoChannel},
	domain.KindTellerDeposit: {"currency_code": bookingCurrency, "channel": saccoChannel},
	domain.KindBillPayment:   {"currency_code": bookingCurrency},
}

// DashboardService relays the CRUD screens with the session's upstream token.
type DashboardService struct {
	api   ports.SaccoAPI
	auth  ports.AuthService
	audit ports.AuditRecorder
	log   zerolog.Logger
}

var _ ports.DashboardService = (*DashboardService)(nil)

func NewDashboardService(api ports.SaccoAPI, auth ports.AuthService, audit ports.AuditRecorder, log zerolog.Logger) *DashboardService {
	return &DashboardService{api: api, auth: auth, audit: audit, log: log}
}

// List fetches one page. Empty filter values are not forwarded.
func (s *DashboardService) List(ctx context.Context, sess *domain.Session, path string, q domain.PageQuery, filters url.Values) (*domain.Page, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	q = q.Normalize()

	query := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			if v != "" {
				query.Add(k, v)
			}
		}
	}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("page_size", strconv.Itoa(q.PageSize))

	env, err := s.api.Get(ctx, path, query, sess.AccessToken)
	if err != nil {
		return nil, s.upstreamErr(ctx, sess, err)
	}
	page, err := domain.PageFromEnvelope(env, q)
	if err != nil {
		return nil, fmt.Errorf("decode page of %s: %w", path, err)
	}
	return page, nil
}

func (s *DashboardService) Detail(ctx context.Context, sess *domain.Session, path string, query url.Values) (json.RawMessage, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	env, err := s.api.Get(ctx, path, query, sess.AccessToken)
	if err != nil {
		return nil, s.upstreamErr(ctx, sess, err)
	}
	if env.Rejected() {
		return nil, &domain.RejectedError{Message: env.Message}
	}
	if len(env.Data) == 0 {
		return json.RawMessage(`null`), nil
	}
	return env.Data, nil
}

func (s *DashboardService) Write(ctx context.Context, sess *domain.Session, action, path string, body any) (*domain.Envelope, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	env, err := s.api.Post(ctx, path, sess.AccessToken, body)
	return s.finishWrite(ctx, sess, action, path, env, err)
}

func (s *DashboardService) Upload(ctx context.Context, sess *domain.Session, action, path string, form *ports.MultipartForm) (*domain.Envelope, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	env, err := s.api.PostMultipart(ctx, path, sess.AccessToken, form)
	return s.finishWrite(ctx, sess, action, path, env, err)
}

// Submit performs the upstream write behind a confirmed draft.
func (s *DashboardService) Submit(ctx context.Context, sess *domain.Session, kind domain.SubmissionKind, target string, payload json.RawMessage) (*domain.Envelope, error) {
	path, err := domain.SubmissionPath(kind, target)
	if err != nil {
		return nil, err
	}
	body, err := withSubmissionDefaults(kind, payload)
	if err != nil {
		return nil, err
	}
	return s.Write(ctx, sess, "submit."+string(kind), path, body)
}

func (s *DashboardService) finishWrite(ctx context.Context, sess *domain.Session, action, path string, env *domain.Envelope, err error) (*domain.Envelope, error) {
	switch {
	case err != nil:
		s.recordWrite(sess, action, path, domain.OutcomeError, err.Error())
		return nil, s.upstreamErr(ctx, sess, err)
	case env.Rejected():
		s.recordWrite(sess, action, path, domain.OutcomeRejected, env.Message)
		return nil, &domain.RejectedError{Message: env.Message}
	}
	s.recordWrite(sess, action, path, domain.OutcomeSuccess, env.Message)
	return env, nil
}

// upstreamErr ends the session when the upstream no longer accepts its token.
func (s *DashboardService) upstreamErr(ctx context.Context, sess *domain.Session, err error) error {
	if !errors.Is(err, domain.ErrUpstreamUnauthorized) {
		return err
	}
	if ierr := s.auth.Invalidate(context.WithoutCancel(ctx), sess.ID); ierr != nil {
		s.log.Warn().Err(ierr).Str("session_id", sess.ID).Msg("invalidate session")
	}
	return domain.ErrUnauthenticated
}

func (s *DashboardService) recordWrite(sess *domain.Session, action, path, outcome, message string) {
	metrics.WritesTotal.WithLabelValues(action, outcome).Inc()
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuditEntry{
		SessionID: sess.ID,
		Username:  sess.Username,
		Action:    action,
		Target:    path,
		Outcome:   outcome,
		Message:   message,
		At:        time.Now().UTC(),
	})
}

func withSubmissionDefaults(kind domain.SubmissionKind, payload json.RawMessage) (any, error) {
	fields, ok := submissionFields[kind]
	if !ok {
		return payload, nil
	}
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	if body == nil {
		body = map[string]any{}
	}
	for k, v := range fields {
		body[k] = v
	}
	return body, nil
}
