package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/saccodesk/backoffice/internal/api/metrics"
	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

// statusCoder is satisfied by upstream API errors.
type statusCoder interface {
	Status() int
}

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	API    ports.SaccoAPI
	Store  ports.SessionStore
	Guard  ports.SubmitGuard
	Sealer ports.CredentialSealer
	Tokens ports.SessionTokens
	Audit  ports.AuditRecorder
}

// AuthService drives the password then OTP sign-in against the SACCO API and
// keeps the result in the session store.
type AuthService struct {
	deps       AuthDeps
	sessionTTL time.Duration
	otpWindow  time.Duration
	log        zerolog.Logger
	now        func() time.Time
	newID      func() string
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(deps AuthDeps, sessionTTL, otpWindow time.Duration, log zerolog.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	if otpWindow <= 0 {
		otpWindow = 10 * time.Minute
	}
	return &AuthService{
		deps:       deps,
		sessionTTL: sessionTTL,
		otpWindow:  otpWindow,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

func (s *AuthService) SubmitPassword(ctx context.Context, sessionID string, creds domain.Credentials) (*ports.FlowResult, error) {
	sess, stored, err := s.loadOrStart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Authenticated() {
		return nil, domain.ErrAlreadyAuthenticated
	}

	release, err := s.acquire(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Another request may have finished with the session while we waited.
	if stored {
		if sess, err = s.load(ctx, sess.ID); err != nil {
			return nil, err
		}
		if sess.Authenticated() {
			return nil, domain.ErrAlreadyAuthenticated
		}
	}

	resp, err := s.deps.API.SignInWithPassword(ctx, creds)
	if err != nil {
		if isCredentialFailure(err) {
			s.rejectPassword(ctx, sess, stored, creds.Username, err)
		}
		return nil, err
	}

	// Any 2xx without a finished sign-in means the upstream wants the OTP.
	to := s.transition(sess.State, domain.EventPasswordAccepted)

	sealed, err := s.deps.Sealer.Seal([]byte(creds.Password))
	if err != nil {
		return nil, fmt.Errorf("seal credentials: %w", err)
	}

	next := &domain.Session{
		ID:             sess.ID,
		State:          to,
		Username:       creds.Username,
		SealedPassword: sealed,
		CreatedAt:      sess.CreatedAt,
		UpdatedAt:      s.now(),
	}
	if err := s.save(ctx, next, stored, s.otpWindow); err != nil {
		return nil, err
	}

	s.record(next, "auth.password", domain.OutcomeSuccess, resp.Message)
	s.log.Info().Str("session_id", next.ID).Str("username", next.Username).Msg("password accepted, awaiting otp")

	return s.result(next, resp.Message)
}

func (s *AuthService) SubmitOtp(ctx context.Context, sessionID, otp string) (*ports.FlowResult, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := sess.State.Next(domain.EventOtpAccepted); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if sess, err = s.load(ctx, sess.ID); err != nil {
		return nil, err
	}
	if _, err := sess.State.Next(domain.EventOtpAccepted); err != nil {
		return nil, err
	}

	password, err := s.deps.Sealer.Open(sess.SealedPassword)
	if err != nil {
		_ = s.deps.Store.Delete(ctx, sess.ID)
		return nil, fmt.Errorf("%w: retained credentials unreadable", domain.ErrInvalidSession)
	}

	resp, err := s.deps.API.ValidateOtp(ctx, domain.OTPChallenge{
		Username: sess.Username,
		Password: string(password),
		OTP:      otp,
	})
	if err != nil {
		return nil, err
	}

	if !bool(resp.Status) || resp.AccessToken == "" {
		s.transition(sess.State, domain.EventOtpRejected)
		s.record(sess, "auth.otp", domain.OutcomeRejected, resp.Message)
		return nil, &domain.OTPRejectedError{Message: resp.Message}
	}

	next := &domain.Session{
		ID:          sess.ID,
		State:       s.transition(sess.State, domain.EventOtpAccepted),
		Username:    sess.Username,
		AccessToken: resp.AccessToken,
		Profile:     resp.Data,
		CreatedAt:   sess.CreatedAt,
		UpdatedAt:   s.now(),
	}
	if err := s.save(ctx, next, true, s.sessionTTL); err != nil {
		return nil, err
	}

	s.record(next, "auth.otp", domain.OutcomeSuccess, resp.Message)
	s.log.Info().Str("session_id", next.ID).Str("username", next.Username).Msg("signed in")

	return s.result(next, resp.Message)
}

// SignOut deletes the session whatever its state. Calling it twice is harmless.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	return s.end(ctx, sessionID, "auth.sign_out")
}

// Invalidate ends a session whose upstream token stopped working.
func (s *AuthService) Invalidate(ctx context.Context, sessionID string) error {
	return s.end(ctx, sessionID, "auth.invalidate")
}

// Current returns the stored session, or an anonymous view when there is none.
func (s *AuthService) Current(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return domain.NewAnonymousSession("", s.now()), nil
	}
	sess, err := s.deps.Store.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.NewAnonymousSession("", s.now()), nil
	}
	return sess, err
}

func (s *AuthService) end(ctx context.Context, sessionID, action string) error {
	if sessionID == "" {
		return nil
	}

	prev, err := s.deps.Store.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("load session before sign-out")
	}

	if err := s.deps.Store.Delete(ctx, sessionID); err != nil {
		return err
	}

	if prev != nil {
		s.transition(prev.State, domain.EventSignedOut)
		s.record(prev, action, domain.OutcomeSuccess, "")
	}
	return nil
}

func (s *AuthService) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthenticated
	}
	sess, err := s.deps.Store.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	return sess, err
}

// loadOrStart resumes the caller's session or opens a new anonymous one when
// the previous one expired or never existed. stored reports the former.
func (s *AuthService) loadOrStart(ctx context.Context, sessionID string) (sess *domain.Session, stored bool, err error) {
	if sessionID != "" {
		sess, err = s.deps.Store.Get(ctx, sessionID)
		if err == nil {
			return sess, true, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, false, err
		}
	}
	return domain.NewAnonymousSession(s.newID(), s.now()), false, nil
}

// save writes a new session, or replaces a stored one only while it still
// exists so that a concurrent sign-out stays final.
func (s *AuthService) save(ctx context.Context, sess *domain.Session, stored bool, ttl time.Duration) error {
	if !stored {
		if err := s.deps.Store.Put(ctx, sess, ttl); err != nil {
			return fmt.Errorf("store session: %w", err)
		}
		return nil
	}
	err := s.deps.Store.Replace(ctx, sess, ttl)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.ErrUnauthenticated
	}
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *AuthService) acquire(ctx context.Context, sessionID string) (func(), error) {
	release, err := s.deps.Guard.Acquire(ctx, "auth:"+sessionID)
	if errors.Is(err, domain.ErrSubmissionInFlight) {
		metrics.SubmissionsRejectedTotal.Inc()
	}
	return release, err
}

// rejectPassword clears any pending challenge after the upstream refused the
// credentials. Failures here are logged; the caller still sees the rejection.
func (s *AuthService) rejectPassword(ctx context.Context, sess *domain.Session, stored bool, username string, cause error) {
	to := s.transition(sess.State, domain.EventPasswordRejected)

	entry := *sess
	if entry.Username == "" {
		entry.Username = username
	}
	s.record(&entry, "auth.password", domain.OutcomeRejected, cause.Error())

	if !stored || sess.State == to {
		return
	}
	next := domain.NewAnonymousSession(sess.ID, sess.CreatedAt)
	next.UpdatedAt = s.now()
	if err := s.save(ctx, next, true, s.otpWindow); err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("clear pending challenge")
	}
}

func (s *AuthService) transition(from domain.AuthState, event domain.AuthEvent) domain.AuthState {
	to, err := from.Next(event)
	if err != nil {
		s.log.Error().Err(err).Msg("unexpected sign-in transition")
		return from
	}
	metrics.AuthTransitionsTotal.WithLabelValues(string(from), string(to), string(event)).Inc()
	return to
}

func (s *AuthService) record(sess *domain.Session, action, outcome, message string) {
	if s.deps.Audit == nil {
		return
	}
	s.deps.Audit.Record(domain.AuditEntry{
		SessionID: sess.ID,
		Username:  sess.Username,
		Action:    action,
		Outcome:   outcome,
		Message:   message,
		At:        s.now(),
	})
}

func (s *AuthService) result(sess *domain.Session, notice string) (*ports.FlowResult, error) {
	token, exp, err := s.deps.Tokens.Issue(sess.ID)
	if err != nil {
		return nil, err
	}
	return &ports.FlowResult{Session: sess, Notice: notice, Token: token, ExpiresAt: exp}, nil
}

func isCredentialFailure(err error) bool {
	var sc statusCoder
	if !errors.As(err, &sc) {
		return false
	}
	code := sc.Status()
	return code >= http.StatusBadRequest && code < http.StatusInternalServerError
}
