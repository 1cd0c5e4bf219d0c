package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/saccodesk/backoffice/internal/api/metrics"
	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

// DraftService holds a write's literal values until the user confirms them.
type DraftService struct {
	repo  ports.DraftRepository
	dash  ports.DashboardService
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

var _ ports.DraftService = (*DraftService)(nil)

func NewDraftService(repo ports.DraftRepository, dash ports.DashboardService, ttl time.Duration, log zerolog.Logger) *DraftService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DraftService{
		repo:  repo,
		dash:  dash,
		ttl:   ttl,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *DraftService) Create(ctx context.Context, sess *domain.Session, kind domain.SubmissionKind, target string, payload json.RawMessage) (*domain.Draft, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !kind.Valid() {
		return nil, domain.ErrUnknownSubmission
	}
	if _, err := domain.SubmissionPath(kind, target); err != nil {
		return nil, err
	}

	now := s.now()
	d := &domain.Draft{
		ID:        s.newID(),
		SessionID: sess.ID,
		Username:  sess.Username,
		Kind:      kind,
		Target:    target,
		Payload:   payload,
		Status:    domain.DraftPending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	metrics.DraftsTotal.WithLabelValues(string(kind), "created").Inc()
	return d, nil
}

// Get hides drafts of other sessions behind ErrDraftNotFound.
func (s *DraftService) Get(ctx context.Context, sess *domain.Session, id string) (*domain.Draft, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.SessionID != sess.ID || d.Status == domain.DraftDiscarded {
		return nil, domain.ErrDraftNotFound
	}
	return d, nil
}

// Confirm posts the draft upstream exactly once. A failed write puts the
// draft back to pending so it can be confirmed again.
func (s *DraftService) Confirm(ctx context.Context, sess *domain.Session, id string) (*domain.Draft, error) {
	d, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	switch d.Status {
	case domain.DraftConfirmed:
		return nil, domain.ErrDraftAlreadyConfirmed
	case domain.DraftConfirming:
		return nil, domain.ErrSubmissionInFlight
	}
	if d.Expired(s.now()) {
		return nil, domain.ErrDraftExpired
	}

	if _, err := s.repo.Claim(ctx, id); err != nil {
		return nil, err
	}

	env, err := s.dash.Submit(ctx, sess, d.Kind, d.Target, d.Payload)
	if err != nil {
		if rerr := s.repo.Release(context.WithoutCancel(ctx), id, err.Error()); rerr != nil {
			s.log.Error().Err(rerr).Str("draft_id", id).Msg("release draft")
		}
		metrics.DraftsTotal.WithLabelValues(string(d.Kind), "failed").Inc()
		return nil, err
	}

	if err := s.repo.Complete(context.WithoutCancel(ctx), id, domain.DraftConfirmed, env.Message); err != nil {
		// The upstream write happened; only the bookkeeping failed.
		s.log.Error().Err(err).Str("draft_id", id).Msg("mark draft confirmed")
	}
	metrics.DraftsTotal.WithLabelValues(string(d.Kind), "confirmed").Inc()

	confirmedAt := s.now()
	d.Status = domain.DraftConfirmed
	d.Message = env.Message
	d.ConfirmedAt = &confirmedAt
	return d, nil
}

func (s *DraftService) Discard(ctx context.Context, sess *domain.Session, id string) error {
	d, err := s.Get(ctx, sess, id)
	if err != nil {
		return err
	}
	switch d.Status {
	case domain.DraftConfirmed:
		return domain.ErrDraftAlreadyConfirmed
	case domain.DraftConfirming:
		return domain.ErrSubmissionInFlight
	}
	if err := s.repo.Complete(ctx, id, domain.DraftDiscarded, ""); err != nil {
		return err
	}
	metrics.DraftsTotal.WithLabelValues(string(d.Kind), "discarded").Inc()
	return nil
}
