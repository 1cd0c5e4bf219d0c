package ports

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/saccodesk/backoffice/internal/core/domain"
)

// DashboardService relays the CRUD screens to the upstream API on behalf of
// an authenticated session.
type DashboardService interface {
	List(ctx context.Context, sess *domain.Session, path string, q domain.PageQuery, filters url.Values) (*domain.Page, error)
	// Detail returns the upstream data object of a non-paginated GET.
	Detail(ctx context.Context, sess *domain.Session, path string, query url.Values) (json.RawMessage, error)
	// Write posts body and fails with *domain.RejectedError on a falsy status.
	Write(ctx context.Context, sess *domain.Session, action, path string, body any) (*domain.Envelope, error)
	Upload(ctx context.Context, sess *domain.Session, action, path string, form *MultipartForm) (*domain.Envelope, error)
	Submit(ctx context.Context, sess *domain.Session, kind domain.SubmissionKind, target string, payload json.RawMessage) (*domain.Envelope, error)
}

// DraftRepository persists review-then-confirm drafts.
type DraftRepository interface {
	Create(ctx context.Context, d *domain.Draft) error
	FindByID(ctx context.Context, id string) (*domain.Draft, error)
	// Claim moves a pending draft to confirming. It fails with
	// domain.ErrDraftAlreadyConfirmed when the draft is no longer pending.
	Claim(ctx context.Context, id string) (*domain.Draft, error)
	// Release returns a claimed draft to pending after a failed write.
	Release(ctx context.Context, id, message string) error
	Complete(ctx context.Context, id string, status domain.DraftStatus, message string) error
}

// DraftService implements the review-then-confirm write pattern.
type DraftService interface {
	Create(ctx context.Context, sess *domain.Session, kind domain.SubmissionKind, target string, payload json.RawMessage) (*domain.Draft, error)
	Get(ctx context.Context, sess *domain.Session, id string) (*domain.Draft, error)
	Confirm(ctx context.Context, sess *domain.Session, id string) (*domain.Draft, error)
	Discard(ctx context.Context, sess *domain.Session, id string) error
}

// AuditRepository stores audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}

// AuditRecorder accepts audit entries without blocking the caller.
type AuditRecorder interface {
	Record(entry domain.AuditEntry)
}
