package ports

import (
	"context"
	"time"

	"github.com/saccodesk/backoffice/internal/core/domain"
)

// FlowResult is what a sign-in step hands back to the transport layer.
type FlowResult struct {
	Session *domain.Session
	// Notice is the upstream message, shown as information rather than error.
	Notice string
	// Token is the gateway session token for the browser.
	Token     string
	ExpiresAt time.Time
}

// AuthService drives the password then OTP sign-in.
type AuthService interface {
	// SubmitPassword starts or restarts the flow. An empty sessionID begins a new session.
	SubmitPassword(ctx context.Context, sessionID string, creds domain.Credentials) (*FlowResult, error)
	SubmitOtp(ctx context.Context, sessionID, otp string) (*FlowResult, error)
	SignOut(ctx context.Context, sessionID string) error
	Invalidate(ctx context.Context, sessionID string) error
	Current(ctx context.Context, sessionID string) (*domain.Session, error)
}
