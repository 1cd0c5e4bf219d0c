package domain

import "errors"

var (
	ErrInvalidTransition     = errors.New("invalid sign-in transition")
	ErrInvalidSession        = errors.New("invalid session")
	ErrSessionNotFound       = errors.New("session not found")
	ErrUnauthenticated       = errors.New("authentication required")
	ErrAlreadyAuthenticated  = errors.New("already signed in")
	ErrSubmissionInFlight    = errors.New("a submission is already in progress")
	ErrUpstreamUnauthorized  = errors.New("upstream rejected the session token")
	ErrDraftNotFound         = errors.New("draft not found")
	ErrDraftAlreadyConfirmed = errors.New("draft already confirmed")
	ErrDraftExpired          = errors.New("draft expired")
	ErrUnknownSubmission     = errors.New("unknown submission kind")
)

// OTPRejectedError carries the upstream message when the one-time code is refused.
type OTPRejectedError struct {
	Message string
}

func (e *OTPRejectedError) Error() string {
	if e.Message == "" {
		return "one-time code rejected"
	}
	return e.Message
}

// RejectedError is an upstream reply with a falsy status on a write.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "request rejected"
	}
	return e.Message
}
