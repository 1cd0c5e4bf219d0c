package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// AuthState is the position of a dashboard session in the sign-in flow.
type AuthState string

const (
	StateAnonymous     AuthState = "anonymous"
	StateAwaitingOtp   AuthState = "awaiting_otp"
	StateAuthenticated AuthState = "authenticated"
)

// AuthEvent is an outcome of a sign-in step that moves the flow.
type AuthEvent string

const (
	EventPasswordAccepted AuthEvent = "password_accepted"
	EventPasswordRejected AuthEvent = "password_rejected"
	EventOtpAccepted      AuthEvent = "otp_accepted"
	EventOtpRejected      AuthEvent = "otp_rejected"
	EventSignedOut        AuthEvent = "signed_out"
)

// Next returns the state reached by applying e to s.
func (s AuthState) Next(e AuthEvent) (AuthState, error) {
	if e == EventSignedOut {
		return StateAnonymous, nil
	}

	switch s {
	case StateAnonymous:
		switch e {
		case EventPasswordAccepted:
			return StateAwaitingOtp, nil
		case EventPasswordRejected:
			return StateAnonymous, nil
		}
	case StateAwaitingOtp:
		switch e {
		case EventPasswordAccepted, EventOtpRejected:
			return StateAwaitingOtp, nil
		case EventPasswordRejected:
			return StateAnonymous, nil
		case EventOtpAccepted:
			return StateAuthenticated, nil
		}
	case StateAuthenticated:
		// only sign-out leaves an authenticated session
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}

// Valid reports whether s is one of the known states.
func (s AuthState) Valid() bool {
	switch s {
	case StateAnonymous, StateAwaitingOtp, StateAuthenticated:
		return true
	}
	return false
}

// Credentials are the first sign-in factor. Never persisted in clear.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// OTPChallenge resubmits the original credentials together with the one-time code.
type OTPChallenge struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// LoginResponse is the upstream reply to either sign-in step.
type LoginResponse struct {
	Status      Flag            `json:"status"`
	Message     string          `json:"message"`
	AccessToken string          `json:"access_token,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Session is the server-held state of one dashboard sign-in.
//
// AccessToken is non-empty iff State is StateAuthenticated. SealedPassword is
// only present while State is StateAwaitingOtp.
type Session struct {
	ID             string          `json:"id"`
	State          AuthState       `json:"state"`
	Username       string          `json:"username,omitempty"`
	SealedPassword []byte          `json:"sealed_password,omitempty"`
	AccessToken    string          `json:"access_token,omitempty"`
	Profile        json.RawMessage `json:"profile,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewAnonymousSession returns the starting point of a sign-in.
func NewAnonymousSession(id string, now time.Time) *Session {
	return &Session{ID: id, State: StateAnonymous, CreatedAt: now, UpdatedAt: now}
}

// Authenticated reports whether the session may call protected endpoints.
func (s *Session) Authenticated() bool {
	return s != nil && s.State == StateAuthenticated && s.AccessToken != ""
}

// CheckInvariants verifies the token/state coupling before a session is stored.
func (s *Session) CheckInvariants() error {
	if !s.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidSession, s.State)
	}
	hasToken := s.AccessToken != ""
	if hasToken != (s.State == StateAuthenticated) {
		return fmt.Errorf("%w: token presence does not match state %s", ErrInvalidSession, s.State)
	}
	if len(s.SealedPassword) > 0 && s.State != StateAwaitingOtp {
		return fmt.Errorf("%w: retained password outside %s", ErrInvalidSession, StateAwaitingOtp)
	}
	return nil
}
