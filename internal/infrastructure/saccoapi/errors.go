package saccoapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/saccodesk/backoffice/internal/core/domain"
)

// fallbackMessage is shown when the upstream gives nothing better.
const fallbackMessage = "Something went wrong!"

// APIError is a response from the SACCO API with a non-2xx status.
// Message prefers the server-supplied payload over a generic status text.
type APIError struct {
	StatusCode int
	Message    string
	Payload    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sacco api: %d: %s", e.StatusCode, e.Message)
}

// Status exposes the HTTP status to callers that cannot import this package.
func (e *APIError) Status() int { return e.StatusCode }

// Is lets callers match a 401 with errors.Is(err, domain.ErrUpstreamUnauthorized).
func (e *APIError) Is(target error) bool {
	return target == domain.ErrUpstreamUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// TransportError means no response reached the gateway.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sacco api: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// newAPIError builds the normalised error for a failed response body.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: fallbackMessage}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		if text := http.StatusText(status); text != "" && len(body) == 0 {
			apiErr.Message = text
		}
		return apiErr
	}

	apiErr.Payload = json.RawMessage(body)
	if msg := payloadMessage(body); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

// payloadMessage digs the human-readable message out of an error payload.
func payloadMessage(body []byte) string {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
