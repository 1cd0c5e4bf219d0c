package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/infrastructure/saccoapi"
)

// errorResponse is the canonical error envelope for all API errors.
// Details carries the upstream error payload when there is one.
type errorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain and
// upstream errors to status codes, and logs anything unexpected without
// leaking it to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var otpErr *domain.OTPRejectedError
	if errors.As(err, &otpErr) {
		return http.StatusUnauthorized, errorResponse{Error: otpErr.Error()}
	}
	var rejected *domain.RejectedError
	if errors.As(err, &rejected) {
		return http.StatusUnprocessableEntity, errorResponse{Error: rejected.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrInvalidSession):
		return http.StatusUnauthorized, errorResponse{Error: domain.ErrUnauthenticated.Error()}
	case errors.Is(err, domain.ErrAlreadyAuthenticated):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return http.StatusTooManyRequests, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrDraftNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrDraftAlreadyConfirmed):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrDraftExpired):
		return http.StatusGone, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrUnknownSubmission):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads this
		return 499, errorResponse{Error: "request cancelled"}
	}

	var apiErr *saccoapi.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.StatusCode
		if code < 400 || code > 599 {
			code = http.StatusBadGateway
		}
		return code, errorResponse{Error: apiErr.Message, Details: apiErr.Payload}
	}
	if saccoapi.IsTransport(err) {
		log.Warn().Err(err).Str("path", c.Path()).Msg("sacco api unreachable")
		return http.StatusBadGateway, errorResponse{Error: "SACCO API is unreachable, try again"}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
