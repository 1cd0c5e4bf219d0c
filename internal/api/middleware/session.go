package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

const (
	sessionKey   = "session"
	sessionIDKey = "session_id"
)

// Session resolves the gateway token into the stored session. It never
// rejects a request: a missing, invalid or expired token yields an anonymous
// session, and RequireState decides what that may reach.
func Session(tokens ports.SessionTokens, auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization)); ok {
				if parsed, err := tokens.Parse(raw); err == nil {
					sid = parsed
				}
			}

			sess, err := auth.Current(c.Request().Context(), sid)
			if err != nil {
				return err
			}
			SetSession(c, sess)
			return next(c)
		}
	}
}

// SetSession attaches sess to the request context.
func SetSession(c echo.Context, sess *domain.Session) {
	if sess.ID != "" {
		c.Set(sessionIDKey, sess.ID)
	}
	c.Set(sessionKey, sess)
}

// SessionFrom returns the session resolved by Session, or an anonymous one.
func SessionFrom(c echo.Context) *domain.Session {
	if sess, ok := c.Get(sessionKey).(*domain.Session); ok && sess != nil {
		return sess
	}
	return &domain.Session{State: domain.StateAnonymous}
}

// SessionIDFrom returns the id of a stored session, or "" for a fresh visitor.
func SessionIDFrom(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}

func bearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
