package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/core/domain"
)

// RequireState lets a request through only when its session is in one of the
// allowed states. Browsers asking for HTML are redirected to signInPath,
// everyone else gets a 401 JSON error.
func RequireState(signInPath string, states ...domain.AuthState) echo.MiddlewareFunc {
	allowed := make(map[domain.AuthState]struct{}, len(states))
	for _, s := range states {
		allowed[s] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if _, ok := allowed[sess.State]; ok {
				if sess.State != domain.StateAuthenticated || sess.Authenticated() {
					return next(c)
				}
			}

			if wantsHTML(c.Request()) {
				return c.Redirect(http.StatusFound, signInPath)
			}
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "sign-in required"})
		}
	}
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMETextHTML)
}
