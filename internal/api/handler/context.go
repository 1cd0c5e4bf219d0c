package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/api/middleware"
	"github.com/saccodesk/backoffice/internal/core/domain"
)

// ctxSession returns the authenticated session resolved by the Session
// middleware. Route guards normally reject anonymous callers first; this is
// the fast-fail for handlers mounted without one.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess := middleware.SessionFrom(c)
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return sess, nil
}

// bindValid binds the request into req and runs the registered validator.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
