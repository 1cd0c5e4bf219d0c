package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

type PreferencesHandler struct {
	store ports.PreferencesStore
}

func NewPreferencesHandler(store ports.PreferencesStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// Get handles GET /v1/preferences.
//
// @Summary      Dashboard preferences of the signed-in user
// @Tags         preferences
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Preferences
// @Router       /v1/preferences [get]
func (h *PreferencesHandler) Get(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	prefs, err := h.store.Get(c.Request().Context(), sess.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prefs)
}

// Put handles PUT /v1/preferences.
//
// @Summary      Save dashboard preferences
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      preferencesRequest  true  "Preferences"
// @Success      200   {object}  domain.Preferences
// @Failure      422   {object}  errorResponse
// @Router       /v1/preferences [put]
func (h *PreferencesHandler) Put(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req preferencesRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	prefs := domain.Preferences{TrackerTab: req.TrackerTab, SelectedGroup: req.SelectedGroup}
	if err := h.store.Put(c.Request().Context(), sess.Username, prefs); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prefs)
}
