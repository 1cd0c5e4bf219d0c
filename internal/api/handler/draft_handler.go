package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

// DraftHandler exposes the review-then-confirm writes.
type DraftHandler struct {
	service ports.DraftService
}

func NewDraftHandler(service ports.DraftService) *DraftHandler {
	return &DraftHandler{service: service}
}

// Create handles POST /v1/drafts/:kind.
//
// @Summary      Stage a write for confirmation
// @Description  Validates the form for the given kind and stores the literal values. loan_application needs ?target=<member id>.
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind    path      string  true   "gl_account, loan_product, loan_application, gl_deposit, gl_transfer, teller_deposit, bill_payment"
// @Param        target  query     string  false  "Member id for loan_application"
// @Success      201     {object}  domain.Draft
// @Failure      400     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/drafts/{kind} [post]
func (h *DraftHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	kind := domain.SubmissionKind(c.Param("kind"))
	schema, ok := draftSchemas[kind]
	if !ok {
		return domain.ErrUnknownSubmission
	}
	form := schema()
	if err := bindValid(c, form); err != nil {
		return err
	}
	target := c.QueryParam("target")
	if kind.RequiresTarget() && target == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "target is required for "+string(kind))
	}

	payload, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode draft payload: %w", err)
	}

	draft, err := h.service.Create(c.Request().Context(), sess, kind, target, payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, draft)
}

// Get handles GET /v1/drafts/:id.
//
// @Summary      Show a staged write
// @Tags         drafts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Draft id"
// @Success      200  {object}  domain.Draft
// @Failure      404  {object}  errorResponse
// @Router       /v1/drafts/{id} [get]
func (h *DraftHandler) Get(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	draft, err := h.service.Get(c.Request().Context(), sess, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, draft)
}

// Confirm handles POST /v1/drafts/:id/confirm.
//
// @Summary      Perform a staged write
// @Tags         drafts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Draft id"
// @Success      200  {object}  domain.Draft
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      410  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/drafts/{id}/confirm [post]
func (h *DraftHandler) Confirm(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	draft, err := h.service.Confirm(c.Request().Context(), sess, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, draft)
}

// Discard handles DELETE /v1/drafts/:id.
//
// @Summary      Drop a staged write
// @Tags         drafts
// @Security     BearerAuth
// @Param        id   path  string  true  "Draft id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/drafts/{id} [delete]
func (h *DraftHandler) Discard(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Discard(c.Request().Context(), sess, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
