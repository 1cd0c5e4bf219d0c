package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/api/middleware"
	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login submits the password step.
//
// @Summary      Submit username and password
// @Description  Starts or restarts the sign-in. On success the session waits for the OTP; the upstream message is returned as a notice.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.authService.SubmitPassword(c.Request().Context(), middleware.SessionIDFrom(c), domain.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, flowResponse(res))
}

// SubmitOtp completes the sign-in.
//
// @Summary      Submit the one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      otpRequest  true  "One-time code"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login/otp [post]
func (h *AuthHandler) SubmitOtp(c echo.Context) error {
	var req otpRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.authService.SubmitOtp(c.Request().Context(), middleware.SessionIDFrom(c), req.OTP)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, flowResponse(res))
}

// Session reports where the caller is in the sign-in flow.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	return c.JSON(http.StatusOK, sessionResponse{
		State:    sess.State,
		Username: sess.Username,
		Profile:  sess.Profile,
	})
}

// SignOut forgets the session.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.authService.SignOut(c.Request().Context(), middleware.SessionIDFrom(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func flowResponse(res *ports.FlowResult) sessionResponse {
	out := sessionResponse{
		State:    res.Session.State,
		Username: res.Session.Username,
		Profile:  res.Session.Profile,
		Notice:   res.Notice,
		Token:    res.Token,
	}
	if !res.ExpiresAt.IsZero() {
		exp := res.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out
}
