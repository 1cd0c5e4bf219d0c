package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/saccodesk/backoffice/docs"
	"github.com/saccodesk/backoffice/internal/api/handler"
	"github.com/saccodesk/backoffice/internal/api/middleware"
	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Log         zerolog.Logger
	SignInPath  string
	Tokens      ports.SessionTokens
	Auth        ports.AuthService
	Dashboard   ports.DashboardService
	Drafts      ports.DraftService
	Preferences ports.PreferencesStore
	// Health is optional; without it only the liveness probe answers.
	Health *handler.HealthHandler
	// Registerer receives the request metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "backoffice",
		Registerer: d.Registerer,
	}))

	// --- Operational endpoints (no session) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	health := d.Health
	if health == nil {
		health = &handler.HealthHandler{}
	}
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)

	// --- Everything below knows who is calling ---
	withSession := middleware.Session(d.Tokens, d.Auth)
	signedIn := middleware.RequireState(d.SignInPath, domain.StateAuthenticated)

	authHandler := handler.NewAuthHandler(d.Auth)
	auth := e.Group("/auth", withSession)
	auth.POST("/login", authHandler.Login)
	auth.POST("/login/otp", authHandler.SubmitOtp, middleware.RequireState(d.SignInPath, domain.StateAwaitingOtp))
	auth.GET("/session", authHandler.Session)
	auth.POST("/sign-out", authHandler.SignOut)

	v1 := e.Group("/v1", withSession, signedIn)

	dash := handler.NewDashboardHandler(d.Dashboard)
	v1.GET("/dashboard", dash.Summary)

	members := handler.NewMemberHandler(d.Dashboard)
	v1.GET("/members", dash.ListMembers)
	v1.POST("/members", members.Onboard)
	v1.POST("/members/corporate", members.OnboardCorporate)
	v1.GET("/members/search", dash.SearchMember)
	v1.GET("/members/:id", dash.GetMember)
	v1.GET("/members/:id/accounts", dash.MemberAccounts)
	v1.GET("/members/:id/transactions", dash.MemberTransactions)

	v1.GET("/staff", dash.ListStaff)
	v1.POST("/staff", dash.CreateStaff)
	v1.POST("/staff/:id/status", dash.SetStaffStatus)

	v1.GET("/branches", dash.ListBranches)
	v1.POST("/branches", dash.CreateBranch)

	v1.GET("/tellers", dash.ListTellers)
	v1.GET("/tellers/:id/dashboard", dash.TellerDashboard)

	v1.GET("/loan-products", dash.ListLoanProducts)
	v1.GET("/loans", dash.ListLoans)
	v1.GET("/loans/:id", dash.GetLoan)
	v1.POST("/loans/:id/approval", dash.ApproveLoan)
	v1.POST("/loans/:id/disburse", dash.DisburseLoan)

	v1.GET("/gl-accounts", dash.ListGLAccounts)
	v1.GET("/transactions", dash.ListTransactions)
	v1.GET("/api-requests", dash.ListAPIRequests)

	drafts := handler.NewDraftHandler(d.Drafts)
	v1.POST("/drafts/:kind", drafts.Create)
	v1.GET("/drafts/:id", drafts.Get)
	v1.POST("/drafts/:id/confirm", drafts.Confirm)
	v1.DELETE("/drafts/:id", drafts.Discard)

	prefs := handler.NewPreferencesHandler(d.Preferences)
	v1.GET("/preferences", prefs.Get)
	v1.PUT("/preferences", prefs.Put)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
