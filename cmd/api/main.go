// @title                       SACCO Backoffice API
// @version                     1.0
// @description                 Backoffice gateway in front of the SACCO core API.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saccodesk/backoffice/internal/api"
	"github.com/saccodesk/backoffice/internal/api/handler"
	"github.com/saccodesk/backoffice/internal/core/service"
	"github.com/saccodesk/backoffice/internal/infrastructure/config"
	mongodb "github.com/saccodesk/backoffice/internal/infrastructure/db/mongo"
	redisdb "github.com/saccodesk/backoffice/internal/infrastructure/db/redis"
	"github.com/saccodesk/backoffice/internal/infrastructure/queue"
	"github.com/saccodesk/backoffice/internal/infrastructure/saccoapi"
	"github.com/saccodesk/backoffice/internal/infrastructure/secret"
	"github.com/saccodesk/backoffice/pkg/logger"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "sacco-backoffice"})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "sacco-backoffice",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	drafts := mongodb.NewDraftRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, drafts, auditRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	upstream, err := saccoapi.New(saccoapi.Config{
		BaseURL:    cfg.SaccoAPI.BaseURL,
		Timeout:    cfg.SaccoAPI.Timeout,
		AuthScheme: cfg.SaccoAPI.AuthScheme,
	}, logger.Component("saccoapi"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid sacco api configuration")
	}

	sealer, err := secret.NewSealer(cfg.Session.Secret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to derive sealing key")
	}
	tokens := service.NewJWTSessionTokens(cfg.Session.Secret, cfg.Session.TTL)

	// audit workers outlive the request context and drain after shutdown
	auditCtx, stopAudit := context.WithCancel(context.Background())
	audit := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, logger.Component("audit"))
	audit.Start(auditCtx)

	authService := service.NewAuthService(service.AuthDeps{
		API:    upstream,
		Store:  redisdb.NewSessionStore(rdb),
		Guard:  redisdb.NewSubmitGuard(rdb, cfg.Session.SubmitLockTTL),
		Sealer: sealer,
		Tokens: tokens,
		Audit:  audit,
	}, cfg.Session.TTL, cfg.Session.OTPWindow, logger.Component("auth"))
	dashboardService := service.NewDashboardService(upstream, authService, audit, logger.Component("dashboard"))
	draftService := service.NewDraftService(drafts, dashboardService, cfg.Session.DraftTTL, logger.Component("drafts"))

	e := api.NewRouter(api.Deps{
		Log:         logger.Component("http"),
		SignInPath:  cfg.Session.SignInPath,
		Tokens:      tokens,
		Auth:        authService,
		Dashboard:   dashboardService,
		Drafts:      draftService,
		Preferences: redisdb.NewPreferencesStore(rdb),
		Health:      handler.NewHealthHandler(db, rdb),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	stopAudit()
	audit.Wait()
	log.Info().Msg("server exited")
}
