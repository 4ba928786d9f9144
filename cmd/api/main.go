package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"publishing-ops-api/app"
	"publishing-ops-api/auth"
	"publishing-ops-api/config"
	"publishing-ops-api/controllers"
	"publishing-ops-api/middleware"
	"publishing-ops-api/monitor"
	"publishing-ops-api/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logFile, logWriter := config.InitLogging(cfg.Log.File)
	if logFile != nil {
		defer logFile.Close()
	}
	logger := config.NewLogger(cfg.Log, logWriter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ops, err := app.New(ctx, cfg, logger, logWriter)
	if err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer ops.Close()

	provider, err := auth.NewProvider(ctx, cfg.Auth)
	if err != nil {
		logger.Error("sign-in provider unavailable", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sessions := auth.NewSessionManager(cfg.Auth, auth.NewSessionStore(ops.Redis))
	authn := middleware.NewAuthenticator(sessions, ops.Users, logger)

	h := controllers.New(controllers.Deps{
		Config:    cfg,
		Logger:    logger,
		Users:     ops.Users,
		WorkItems: ops.WorkItems,
		Subtasks:  ops.Subtasks,
		Magazine:  ops.Magazine,
		Authors:   ops.Authors,
		Deadlines: ops.Deadlines,
		RunLogs:   ops.RunLogs,
		SyncRuns:  ops.SyncRuns,
		Audit:     ops.Audit,
		Jobs:      ops.Jobs,
		Health:    ops.Health,
		Sessions:  sessions,
		Provider:  provider,
		SignIn:    auth.NewSignIn(ops.Users, cfg.Auth),
	})

	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	routes.SetupRoutes(router, h, authn, cfg.Cron.Secret)
	monitor.RegisterAdminPage(router, authn, ops.Health, cfg.Log.File, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Server.Port),
			slog.String("environment", cfg.Environment),
			slog.String("auth_mode", string(cfg.Auth.Mode)),
			slog.Any("jobs", ops.Jobs.Names()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
