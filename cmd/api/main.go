package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/config"
	"github.com/gapmap-ai/gapmap-backend/internal/auth"
	authmw "github.com/gapmap-ai/gapmap-backend/internal/auth/middleware"
	"github.com/gapmap-ai/gapmap-backend/internal/bootstrap"
	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
	profilerepo "github.com/gapmap-ai/gapmap-backend/internal/profiles/repository"
	cronjob "github.com/gapmap-ai/gapmap-backend/internal/projects/cron"
	projectrepo "github.com/gapmap-ai/gapmap-backend/internal/projects/repository"
)

const serviceName = "gapmap-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("env", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.Server.Port),
	)

	bootstrap.SetGinMode(cfg.App.Environment)
	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.ConnString(),
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := bootstrap.Migrate(pool, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	} else {
		log.Info("redis not configured, using in-process rate limiter")
	}

	var authMW gin.HandlerFunc
	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			log.Fatal("failed to initialize firebase", zap.Error(err))
		}
		authMW = authmw.FirebaseAuthMiddleware(client)
	} else {
		log.Warn("FIREBASE_CREDENTIALS_PATH not set, trusting X-User-Id header (development only)")
		authMW = auth.OptionalUser("demo-user")
	}

	projects := projectrepo.NewProjectRepository(pool)
	gateway := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey,
		llm.WithRateLimit(cfg.LLM.RatePerSecond),
		llm.WithLogger(log),
	)

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
		DBPing:         pool,
		Redis:          rdb,
		Auth:           authMW,
		Projects:       projects,
		Profiles:       profilerepo.NewProfileRepository(pool),
		LLM:            gateway,
		Models:         cfg.LLM,
		Limits:         cfg.RateLimit,
	})
	if err != nil {
		log.Fatal("failed to build router", zap.Error(err))
	}

	sweeper := cronjob.NewScheduler(projects, cfg.Generation.StaleAfter, cfg.Generation.SweepSchedule, log)
	if err := sweeper.Start(); err != nil {
		log.Fatal("failed to start sweeper", zap.Error(err))
	}

	// No WriteTimeout: generation requests and status streams are long-lived.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sweeper.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
