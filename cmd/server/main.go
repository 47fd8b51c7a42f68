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

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"taskboard/config"
	"taskboard/internal/health"
	"taskboard/internal/infrastructure/postgres"
	"taskboard/internal/infrastructure/sqlite"
	ctxlog "taskboard/internal/log"
	"taskboard/internal/metrics"
	"taskboard/internal/repository"
	httptransport "taskboard/internal/transport/http"
	"taskboard/internal/transport/http/handler"
	"taskboard/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var (
		userRepo repository.UserRepository
		taskRepo repository.TaskRepository
		pinger   health.Pinger
		closeDB  func()
	)

	switch cfg.DatabaseDriver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			stop()
			log.Fatalf("db: %v", err)
		}
		userRepo = sqlite.NewUserRepository(db)
		taskRepo = sqlite.NewTaskRepository(db)
		pinger = health.SQLPinger{DB: db}
		closeDB = func() { _ = db.Close() }
	default:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			stop()
			log.Fatalf("db: %v", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			stop()
			log.Fatalf("db: %v", err)
		}
		userRepo = postgres.NewUserRepository(pool)
		taskRepo = postgres.NewTaskRepository(pool)
		pinger = pool
		closeDB = pool.Close
	}
	defer closeDB()

	authUsecase := usecase.NewAuthUsecase(userRepo, []byte(cfg.JWTSecret))
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	taskUsecase := usecase.NewTaskUsecase(taskRepo)
	taskHandler := handler.NewTaskHandler(taskUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pinger, cfg.DatabaseDriver, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, taskHandler, authUsecase, cfg.AllowedOrigins()),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "store", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
