package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"safar/internal/config"
	"safar/internal/handler"
	"safar/internal/logger"
	"safar/internal/metrics"
	"safar/internal/oracle"
	"safar/internal/repository"
	"safar/internal/service"
	"safar/internal/session"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zlog.Sync() }()

	zlog.Info("Safar trip planner",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	gin.SetMode(cfg.Server.GinMode)

	if cfg.UsingDefaultSecret() {
		zlog.Warn("SESSION_SECRET is not set, using the development secret")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace)
	}

	checks := make(map[string]handler.Pinger)

	// Persistence: Postgres when configured, otherwise process memory
	var (
		intents  repository.IntentStore
		bookings repository.BookingStore
		users    repository.UserStore
	)
	if cfg.HasDatabase() {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer repo.Close()

		if cfg.PostgreSQL.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := repo.Migrate(ctx)
			cancel()
			if err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			zlog.Info("database schema applied")
		}

		intents, bookings, users = repo, repo, repo
		checks["postgres"] = repo
		zlog.Info("connected to PostgreSQL")
	} else {
		intents = repository.NewMemoryStore()
		zlog.Warn("no database configured: trips are kept in memory, bookings and accounts are unavailable")
	}

	// Session revocation list
	var revoker session.Revoker
	if cfg.Redis.Address != "" {
		redisRevoker := session.NewRedisRevoker(session.NewRedisClient(&cfg.Redis))
		defer redisRevoker.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisRevoker.Ping(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		revoker = redisRevoker
		checks["redis"] = redisRevoker
		zlog.Info("session revocation enabled", zap.String("redis", cfg.Redis.Address))
	}

	// Prediction oracle
	chain := oracle.FromConfig(&cfg.Oracle, zlog, m)
	zlog.Info("prediction oracle configured",
		zap.String("mode", cfg.Oracle.Mode),
		zap.Duration("timeout", cfg.Oracle.Timeout))

	// Services
	sessions := session.NewManager(&cfg.Session, revoker)
	trips := service.NewTripService(chain, intents, bookings, nil, m, zlog)
	auth := service.NewAuthService(users, zlog)
	onboarding := service.NewOnboardingService(users, zlog)
	discovery := service.NewDiscoveryService(chain, zlog)

	router := handler.NewRouter(handler.Deps{
		Trips:          handler.NewTripHandler(trips, m, zlog),
		Auth:           handler.NewAuthHandler(auth, onboarding, sessions, zlog),
		Discovery:      handler.NewDiscoveryHandler(discovery, zlog),
		Sessions:       sessions,
		Metrics:        m,
		Logger:         zlog,
		Build:          handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Checks:         checks,
	})

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, zlog)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case sig := <-quit:
		zlog.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	zlog.Info("server stopped")
	return nil
}
