package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/premium-profile/internal/gateway"
	"github.com/saransh1220/premium-profile/internal/gateway/middleware"
	"github.com/saransh1220/premium-profile/internal/modules/auth/infrastructure/jwt"
	"github.com/saransh1220/premium-profile/internal/modules/filestorage"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare"
	"github.com/saransh1220/premium-profile/internal/modules/realtime"
	"github.com/saransh1220/premium-profile/internal/shared/infrastructure/config"
	"github.com/saransh1220/premium-profile/internal/shared/infrastructure/database"
	"github.com/saransh1220/premium-profile/internal/shared/infrastructure/logging"
	"github.com/saransh1220/premium-profile/internal/shared/infrastructure/telemetry"
	"github.com/saransh1220/premium-profile/pkg/migration"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.AppEnv, os.Stdout)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry, cfg.AppEnv, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	if err := migration.AutoMigrate(cfg.Database.URL(), cfg.MigrationsPath, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	rdb := connectRedis(cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	files, err := filestorage.NewModule(ctx, cfg.FileStorage)
	if err != nil {
		return err
	}

	handler, shutdown, err := newHandler(cfg, db, rdb, files, prometheus.DefaultRegisterer, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	return gateway.NewServer(cfg.Server.Port, handler, logger).Start(ctx)
}

// connectRedis returns nil when Redis is unreachable; the service then reads
// straight from Postgres.
func connectRedis(cfg database.RedisConfig, logger *slog.Logger) *redis.Client {
	rdb, err := database.NewRedis(cfg)
	if err != nil {
		logger.Warn("redis unavailable, profile share cache disabled", "addr", cfg.Addr(), "error", err)
		return nil
	}
	logger.Info("redis connected", "addr", cfg.Addr())
	return rdb
}

// newHandler wires the modules into the HTTP handler. The returned func stops
// background workers.
func newHandler(
	cfg config.Config,
	db *sqlx.DB,
	rdb *redis.Client,
	files *filestorage.Module,
	reg prometheus.Registerer,
	logger *slog.Logger,
) (http.Handler, func(), error) {
	origins := middleware.NewOriginPolicy(cfg.Server.AllowedOrigins)
	realtimeModule := realtime.NewModule(origins.CheckRequest, logger)

	profileShareModule, err := profileshare.NewModule(db, rdb, files, realtimeModule.Notifier(), cfg.ProfileShare, reg, logger)
	if err != nil {
		realtimeModule.Shutdown()
		return nil, nil, err
	}

	tokens := jwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthMiddleware:      middleware.NewAuthMiddleware(tokens),
		ProfileShareHandler: profileShareModule.HTTPHandler(),
		RealtimeHandler:     realtimeModule.HTTPHandler(),
		UploadsDir:          files.LocalRoot(),
	})

	handler := gateway.Chain(mux, middleware.NewHTTPMetrics(reg), cfg.Server.AllowedOrigins, logger)
	return handler, realtimeModule.Shutdown, nil
}
