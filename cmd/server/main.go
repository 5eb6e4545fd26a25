package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	httpAdapter "github.com/iho/postingrules/internal/adapter/http"
	"github.com/iho/postingrules/internal/adapter/http/handler"
	"github.com/iho/postingrules/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/postingrules/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/postingrules/internal/adapter/repository/redis"
	"github.com/iho/postingrules/internal/infrastructure/config"
	"github.com/iho/postingrules/internal/infrastructure/logger"
	"github.com/iho/postingrules/internal/infrastructure/metrics"
	"github.com/iho/postingrules/internal/infrastructure/postgres"
	"github.com/iho/postingrules/internal/infrastructure/redis"
	"github.com/iho/postingrules/internal/infrastructure/tracing"
	"github.com/iho/postingrules/internal/rules"
	"github.com/iho/postingrules/internal/usecase"
)

const serviceName = "postingrules"

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Tracing
	tp := tracing.NewProvider(tracing.Config{
		Service:     serviceName,
		Version:     version,
		SampleRatio: cfg.TraceSampleRatio,
	})
	otel.SetTracerProvider(tp)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			log.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	// Migrations
	if cfg.MigrateOnStart {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath).WithLogger(log).Up(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize repositories
	eventRepo := postgresRepo.NewEventRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	var mappingRepo usecase.MappingRepository = postgresRepo.NewMappingRepository(pool)
	retrier := postgresRepo.NewRetrier(cfg.RetryMaxAttempts, log)
	idGen := postgresRepo.NewULIDGenerator()

	// Connect to Redis
	var redisClient *goredis.Client
	if cfg.CacheEnabled() {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, cfg.DatabaseTimeout)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, mapping cache disabled")
		} else {
			defer redisClient.Close()
			log.Info().Dur("ttl", cfg.MappingCacheTTL).Msg("connected to redis")
			mappingRepo = redisRepo.NewMappingCache(mappingRepo, redisRepo.NewCache(redisClient), cfg.MappingCacheTTL, log).
				WithObserver(m)
		}
	}

	// Initialize use cases
	resolutionUC := usecase.NewResolutionUseCase(usecase.ResolutionConfig{
		Engine:         rules.NewEngine(rules.DailyBook),
		Events:         eventRepo,
		Mappings:       mappingRepo,
		Accounts:       accountRepo,
		Retrier:        retrier,
		Observer:       m,
		TracerProvider: tp,
		Logger:         &log,
	})
	mappingUC := usecase.NewMappingUseCase(mappingRepo, accountRepo, idGen, log)

	// Rate limiting
	var limiter *middleware.RateLimiter
	if cfg.RateLimitEnabled() {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go resetLimiter(ctx, limiter, cfg.RateLimitReset)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ResolutionHandler: handler.NewResolutionHandler(resolutionUC),
		MappingHandler:    handler.NewMappingHandler(mappingUC, m),
		HealthHandler:     handler.NewHealthHandler(healthChecks(pool, redisClient)...),
		Logger:            log,
		Metrics:           m,
		Gatherer:          registry,
		RateLimiter:       limiter,
	})

	// Create server
	server := &http.Server{
		Addr:         listenAddr(cfg),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

func listenAddr(cfg *config.Config) string {
	return fmt.Sprintf(":%s", cfg.HTTPPort)
}

// healthChecks returns the readiness probes; redisClient may be nil.
func healthChecks(pool *pgxpool.Pool, redisClient *goredis.Client) []handler.Check {
	var checks []handler.Check
	if pool != nil {
		checks = append(checks, handler.Check{Name: "postgres", Ping: pool.Ping})
	}
	if redisClient != nil {
		checks = append(checks, handler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	return checks
}

// resetLimiter drops idle tenant limiters every interval until ctx is done.
func resetLimiter(ctx context.Context, limiter *middleware.RateLimiter, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Reset()
		}
	}
}
