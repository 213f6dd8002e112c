package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hourdesk/appointments-api/cmd/mainconfig"
	"github.com/hourdesk/appointments-api/internal/api/router"
	"github.com/hourdesk/appointments-api/internal/cache"
	appconfig "github.com/hourdesk/appointments-api/internal/config"
	"github.com/hourdesk/appointments-api/internal/jobs"
	"github.com/hourdesk/appointments-api/internal/mail"
	"github.com/hourdesk/appointments-api/internal/notifications"
	"github.com/hourdesk/appointments-api/internal/observability/metrics"
	"github.com/hourdesk/appointments-api/internal/scheduling"
	"github.com/hourdesk/appointments-api/internal/users"
	"github.com/hourdesk/appointments-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting appointments API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence: Postgres when configured, in-memory otherwise.
	var (
		appointmentsRepo  scheduling.Repository
		usersRepo         users.Repository
		notificationsRepo notifications.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		appointmentsRepo = scheduling.NewPostgresRepository(pool)
		usersRepo = users.NewPostgresRepository(pool, cfg.PublicBaseURL)
		notificationsRepo = notifications.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		appointmentsRepo = scheduling.NewInMemoryRepository()
		usersRepo = users.NewInMemoryRepository()
		notificationsRepo = notifications.NewInMemoryRepository()
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	resultCache := cache.New(redis.NewClient(redisOpts), cfg.CacheTTL)

	// Queue transport: SQS in production, in-memory (with an in-process
	// worker draining it) for local development.
	var publisher *jobs.Publisher
	var memoryWorker *jobs.Worker
	if cfg.UseMemoryQueue {
		queue := jobs.NewMemoryQueue(0)
		publisher = jobs.NewPublisher(queue, logger)
		sender := mail.NewStubSender(logger)
		memoryWorker = jobs.NewWorker(queue, func(ctx context.Context, snapshot jobs.AppointmentSnapshot) error {
			return sender.Send(ctx, mail.RenderCancellation(snapshot))
		}, logger, jobs.WithWorkerCount(1))
	} else {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		queue := jobs.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CancellationQueueURL)
		publisher = jobs.NewPublisher(queue, logger)
	}

	schedulingMetrics := metrics.NewSchedulingMetrics(nil)

	service := scheduling.NewService(scheduling.ServiceConfig{
		Repo:            appointmentsRepo,
		Users:           usersRepo,
		Notifications:   notificationsRepo,
		Dispatcher:      publisher,
		Cache:           resultCache,
		Metrics:         schedulingMetrics,
		Logger:          logger,
		AvailabilityTTL: cfg.AvailabilityCacheTTL,
	})

	r := router.New(&router.Config{
		Logger:               logger,
		SchedulingHandler:    scheduling.NewHandler(service, logger),
		NotificationsHandler: notifications.NewHandler(notificationsRepo, logger),
		MetricsHandler:       promhttp.Handler(),
		AuthJWTSecret:        cfg.AuthJWTSecret,
		RateLimitPerSecond:   cfg.RateLimitPerSecond,
		RateLimitBurst:       cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if memoryWorker != nil {
		go memoryWorker.Run(ctx)
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
