package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/attendance"
	"github.com/EdwinEstrella/ironcore-gym/internal/cache"
	"github.com/EdwinEstrella/ironcore-gym/internal/config"
	"github.com/EdwinEstrella/ironcore-gym/internal/db"
	"github.com/EdwinEstrella/ironcore-gym/internal/email"
	"github.com/EdwinEstrella/ironcore-gym/internal/events"
	"github.com/EdwinEstrella/ironcore-gym/internal/gym"
	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/member"
	"github.com/EdwinEstrella/ironcore-gym/internal/plan"
	"github.com/EdwinEstrella/ironcore-gym/internal/scheduler"
	"github.com/EdwinEstrella/ironcore-gym/internal/server"
	"github.com/EdwinEstrella/ironcore-gym/internal/subscription"
	"github.com/EdwinEstrella/ironcore-gym/internal/tracing"
	"github.com/EdwinEstrella/ironcore-gym/internal/user"

	"github.com/redis/go-redis/v9"
)

// @title IronCore Gym API
// @version 1.0
// @description Multi-tenant gym management API.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitWithLevel(cfg.LogLevel)
	logger.Info("Starting IronCore Gym", "environment", cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Environment)
	if err != nil {
		logger.Fatalf("Failed to initialize tracing: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, emails and stats cache will fail until it recovers")
	}

	publisher := newPublisher(cfg)
	defer publisher.Close()

	emailService := email.New(rdb, &email.SMTPSender{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
	})
	go emailService.Start(ctx)

	statsCache := cache.NewStatsCache(rdb, cfg.StatsCacheTTL)

	gymRepo := gym.NewRepository(database)
	memberRepo := member.NewRepository(database)
	planRepo := plan.NewRepository(database)

	gymService := gym.NewService(gymRepo, statsCache)
	userService := user.NewService(user.NewRepository(database), gymRepo, cfg.JWTSecret)
	memberService := member.NewService(memberRepo, gymRepo, emailService, publisher, statsCache)
	planService := plan.NewService(planRepo, gymRepo, publisher, statsCache)
	subscriptionService := subscription.NewService(
		subscription.NewRepository(database),
		memberRepo,
		planRepo,
		emailService,
		publisher,
		statsCache,
	)
	attendanceService := attendance.NewService(attendance.NewRepository(database))

	jobs := scheduler.New(subscriptionService, scheduler.Schedules{
		ExpireOverdue:   cfg.ExpireJobSchedule,
		ExpiryReminders: cfg.ReminderJobSchedule,
	})
	jobs.Start()

	srv := server.New(ctx, cfg, server.Handlers{
		User:         user.NewHandler(userService),
		Gym:          gym.NewHandler(gymService),
		Member:       member.NewHandler(memberService),
		Plan:         plan.NewHandler(planService),
		Subscription: subscription.NewHandler(subscriptionService),
		Attendance:   attendance.NewHandler(attendanceService),
	},
		server.Check{Name: "postgres", Ping: database.PingContext},
		server.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	select {
	case <-jobs.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("Scheduled jobs still running at shutdown deadline")
	}

	cancel()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Errorf("Error flushing traces: %v", err)
	}

	logger.Info("Server stopped")
}

// newPublisher connects to the broker when AMQP_URL is set. Without one, or
// when the broker is down at boot, events are dropped.
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL not set, domain events disabled")
		return events.Noop{}
	}

	producer, err := events.NewProducer(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to broker, domain events disabled")
		return events.Noop{}
	}

	logger.Info("Connected to broker", "exchange", cfg.AMQPExchange)
	return producer
}
