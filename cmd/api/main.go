package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/workforce-service/internal/api/http"
	"github.com/spec-kit/workforce-service/internal/api/http/handlers"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/forecasting"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/persistence"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/service"
	"github.com/spec-kit/workforce-service/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(dispatcher, redis, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	pool := pg.PoolHandle()
	channelRepo := repository.NewChannelRepository(pool)
	forecastRepo := repository.NewForecastRepository(pool)
	model := forecasting.NewSeasonalModel()

	forecastService := service.NewForecastService(service.ForecastDependencies{
		ChannelRepo:  channelRepo,
		HistoryRepo:  repository.NewHistoryRepository(pool),
		ForecastRepo: forecastRepo,
		Model:        model,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
		Config:       cfg.Forecast,
	})
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		ScheduleRepo: repository.NewScheduleRepository(pool),
		ShiftRepo:    repository.NewShiftRepository(pool),
		AgentRepo:    repository.NewAgentRepository(pool),
		ChannelRepo:  channelRepo,
		TimeOffRepo:  repository.NewTimeOffRepository(pool),
		ForecastRepo: forecastRepo,
		Model:        model,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})

	var jobs *worker.PeriodicJobs
	if cfg.Scheduler.Enabled {
		jobs = worker.NewPeriodicJobs(worker.PeriodicDependencies{
			Locker:  redis,
			LockTTL: cfg.Scheduler.LockTTL(),
			Logger:  logger,
			Metrics: metrics,
			Timeout: cfg.Scheduler.LockTTL(),
		})
		for _, job := range []worker.Job{
			worker.ForecastRefreshJob(cfg.Scheduler.ForecastRefreshCron, forecastService),
			worker.ScheduleReoptimizeJob(cfg.Scheduler.ReoptimizeCron, scheduleService),
		} {
			if err := jobs.Register(job); err != nil {
				logger.Fatal("failed to schedule job", zap.Error(err))
			}
		}
		jobs.Start()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": handlers.PingFunc(pg.Ready),
			"redis":    redis,
		}),
		Forecasts:      handlers.NewForecastsHandler(forecastService),
		Schedules:      handlers.NewSchedulesHandler(scheduleService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if jobs != nil {
		jobs.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
