package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alwanly/service-env-state/internal/config"
	agenthandler "github.com/Alwanly/service-env-state/internal/server/agent/handler"
	"github.com/Alwanly/service-env-state/internal/server/agent/repository"
	"github.com/Alwanly/service-env-state/internal/server/agent/usecase"
	"github.com/Alwanly/service-env-state/internal/store"
	"github.com/Alwanly/service-env-state/pkg/logger"
	"github.com/Alwanly/service-env-state/pkg/metrics"
	"github.com/Alwanly/service-env-state/pkg/middleware"
	"github.com/Alwanly/service-env-state/pkg/pubsub"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	log, err := logger.NewLoggerFromEnv("agent")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting agent service")

	cfg, err := config.LoadAgentConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	log.Info("configuration loaded",
		logger.String("controller_url", cfg.ControllerURL),
		logger.String("agent_addr", cfg.AgentAddr),
		logger.Duration(logger.FieldPollInterval, cfg.PollInterval),
		logger.Bool("redis_enabled", cfg.Redis != nil),
	)

	app := fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.CanonicalLoggerMiddleware(log))

	var subscriber pubsub.Subscriber
	if cfg.Redis != nil {
		ps, err := pubsub.NewRedisPubSub(pubsub.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if err != nil {
			log.WithError(err).Error("Failed to initialize Redis pub/sub, continuing in poll-only mode",
				logger.String("mode", "poll-only"))
		} else {
			subscriber = ps
			defer ps.Close()
		}
	}

	envStore := store.New(nil)
	recorder := metrics.NewRecorder("env_agent", nil)
	controllerClient := repository.NewControllerClient(cfg, log)
	uc := usecase.NewUseCase(controllerClient, envStore, subscriber, cfg, log, recorder)

	hostname, _ := os.Hostname()
	h := agenthandler.NewHandler(uc, recorder, hostname, version, time.Now())
	h.RegisterRoutes(app)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := uc.InitialSync(ctx); err != nil {
		// keep serving the default snapshot; polling retries on schedule
		log.WithError(err).Error("initial env sync failed")
	} else {
		log.WithEnvVersion(envStore.Version()).Info("initial env sync complete",
			logger.ETag(envStore.ETag()))
	}

	if err := uc.StartPolling(ctx); err != nil {
		log.WithError(err).Fatal("failed to start polling")
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting HTTP server", logger.String("address", cfg.AgentAddr))
		if err := app.Listen(cfg.AgentAddr); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("received shutdown signal", logger.String("signal", sig.String()))
		case <-gCtx.Done():
			log.Info("context cancelled")
		}

		if err := uc.StopPolling(); err != nil {
			log.WithError(err).Error("error stopping polling")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("error during server shutdown")
		}

		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("agent service stopped with error")
		os.Exit(1)
	}

	log.Info("agent service stopped gracefully")
}
