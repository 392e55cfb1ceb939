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

	httptransport "github.com/futuremakers/feedback-service/internal/api/http"
	"github.com/futuremakers/feedback-service/internal/api/http/handlers"
	"github.com/futuremakers/feedback-service/internal/config"
	"github.com/futuremakers/feedback-service/internal/conversation"
	"github.com/futuremakers/feedback-service/internal/events"
	"github.com/futuremakers/feedback-service/internal/notify"
	"github.com/futuremakers/feedback-service/internal/observability"
	"github.com/futuremakers/feedback-service/internal/persistence"
	"github.com/futuremakers/feedback-service/internal/repository"
	"github.com/futuremakers/feedback-service/internal/service"
	"github.com/futuremakers/feedback-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		ResponseRepo: responseRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	statsService := service.NewStatsService(ticketService)

	notifier := notify.NewTelegramFromConfig(cfg.Notify, logger)
	notificationService := service.NewNotificationService(dispatcher, notifier, logger)
	worker.StartNotificationWorker(notificationService, logger)

	sessions := conversation.NewManager(conversation.ManagerOptions{
		Tickets:    ticketService,
		Logger:     logger,
		Metrics:    metrics,
		SessionTTL: cfg.Chat.SessionTTL(),
		Deadline:   cfg.Chat.Deadline(),
	})
	go sweepSessions(ctx, sessions, cfg.Chat.SessionTTL())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets: handlers.NewTicketsHandler(ticketService, notificationService),
		Stats:   handlers.NewStatsHandler(statsService),
		Chat:    handlers.NewChatHandler(sessions),
		Metrics: metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// sweepSessions evicts idle conversation sessions until shutdown.
func sweepSessions(ctx context.Context, sessions *conversation.Manager, ttl time.Duration) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.EvictIdle()
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
