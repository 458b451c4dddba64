package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/smartfactory/pkg/app"
	"github.com/ghuser/smartfactory/pkg/cache"
	"github.com/ghuser/smartfactory/pkg/config"
	"github.com/ghuser/smartfactory/pkg/database"
	"github.com/ghuser/smartfactory/pkg/events"
	"github.com/ghuser/smartfactory/pkg/logger"
	"github.com/ghuser/smartfactory/pkg/telemetry"
	auditApi "github.com/ghuser/smartfactory/services/audit/application/api"
	invApi "github.com/ghuser/smartfactory/services/inventory/application/api"
	invsvcs "github.com/ghuser/smartfactory/services/inventory/application/services"
	invEvents "github.com/ghuser/smartfactory/services/inventory/domain/events"
	itemEvents "github.com/ghuser/smartfactory/services/item/domain/events"
	orderEvents "github.com/ghuser/smartfactory/services/order/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	appConfig := &app.Application{
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
		Config:   cfg,
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	auditSvc := auditApi.NewService(a)
	stockSvc := invApi.NewService(a, auditSvc)

	subs := []struct {
		topic   string
		handler func(context.Context, *message.Message) error
	}{
		{itemEvents.TopicItemCreated, handleItemCreated(a)},
		{orderEvents.TopicOrderCreated, handleOrderCreated(a, stockSvc)},
		{invEvents.TopicLowStock, handleLowStock(a)},
	}

	topics := make([]string, 0, len(subs))
	for _, sub := range subs {
		errCh, err := a.EventBus.Subscribe(ctx, sub.topic, sub.handler)
		if err != nil {
			return err
		}
		topics = append(topics, sub.topic)

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string, errCh <-chan error) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(sub.topic, errCh)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleItemCreated returns a handler for item.created events.
// Handlers must be idempotent — EventBus retries up to 3× on failure.
// Warms the Redis read-model cache so subsequent GetByID calls are served from cache.
func handleItemCreated(a *app.Application) func(context.Context, *message.Message) error {
	itemCache := cache.NewItemCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt itemEvents.ItemCreatedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := itemCache.Set(ctx, &cache.CachedItem{
			ID:        evt.ItemID,
			Name:      evt.Name,
			Unit:      evt.Unit,
			UnitPrice: evt.UnitPrice,
			CreatedAt: evt.OccurredAt,
		}); err != nil {
			// Cache warming is best-effort; log but do not fail the handler.
			a.Logger.WarnContext(ctx, "cache warm failed for item.created",
				"item_id", evt.ItemID, "error", err)
		} else {
			a.Logger.InfoContext(ctx, "cache warmed", "item_id", evt.ItemID)
		}

		return nil
	}
}

// handleOrderCreated folds each order line into the sales history that feeds
// the demand forecaster. A redelivered event appends duplicate observations;
// the forecaster aggregates per day, so the skew is bounded by the retry count.
func handleOrderCreated(a *app.Application, stock *invsvcs.StockService) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt orderEvents.OrderCreatedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		for _, line := range evt.Lines {
			if err := stock.RecordSale(ctx, line.ItemID, evt.OccurredAt, line.Quantity); err != nil {
				return err
			}
		}

		a.Logger.InfoContext(ctx, "sales history recorded",
			"order_no", evt.OrderNo, "lines", len(evt.Lines))
		return nil
	}
}

// handleLowStock surfaces replenishment alerts for operators tailing the
// worker logs. Alert delivery channels (mail, chat) would hang off this
// handler.
func handleLowStock(a *app.Application) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt invEvents.LowStockEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		a.Logger.WarnContext(ctx, "low stock alert",
			"item_id", evt.ItemID,
			"current_stock", evt.CurrentStock,
			"min_stock", evt.MinStock,
		)
		return nil
	}
}
