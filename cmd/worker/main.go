package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"goldshop/infra/postgres"
	"goldshop/infra/rabbitmq"
	"goldshop/internal/consumers"
	"goldshop/pkg/config"
	"goldshop/pkg/events"
)

func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	zap.L().Info("Inventory worker starting...")

	appConfig := config.Read()
	zap.L().Info("Worker config loaded",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("rabbitMQURL", appConfig.RabbitMQURL),
	)

	if appConfig.RabbitMQURL == "" {
		zap.L().Fatal("RABBITMQ_URL is required for worker service")
	}

	pgRepository := postgres.NewPgRepository(appConfig.PostgresDSN())
	defer pgRepository.Close()

	publisher, err := rabbitmq.NewPublisher(appConfig.RabbitMQURL, appConfig.ServiceName)
	if err != nil {
		zap.L().Fatal("Failed to create event publisher", zap.Error(err))
	}
	defer publisher.Close()
	if err := publisher.DeclareExchange(events.CategoryExchange); err != nil {
		zap.L().Fatal("Failed to declare category exchange", zap.Error(err))
	}

	productHandler := consumers.NewProductEventHandler(pgRepository, publisher, appConfig.ServiceName)

	productConsumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, rabbitmq.ConsumerConfig{
		Exchange:      events.ProductExchange,
		QueueName:     "worker.product.all.v1", // {service}.{domain}.{events}.{version}
		RoutingKeys:   []string{"product.*.v1"},
		ServiceName:   appConfig.ServiceName,
		PrefetchCount: 10,
	})
	if err != nil {
		zap.L().Fatal("Failed to create product consumer", zap.Error(err))
	}
	defer productConsumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		zap.L().Info("Starting product event consumer...")
		if err := productConsumer.Consume(ctx, productHandler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			zap.L().Error("Product consumer error", zap.Error(err))
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := pgRepository.GetPoolStats()
				zap.L().Info("Connection pool stats",
					zap.Int("max_open", stats["max_open_connections"].(int)),
					zap.Int("open", stats["open_connections"].(int)),
					zap.Int("in_use", stats["in_use"].(int)),
					zap.Int("idle", stats["idle"].(int)),
					zap.Int64("wait_count", stats["wait_count"].(int64)),
					zap.Int64("wait_duration_ms", stats["wait_duration_ms"].(int64)),
				)
			}
		}
	}()

	zap.L().Info("Worker service started. Waiting for events...",
		zap.String("productExchange", events.ProductExchange),
	)

	<-sigChan
	zap.L().Info("Shutdown signal received, stopping worker service...")
	cancel()

	zap.L().Info("Worker service stopped gracefully")
}
