package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"goldshop/infra/rabbitmq"
	"goldshop/internal/categorytree"
	"goldshop/internal/inventory"
	"goldshop/internal/web"
	"goldshop/pkg/config"
	"goldshop/pkg/events"
)

func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	appConfig := config.Read()
	zap.L().Info("Admin front end starting...",
		zap.String("port", appConfig.AdminPort),
		zap.String("inventoryURL", appConfig.InventoryURL),
	)

	client := inventory.NewClient(appConfig.InventoryURL, appConfig.InventoryTimeout, inventory.Credentials{
		UserID:    appConfig.ServiceUserID,
		UserEmail: appConfig.ServiceUserEmail,
		Token:     appConfig.ServiceToken,
	})
	renderer := categorytree.NewRenderer(appConfig.TreeIndentUnit, appConfig.TreeMaxDepth)

	registry := web.NewRegistry(appConfig.SessionTTL, time.Minute, func() *categorytree.Controller {
		return categorytree.NewController(client, renderer, zap.L())
	})
	defer registry.Close()

	app := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		Views:        web.NewEngine(),
	})

	sessions := session.New(session.Config{
		Expiration:     appConfig.SessionTTL,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/categories/")
	})
	web.NewHandler(registry, sessions).Register(app)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if appConfig.RabbitMQURL != "" {
		go consumeCategoryEvents(ctx, appConfig, registry)
	} else {
		zap.L().Warn("RABBITMQ_URL is not set, open screens only refresh after their own changes")
	}

	go func() {
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.AdminPort)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.AdminPort))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")
	cancel()

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}

// consumeCategoryEvents invalidates open screens when categories change
// through another session, the API or the worker. Each instance binds its own
// transient queue so every admin process sees every event.
func consumeCategoryEvents(ctx context.Context, appConfig *config.AppConfig, registry *web.Registry) {
	consumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, rabbitmq.ConsumerConfig{
		Exchange:      events.CategoryExchange,
		RoutingKeys:   []string{"category.*.v1"},
		ServiceName:   appConfig.ServiceName + "-admin",
		PrefetchCount: 20,
		Transient:     true,
	})
	if err != nil {
		zap.L().Error("Failed to create category consumer", zap.Error(err))
		return
	}
	defer consumer.Close()

	zap.L().Info("Starting category event consumer...")
	if err := consumer.Consume(ctx, registry.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		zap.L().Error("Category consumer error", zap.Error(err))
	}
}
