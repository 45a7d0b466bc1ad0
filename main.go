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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"goldshop/app/category"
	"goldshop/infra/postgres"
	"goldshop/infra/rabbitmq"
	"goldshop/pkg/aws"
	"goldshop/pkg/config"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return writeError(c, httperror.BadRequest(
				"request.invalid_body",
				"Invalid body",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.QueryParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_query_params",
				"Invalid query params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ReqHeaderParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_headers",
				"Invalid headers",
				fiber.Map{"error": err.Error()},
			))
		}

		ctx := c.UserContext()

		res, err := handler.Handle(ctx, &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(res)
	}
}

func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	appConfig := config.Read()
	zap.L().Info("Inventory service starting...",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("port", appConfig.Port),
	)

	app := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
		BodyLimit:    2 * 1024 * 1024,
	})

	pgRepository := postgres.NewPgRepository(appConfig.PostgresDSN())
	defer pgRepository.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pgRepository.Migrate(migrateCtx); err != nil {
		cancel()
		zap.L().Fatal("Failed to migrate database", zap.Error(err))
	}
	cancel()

	publisher := newPublisher(appConfig)
	defer publisher.Close()

	var icons category.IconStore
	if appConfig.AWSBucket != "" {
		icons = aws.NewS3Bucket(appConfig)
	} else {
		zap.L().Warn("AWS_BUCKET is not set, category icon upload is disabled")
	}

	registerRoutes(app, routeDeps{
		repository: pgRepository,
		publisher:  publisher,
		icons:      icons,
	})

	go func() {
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(app)
}

// newPublisher connects to RabbitMQ, falling back to dropping events when no
// broker is configured or reachable.
func newPublisher(appConfig *config.AppConfig) events.Publisher {
	if appConfig.RabbitMQURL == "" {
		zap.L().Warn("RABBITMQ_URL is not set, events will not be published")
		return events.NopPublisher{}
	}

	publisher, err := rabbitmq.NewPublisher(appConfig.RabbitMQURL, appConfig.ServiceName)
	if err != nil {
		zap.L().Error("Failed to connect event publisher, events will not be published", zap.Error(err))
		return events.NopPublisher{}
	}

	for _, exchange := range []string{events.CategoryExchange, events.ProductExchange} {
		if err := publisher.DeclareExchange(exchange); err != nil {
			zap.L().Error("Failed to declare exchange", zap.String("exchange", exchange), zap.Error(err))
		}
	}
	return publisher
}

func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}

func writeError(c *fiber.Ctx, err error) error {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber validation error", zap.String("message", fiberErr.Message), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}
