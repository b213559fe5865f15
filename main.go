package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"goldpredict/internal/config"
	"goldpredict/internal/handlers"
	"goldpredict/internal/middleware"
	"goldpredict/internal/pages"
	"goldpredict/internal/repositories"
	"goldpredict/internal/services"
	"goldpredict/pkg/rabbitmq"
	"goldpredict/pkg/regression"
)

// URL prefixes of the dashboard images and the static page assets.
const (
	plotsPrefix  = "/plots"
	assetsPrefix = "/assets"
)

func main() {
	// --- Configuration ---
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("warning: %v", err)
	}
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if cfg.JWTSecret == config.DevJWTSecret {
		zapLogger.Warn("JWT_SECRET not set, using the development secret")
	}
	if cfg.PasswordHasher == services.HasherSHA256 {
		zapLogger.Warn("passwords are stored as unsalted SHA-256 digests; set PASSWORD_HASHER=bcrypt for real deployments")
	}

	// --- Model ---
	// Without a usable model there is nothing to serve.
	model, err := regression.Load(cfg.ModelPath)
	if err != nil {
		zapLogger.Fatal("failed to load prediction model", zap.String("path", cfg.ModelPath), zap.Error(err))
	}

	// --- Credential store ---
	userRepo, err := repositories.OpenUserRepository(repositories.StoreConfig{
		Driver:   cfg.StoreDriver,
		UserFile: cfg.UserFile,
		DSN:      cfg.DatabaseDSN,
	})
	if err != nil {
		zapLogger.Fatal("failed to open credential store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	// --- Events ---
	var publisher services.EventPublisher = services.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		publisher = mqClient

		err = mqClient.Consume(func(msg amqp.Delivery) error {
			zapLogger.Info("event received",
				zap.String("routing_key", msg.RoutingKey),
				zap.ByteString("body", msg.Body))
			return nil
		})
		if err != nil {
			zapLogger.Warn("failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	app, err := newApp(cfg, model, userRepo, publisher, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to build application", zap.Error(err))
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zapLogger.Info("starting server", zap.String("addr", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			zapLogger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zapLogger.Error("error during Fiber shutdown", zap.Error(err))
	}
	zapLogger.Info("server gracefully stopped")
}

// newApp wires services, handlers and routes into a Fiber app.
func newApp(
	cfg *config.Config,
	model regression.Model,
	userRepo repositories.UserRepository,
	publisher services.EventPublisher,
	zapLogger *zap.Logger,
) (*fiber.App, error) {
	hasher, err := services.NewPasswordHasher(cfg.PasswordHasher)
	if err != nil {
		return nil, err
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, hasher, publisher, zapLogger)
	sessionService := services.NewSessionService(cfg.JWTSecret, cfg.SessionTTL)
	predictionService, err := services.NewPredictionService(model, publisher, zapLogger)
	if err != nil {
		return nil, err
	}
	galleryService := services.NewGalleryService(cfg.PlotsDir, plotsPrefix)

	// --- Initialize Handlers ---
	controller := pages.NewController(authService, predictionService, galleryService)
	renderer := handlers.NewRenderer(controller, sessionService, zapLogger)
	authHandler := handlers.NewAuthHandler(renderer, zapLogger)
	pageHandler := handlers.NewPageHandler(renderer, zapLogger)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Static(plotsPrefix, cfg.PlotsDir)
	app.Static(assetsPrefix, cfg.AssetsDir)

	apiV1 := app.Group("/api/v1", middleware.SessionFromRequest(sessionService, zapLogger))
	authHandler.RegisterRoutes(apiV1)
	pageHandler.RegisterRoutes(apiV1)

	return app, nil
}
